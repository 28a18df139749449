package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Bookmark{},
	&ExportRecord{},
}

// Bookmark is a stored pin. Data holds the same JSON document the file
// store writes, so both backends share one format.
type Bookmark struct {
	gorm.Model
	Slot int            `json:"slot" gorm:"uniqueIndex"`
	Data datatypes.JSON `json:"data"`
}

func (*Bookmark) TableName() string {
	return "bookmarks"
}

// ExportRecord is one path written for the renderer.
type ExportRecord struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Time      time.Time      `json:"time" gorm:"index:idx_export_time"`
	SessionID string         `json:"sessionId" gorm:"size:36;index:idx_export_session"`
	Mode      string         `json:"mode" gorm:"size:16"`
	Points    int            `json:"points"`
	Duration  float64        `json:"duration"`
	Length    float64        `json:"length"`
	FilePath  string         `json:"filePath" gorm:"size:512"`
	Waypoints datatypes.JSON `json:"waypoints"`
}

func (*ExportRecord) TableName() string {
	return "path_exports"
}
