// Package gormstore implements storage.Backend on any GORM dialect. The
// sqlite and postgres backends wrap it and only differ in how they open the
// connection.
package gormstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Changa-Husky/VrChatDollyController/internal/database"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Backend stores pins as JSON documents in the bookmarks table
type Backend struct {
	db *gorm.DB
}

var _ storage.Backend = (*Backend)(nil)

func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// DB exposes the connection for wrappers.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema
func (b *Backend) Init() error {
	return database.Migrate(b.db)
}

// Close releases the connection pool
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SavePin inserts or replaces the slot row
func (b *Backend) SavePin(slot int, p *model.Pin) error {
	if err := storage.CheckSlot(slot); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pin %d: %w", slot, err)
	}

	bm := model.Bookmark{Slot: slot, Data: datatypes.JSON(data)}
	err = b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at", "deleted_at"}),
	}).Create(&bm).Error
	if err != nil {
		return fmt.Errorf("failed to save pin %d: %w", slot, err)
	}
	return nil
}

// LoadPin reads the slot row
func (b *Backend) LoadPin(slot int) (*model.Pin, error) {
	if err := storage.CheckSlot(slot); err != nil {
		return nil, err
	}
	var bm model.Bookmark
	err := b.db.Where("slot = ?", slot).First(&bm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("pin %d: %w", slot, storage.ErrPinEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pin %d: %w", slot, err)
	}

	var p model.Pin
	if err := json.Unmarshal(bm.Data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pin %d: %w", slot, err)
	}
	return &p, nil
}

// ListPins returns the occupied slots
func (b *Backend) ListPins() ([]int, error) {
	slots := []int{}
	if err := b.db.Model(&model.Bookmark{}).Order("slot").Pluck("slot", &slots).Error; err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	return slots, nil
}

// RecordExport inserts an export history row
func (b *Backend) RecordExport(r *model.ExportRecord) error {
	if err := b.db.Create(r).Error; err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}
