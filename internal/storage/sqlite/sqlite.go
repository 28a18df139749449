// Package sqlitestorage implements the storage.Backend interface on a
// SQLite file. It wraps the GORM backend via composition; the only
// SQLite-specific concern is opening the database file.
package sqlitestorage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Changa-Husky/VrChatDollyController/internal/database"
	"github.com/Changa-Husky/VrChatDollyController/internal/logging"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage/gormstore"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path string
}

// Backend wraps the GORM backend for SQLite.
type Backend struct {
	*gormstore.Backend
	cfg Config
	log *logging.SlogManager
}

// New opens (creating if needed) the SQLite database at cfg.Path.
func New(cfg Config, logManager *logging.SlogManager) (*Backend, error) {
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := database.OpenSqlite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstore.New(db),
		cfg:     cfg,
		log:     logManager,
	}, nil
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	b.log.WriteLog("sqlite:Init", fmt.Sprintf("Bookmarks stored in %s", b.cfg.Path), "INFO")
	return nil
}
