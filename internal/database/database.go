// Package database opens the GORM connections behind the bookmark
// backends and owns their schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const pingTimeout = 3 * time.Second

// Conn is an open bookmark database. Local is set when the Postgres
// server was unreachable and the SQLite fallback file is in use.
type Conn struct {
	DB    *gorm.DB
	Local bool
	Path  string
}

// Connect tries Postgres first and falls back to the SQLite file at
// fallback. The error is returned only when both fail.
func Connect(log zerolog.Logger, cfg config.DBConfig, fallback string) (*Conn, error) {
	db, err := OpenPostgres(cfg)
	if err == nil {
		if err = ping(db); err == nil {
			log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to Postgres")
			return &Conn{DB: db}, nil
		}
		closeDB(db)
	}
	log.Warn().Err(err).Str("path", fallback).Msg("Postgres unavailable, using SQLite")

	db, err = OpenSqlite(fallback)
	if err != nil {
		return nil, fmt.Errorf("sqlite fallback %s: %w", fallback, err)
	}
	return &Conn{DB: db, Local: true, Path: fallback}, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(4)
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (c *Conn) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func quiet() gormlogger.Interface {
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

func OpenPostgres(cfg config.DBConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true, Logger: quiet()})
}

// OpenSqlite opens path, or a shared in-memory database when path is
// empty. Bookmarks are written one at a time and must survive a crash,
// so synchronous stays at NORMAL under WAL.
func OpenSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{PrepareStmt: true, Logger: quiet()})
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			closeDB(db)
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// Migrate creates or updates the bookmark and export tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
