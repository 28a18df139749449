package main

import (
	"fmt"
	"path/filepath"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage/jsonfile"
	pgstorage "github.com/Changa-Husky/VrChatDollyController/internal/storage/postgres"
	sqlitestorage "github.com/Changa-Husky/VrChatDollyController/internal/storage/sqlite"
)

// initStorage creates and initializes the configured pin backend.
func (a *app) initStorage() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := a.createStorageBackend(storageCfg, config.GetPathsConfig())
	if err != nil {
		a.Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		a.Logger.Error("Failed to initialize storage backend", "error", err)
		_ = backend.Close()
		return nil, err
	}
	return backend, nil
}

func (a *app) createStorageBackend(storageCfg config.StorageConfig, paths config.PathsConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		backend, err := pgstorage.New(pgstorage.Dependencies{
			DB:             storageCfg.DB,
			FallbackSqlite: sqlitePath(storageCfg, paths),
			Logger:         a.ZLog,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		a.Logger.Info("Postgres storage backend initialized", "local", backend.Local())
		return backend, nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			Path: sqlitePath(storageCfg, paths),
		}, a.SlogManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		a.Logger.Info("SQLite storage backend initialized")
		return backend, nil

	case "json", "":
		a.Logger.Info("JSON file storage backend initialized", "dir", paths.Bookmarks())
		return jsonfile.New(jsonfile.Config{Dir: paths.Bookmarks()}), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// sqlitePath falls back to bookmarks.db in the bookmarks folder.
func sqlitePath(storageCfg config.StorageConfig, paths config.PathsConfig) string {
	if storageCfg.SQLite.Path != "" {
		return storageCfg.SQLite.Path
	}
	return filepath.Join(paths.Bookmarks(), "bookmarks.db")
}
