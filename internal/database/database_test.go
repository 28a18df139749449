package database

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSqlite_Migrate(t *testing.T) {
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "pins.db"))
	require.NoError(t, err)
	conn := &Conn{DB: db}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&model.Bookmark{}))
	assert.True(t, db.Migrator().HasTable(&model.ExportRecord{}))

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}

func TestConnect_FallsBackToSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")

	// nothing listens on port 1
	conn, err := Connect(zerolog.New(io.Discard), config.DBConfig{
		Host: "127.0.0.1", Port: "1", Username: "u", Password: "p", Database: "d",
	}, path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	assert.True(t, conn.Local)
	assert.Equal(t, path, conn.Path)
	assert.Equal(t, "sqlite", conn.DB.Dialector.Name())
	require.NoError(t, Migrate(conn.DB))
	assert.FileExists(t, path)
}
