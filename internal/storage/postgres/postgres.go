// Package postgres stores bookmarks in PostgreSQL, falling back to a
// local SQLite file when the server cannot be reached.
package postgres

import (
	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/database"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage/gormstore"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	DB             config.DBConfig
	FallbackSqlite string
	Logger         zerolog.Logger
}

type Backend struct {
	*gormstore.Backend
	conn *database.Conn
	log  zerolog.Logger
}

// New connects to Postgres or the SQLite fallback. Init still has to run
// before the first query.
func New(deps Dependencies) (*Backend, error) {
	conn, err := database.Connect(deps.Logger, deps.DB, deps.FallbackSqlite)
	if err != nil {
		return nil, err
	}
	return &Backend{Backend: gormstore.New(conn.DB), conn: conn, log: deps.Logger}, nil
}

func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	b.log.Info().Bool("local", b.conn.Local).Msg("Bookmark schema ready")
	return nil
}

// Local reports whether the SQLite fallback is in use.
func (b *Backend) Local() bool {
	return b.conn.Local
}
