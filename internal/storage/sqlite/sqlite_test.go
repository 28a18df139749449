package sqlitestorage

import (
	"path/filepath"
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/logging"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Backend = (*Backend)(nil)

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bookmarks.db")

	b, err := New(Config{Path: path}, logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.SavePin(2, &model.Pin{Origin: &model.Vec3{Y: 3}}))
	require.NoError(t, b.Close())

	b2, err := New(Config{Path: path}, logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, b2.Init())
	defer b2.Close()

	got, err := b2.LoadPin(2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Origin.Y)
}
