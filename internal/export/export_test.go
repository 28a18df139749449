package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Used_Locations")
	w := NewWriter(dir)

	wps := []model.Waypoint{
		{Index: 0, Duration: 1, Position: model.Vec3{X: 1}},
		{Index: 1, Duration: 2, Position: model.Vec3{X: 2}},
	}
	path, err := w.Write(wps)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.True(t, filepath.IsAbs(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []model.Waypoint
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[1].Position.X)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriter_WriteNilIsEmptyArray(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.Write(nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestWriteJSON_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, map[string]int{"a": 1}))
	require.NoError(t, WriteJSON(path, map[string]int{"b": 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(data))
}

func TestWriteJSON_EncodeErrorKeepsOld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, []int{1}))

	err := WriteJSON(path, func() {})
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(data))
}
