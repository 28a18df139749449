package jsonfile

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Bookmarks")
	b := New(Config{Dir: dir})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b, dir
}

func TestSaveLoadPin(t *testing.T) {
	b, dir := newBackend(t)

	target := model.Vec3{X: 1, Y: 2, Z: 3}
	pin := &model.Pin{
		Origin:         &model.Vec3{X: 4},
		Target:         &target,
		CameraOffset:   &model.Vec3{Y: 0.5},
		RotationOffset: &[3]float64{0, 15, 0},
		Settings:       model.SnapshotSettings(model.DefaultSettings()),
	}
	require.NoError(t, b.SavePin(3, pin))
	assert.FileExists(t, filepath.Join(dir, "pin3.json"))

	got, err := b.LoadPin(3)
	require.NoError(t, err)
	assert.Equal(t, pin.Origin, got.Origin)
	assert.Equal(t, &target, got.Target)
	assert.True(t, got.HasTarget)
	assert.Equal(t, [3]float64{0, 15, 0}, *got.RotationOffset)
	assert.Equal(t, 15.0, *got.Settings.NumPoints)
}

func TestLoadPin_NullTarget(t *testing.T) {
	b, _ := newBackend(t)
	require.NoError(t, b.SavePin(1, &model.Pin{Origin: &model.Vec3{X: 1}}))

	got, err := b.LoadPin(1)
	require.NoError(t, err)
	assert.True(t, got.HasTarget, "saved pins always carry the target member")
	assert.Nil(t, got.Target)
}

func TestLoadPin_Empty(t *testing.T) {
	b, _ := newBackend(t)
	_, err := b.LoadPin(5)
	assert.ErrorIs(t, err, storage.ErrPinEmpty)
}

func TestLoadPin_HandWrittenFile(t *testing.T) {
	b, dir := newBackend(t)
	doc := `{"origin": {"X": 1.5, "Y": 0, "Z": -2}, "camera_offset": {"X": 0, "Y": 0, "Z": 0},
		"rotation_offset": [0.0, 0.0, 0.0], "settings": {"radius": 3, "num_points": 20}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pin8.json"), []byte(doc), 0644))

	got, err := b.LoadPin(8)
	require.NoError(t, err)
	assert.False(t, got.HasTarget)
	assert.Equal(t, 1.5, got.Origin.X)
	assert.Equal(t, 3.0, *got.Settings.Radius)
	assert.Nil(t, got.Settings.Zoom)
}

func TestSlotBounds(t *testing.T) {
	b, _ := newBackend(t)
	assert.ErrorIs(t, b.SavePin(0, &model.Pin{}), storage.ErrInvalidSlot)
	_, err := b.LoadPin(9)
	assert.ErrorIs(t, err, storage.ErrInvalidSlot)
}

func TestListPins(t *testing.T) {
	b, dir := newBackend(t)
	require.NoError(t, b.SavePin(7, &model.Pin{}))
	require.NoError(t, b.SavePin(2, &model.Pin{}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pin12.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte(`{}`), 0644))

	slots, err := b.ListPins()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, slots)
}

func TestListPins_MissingDir(t *testing.T) {
	b := New(Config{Dir: filepath.Join(t.TempDir(), "nope")})
	slots, err := b.ListPins()
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRecordExport_AppendsLines(t *testing.T) {
	b, dir := newBackend(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.RecordExport(&model.ExportRecord{
			Time:   time.Unix(int64(i), 0),
			Mode:   "circle",
			Points: 15 + i,
		}))
	}

	f, err := os.Open(filepath.Join(dir, HistoryFile))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
		assert.Contains(t, sc.Text(), `"mode":"circle"`)
	}
	assert.Equal(t, 3, lines)
}
