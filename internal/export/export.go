// Package export writes the waypoint file the renderer imports.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
)

// FileName is the waypoint file inside the used-locations folder.
const FileName = "temp_dolly_export.json"

// Writer replaces the export file on every send.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns the absolute file path handed to the renderer.
func (w *Writer) Path() string {
	p := filepath.Join(w.dir, FileName)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Write stores wps and returns the file path. Readers never observe a
// partially written file.
func (w *Writer) Write(wps []model.Waypoint) (string, error) {
	if wps == nil {
		wps = []model.Waypoint{}
	}
	path := w.Path()
	if err := WriteJSON(path, wps); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJSON encodes v into a temp file next to path and renames it over
// path.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
