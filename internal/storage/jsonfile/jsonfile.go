// Package jsonfile stores pins as pinN.json files in the bookmarks folder,
// the layout the renderer-side tooling already reads.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Changa-Husky/VrChatDollyController/internal/export"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
)

// HistoryFile collects export records, one JSON object per line.
const HistoryFile = "exports.jsonl"

// Config holds file backend settings
type Config struct {
	Dir string
}

// Backend keeps pins and export history as plain files
type Backend struct {
	cfg Config
	mu  sync.Mutex
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new file backend
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Init creates the bookmarks folder
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create bookmarks directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

func (b *Backend) pinPath(slot int) string {
	return filepath.Join(b.cfg.Dir, fmt.Sprintf("pin%d.json", slot))
}

// SavePin overwrites the slot file
func (b *Backend) SavePin(slot int, p *model.Pin) error {
	if err := storage.CheckSlot(slot); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return export.WriteJSON(b.pinPath(slot), p)
}

// LoadPin reads the slot file
func (b *Backend) LoadPin(slot int) (*model.Pin, error) {
	if err := storage.CheckSlot(slot); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.pinPath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("pin %d: %w", slot, storage.ErrPinEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pin %d: %w", slot, err)
	}
	var p model.Pin
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pin %d: %w", slot, err)
	}
	return &p, nil
}

// ListPins returns the slots that have a file
func (b *Backend) ListPins() ([]int, error) {
	entries, err := os.ReadDir(b.cfg.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}

	slots := []int{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "pin") || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "pin"), ".json"))
		if err != nil || storage.CheckSlot(n) != nil {
			continue
		}
		slots = append(slots, n)
	}
	sort.Ints(slots)
	return slots, nil
}

// RecordExport appends r to the history file
func (b *Backend) RecordExport(r *model.ExportRecord) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode export record: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(b.cfg.Dir, HistoryFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}
