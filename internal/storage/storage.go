// Package storage defines where pins and export records are kept.
package storage

import (
	"errors"
	"fmt"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
)

// PinSlots is the number of bookmark slots.
const PinSlots = 8

var (
	ErrPinEmpty    = errors.New("pin is empty")
	ErrInvalidSlot = errors.New("pin slot out of range")
)

// CheckSlot returns ErrInvalidSlot unless slot is in 1..PinSlots.
func CheckSlot(slot int) error {
	if slot < 1 || slot > PinSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Pins
	SavePin(slot int, p *model.Pin) error
	// LoadPin returns ErrPinEmpty for a slot that was never saved.
	LoadPin(slot int) (*model.Pin, error)
	// ListPins returns the occupied slots in ascending order.
	ListPins() ([]int, error)

	// RecordExport keeps a history entry for a path sent to the renderer.
	RecordExport(r *model.ExportRecord) error
}
