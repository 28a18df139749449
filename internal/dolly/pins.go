package dolly

import (
	"context"
	"fmt"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
)

// SavePin stores origin, target, offsets and a settings snapshot in slot.
func (c *Controller) SavePin(ctx context.Context, slot int) error {
	if err := storage.CheckSlot(slot); err != nil {
		return err
	}
	if c.deps.Store == nil {
		return ErrNoStore
	}
	var pin *model.Pin
	if err := c.do(ctx, func(s *state) error {
		pin = s.pin()
		return nil
	}); err != nil {
		return err
	}
	if err := c.deps.Store.SavePin(slot, pin); err != nil {
		c.statusf("Error exporting Pin %d: %v", slot, err)
		return fmt.Errorf("saving pin %d: %w", slot, err)
	}
	c.statusf("Pin %d updated with current origin, target, offsets, and settings.", slot)
	return nil
}

// LoadPin restores slot and regenerates. Members absent from the stored pin
// keep their current values.
func (c *Controller) LoadPin(ctx context.Context, slot int) error {
	if err := storage.CheckSlot(slot); err != nil {
		return err
	}
	if c.deps.Store == nil {
		return ErrNoStore
	}
	pin, err := c.deps.Store.LoadPin(slot)
	if err != nil {
		c.statusf("Pin %d: %v", slot, err)
		return err
	}
	return c.do(ctx, func(s *state) error {
		s.applyPin(pin)
		s.dirty = true
		c.statusf("Loaded Pin %d", slot)
		return nil
	})
}

// ListPins returns the occupied slots.
func (c *Controller) ListPins() ([]int, error) {
	if c.deps.Store == nil {
		return nil, ErrNoStore
	}
	return c.deps.Store.ListPins()
}

func (s *state) pin() *model.Pin {
	origin := model.VecOf(s.origin)
	offset := model.VecOf(s.xf.Translation).Round(3)
	e := s.xf.Rotation.Euler(orient.XYZ)
	rot := [3]float64{e[0], e[1], e[2]}
	p := &model.Pin{
		Origin:         &origin,
		HasTarget:      true,
		CameraOffset:   &offset,
		RotationOffset: &rot,
		Settings:       model.SnapshotSettings(s.settings),
	}
	if s.target != nil {
		t := model.VecOf(*s.target)
		p.Target = &t
	}
	return p
}

func (s *state) applyPin(p *model.Pin) {
	if p.Origin != nil {
		o := p.Origin.R3()
		s.origin = o
		s.center = &o
	}
	if p.HasTarget {
		if p.Target != nil {
			t := p.Target.R3()
			s.target = &t
		} else {
			s.target = nil
		}
		s.useTarget = s.target != nil
	}
	if p.CameraOffset != nil {
		s.xf.Translation = p.CameraOffset.R3()
	}
	if p.RotationOffset != nil {
		r := *p.RotationOffset
		s.xf.Rotation = orient.FromEuler(orient.XYZ, r[0], r[1], r[2])
	}
	p.Settings.ApplyTo(&s.settings)
}
