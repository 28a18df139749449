package dolly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/Changa-Husky/VrChatDollyController/internal/path"
	"github.com/Changa-Husky/VrChatDollyController/internal/transform"
	"github.com/golang/geo/r3"
)

// SetMode switches the generator. Unlike a remote selection, selecting the
// current mode regenerates.
func (c *Controller) SetMode(ctx context.Context, m model.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %d", int(m))
	}
	return c.do(ctx, func(s *state) error {
		c.setMode(s, m)
		c.statusf("Mode: %s", m)
		return nil
	})
}

// Set clamps and stores a setting, returning the stored value.
func (c *Controller) Set(ctx context.Context, name string, v float64) (float64, error) {
	var out float64
	err := c.do(ctx, func(s *state) error {
		var err error
		out, err = s.settings.Set(name, v)
		if err != nil {
			return err
		}
		s.dirty = true
		return nil
	})
	return out, err
}

// SetText parses and stores a setting. Unparsable text leaves the previous
// value in place and nothing is regenerated.
func (c *Controller) SetText(ctx context.Context, name, text string) (float64, error) {
	var out float64
	err := c.do(ctx, func(s *state) error {
		var err error
		out, err = s.settings.SetText(name, text)
		if err != nil {
			return err
		}
		s.dirty = true
		return nil
	})
	return out, err
}

// SetPauseDuration sets the hold length appended when pause is on.
func (c *Controller) SetPauseDuration(ctx context.Context, seconds float64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: pause duration %v", model.ErrInvalidValue, seconds)
	}
	return c.do(ctx, func(s *state) error {
		s.xf.PauseDuration = seconds
		s.dirty = true
		return nil
	})
}

// SetFlag turns a flag on or off.
func (c *Controller) SetFlag(ctx context.Context, f Flag, on bool) error {
	return c.do(ctx, func(s *state) error {
		return c.setFlag(s, f, on)
	})
}

// Toggle flips a flag and returns its new value.
func (c *Controller) Toggle(ctx context.Context, f Flag) (bool, error) {
	var on bool
	err := c.do(ctx, func(s *state) error {
		p := s.flag(f)
		if p == nil {
			return fmt.Errorf("unknown toggle %d", int(f))
		}
		on = !*p
		return c.setFlag(s, f, on)
	})
	return on, err
}

func (c *Controller) setFlag(s *state, f Flag, on bool) error {
	p := s.flag(f)
	if p == nil {
		return fmt.Errorf("unknown toggle %d", int(f))
	}
	*p = on
	c.statusf("%s: %t", f, on)
	// reverse dolly zoom only changes the dolly-zoom generator
	if f != FlagReverseDollyZoom || s.mode == model.ModeDollyZoom {
		s.dirty = true
	}
	return nil
}

func (s *state) flag(f Flag) *bool {
	switch f {
	case FlagReverse:
		return &s.xf.Reverse
	case FlagVertical:
		return &s.xf.Vertical
	case FlagPause:
		return &s.xf.Pause
	case FlagPausePair:
		return &s.xf.PausePair
	case FlagUseTarget:
		return &s.useTarget
	case FlagIsLocal:
		return &s.isLocal
	case FlagArcClockwise:
		return &s.arcClockwise
	case FlagArcTangent:
		return &s.arcTangent
	case FlagReverseDollyZoom:
		return &s.reverseZoom
	}
	return nil
}

// Nudge applies an action as if it had arrived from the avatar.
func (c *Controller) Nudge(ctx context.Context, a nudge.Action) error {
	return c.do(ctx, func(s *state) error {
		return c.apply(s, a)
	})
}

// CaptureTarget sets the view target to the current camera position.
func (c *Controller) CaptureTarget(ctx context.Context) error {
	return c.Nudge(ctx, nudge.Action{Kind: nudge.CaptureTarget})
}

// CaptureOrigin sets the path origin to the current camera position.
func (c *Controller) CaptureOrigin(ctx context.Context) error {
	return c.Nudge(ctx, nudge.Action{Kind: nudge.CaptureOrigin})
}

// SetTarget sets the view target explicitly. A nil target clears it and
// turns use-target off.
func (c *Controller) SetTarget(ctx context.Context, t *r3.Vector) error {
	return c.do(ctx, func(s *state) error {
		if t == nil {
			s.target = nil
			s.useTarget = false
			c.statusf("Target cleared")
		} else {
			v := *t
			s.target = &v
			s.useTarget = true
			c.statusf("Target set: %s", formatVec(v))
		}
		s.dirty = true
		return nil
	})
}

// SetOrigin sets the path origin and circle center explicitly.
func (c *Controller) SetOrigin(ctx context.Context, o r3.Vector) error {
	return c.do(ctx, func(s *state) error {
		s.origin = o
		s.center = &o
		s.dirty = true
		c.statusf("Path origin set: %s", formatVec(o))
		return nil
	})
}

// LoadPath reads a custom path file and makes it the loaded path. The mode
// is not changed.
func (c *Controller) LoadPath(ctx context.Context, file string) (int, error) {
	wps, err := path.LoadFile(file)
	if err != nil {
		c.statusf("Error loading custom path: %v", err)
		return 0, err
	}
	err = c.do(ctx, func(s *state) error {
		s.loaded = wps
		s.dirty = true
		c.statusf("Custom path loaded from %s, %d waypoints.", file, len(wps))
		return nil
	})
	return len(wps), err
}

// Rebase moves the loaded path so its first waypoint sits at the origin.
func (c *Controller) Rebase(ctx context.Context) error {
	return c.do(ctx, func(s *state) error {
		wps, err := path.Rebase(s.loaded, s.origin)
		if err != nil {
			c.statusf("No custom path loaded to rebase.")
			return err
		}
		s.loaded = wps
		s.dirty = true
		c.statusf("Loaded custom path rebased to start position %s", formatVec(s.origin))
		return nil
	})
}

// Reset restores default settings, clears offsets and switches, and
// re-arms the dolly-zoom baseline. Origin, target and the loaded path are
// kept.
func (c *Controller) Reset(ctx context.Context) error {
	return c.do(ctx, func(s *state) error {
		s.settings = model.DefaultSettings()
		xf := transform.NewState(c.opts.PauseDuration)
		xf.PausePair = c.opts.PausePair
		xf.Reverse = s.xf.Reverse
		s.xf = xf
		s.reverseZoom = false
		s.useTarget = s.target != nil
		s.zoomBase = 0
		if s.mode == model.ModeDollyZoom {
			s.zoomBase = s.settings.Zoom
		}
		s.dirty = true
		c.statusf("Reset to defaults")
		return nil
	})
}

// Resend regenerates and sends the current state again.
func (c *Controller) Resend(ctx context.Context) error {
	return c.do(ctx, func(s *state) error {
		s.dirty = true
		return nil
	})
}

// Play waits for the countdown and sends the play trigger. It runs on the
// caller's goroutine; cancelling ctx aborts it.
func (c *Controller) Play(ctx context.Context) error {
	left := c.opts.PlayCountdown
	if left > 0 {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		deadline := time.NewTimer(left)
		defer deadline.Stop()

		c.statusf("Starting in %d seconds...", int(left.Round(time.Second)/time.Second))
	wait:
		for {
			select {
			case <-ctx.Done():
				c.statusf("Play cancelled")
				return ctx.Err()
			case <-deadline.C:
				break wait
			case <-ticker.C:
				left -= time.Second
				if left > 0 {
					c.statusf("Starting in %d seconds...", int(left.Round(time.Second)/time.Second))
				}
			}
		}
	}
	if err := c.deps.Importer.Play(); err != nil {
		c.statusf("Error sending play: %v", err)
		return fmt.Errorf("sending play: %w", err)
	}
	c.statusf("Sent OSC /dolly/Play command")
	return nil
}

// Suspend defers regeneration until the returned resume func is called.
// Mutations made meanwhile are applied once on the final resume. Resume is
// safe to call more than once.
func (c *Controller) Suspend(ctx context.Context) (resume func(), err error) {
	err = c.do(ctx, func(s *state) error {
		s.suspended++
		return nil
	})
	if err != nil {
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			c.post(func(s *state) error {
				if s.suspended > 0 {
					s.suspended--
				}
				return nil
			})
		})
	}, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := c.do(ctx, func(s *state) error {
		v = s.view()
		return nil
	})
	return v, err
}

func (s *state) view() View {
	e := s.xf.Rotation.Euler(orient.XYZ)
	v := View{
		Mode:          s.mode,
		Settings:      s.settings,
		Origin:        model.VecOf(s.origin),
		UseTarget:     s.useTarget,
		Translation:   model.VecOf(s.xf.Translation).Round(3),
		Rotation:      model.Vec3{X: e[0], Y: e[1], Z: e[2]}.Round(2),
		Flags:         make(map[Flag]bool, len(flagNames)),
		PauseDuration: s.xf.PauseDuration,
		DollyZoomBase: s.zoomBase,
		LoadedPoints:  len(s.loaded),
		Suspended:     s.suspended > 0,
		Path:          model.CloneWaypoints(s.path.Waypoints),
		Sent:          model.CloneWaypoints(s.sent),
	}
	if s.center != nil {
		c := model.VecOf(*s.center)
		v.Center = &c
	}
	if s.target != nil {
		t := model.VecOf(*s.target)
		v.Target = &t
	}
	for f := range flagNames {
		v.Flags[f] = *s.flag(f)
	}
	return v
}
