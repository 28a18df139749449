// Package path builds dolly waypoint lists for each generation mode.
package path

import (
	"errors"
	"fmt"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/golang/geo/r3"
)

var (
	ErrNoTarget     = errors.New("no view target set")
	ErrNoLoadedPath = errors.New("no custom path loaded")
)

// Input is everything a generator reads. Generators never modify it.
type Input struct {
	Settings model.Settings

	// Origin is the start position captured from the camera.
	Origin r3.Vector
	// Center overrides Origin as the circle center when set.
	Center *r3.Vector
	Target *r3.Vector
	// Camera is the last known camera position.
	Camera r3.Vector
	Loaded []model.Waypoint

	IsLocal          bool
	ArcClockwise     bool
	ArcFaceTangent   bool
	ReverseDollyZoom bool
	// DollyZoomBase is the zoom captured on first entry to dolly-zoom mode.
	// Zero falls back to the current zoom setting.
	DollyZoomBase float64
}

// Generate dispatches to the generator for mode. On error the returned path
// is empty but tagged with mode.
func Generate(mode model.Mode, in Input) (model.Path, error) {
	var (
		wps []model.Waypoint
		err error
	)
	switch mode {
	case model.ModeCircle:
		wps = Circle(in)
	case model.ModeArc:
		wps = Arc(in)
	case model.ModeLine:
		wps = Line(in)
	case model.ModeEllipse:
		wps = Ellipse(in)
	case model.ModeLoaded:
		wps, err = Loaded(in)
	case model.ModeDollyZoom:
		wps, err = DollyZoom(in)
	default:
		return model.Path{Mode: mode}, fmt.Errorf("unknown mode %d", int(mode))
	}
	if wps == nil {
		wps = []model.Waypoint{}
	}
	return model.Path{Mode: mode, Waypoints: wps}, err
}

// base returns a waypoint carrying the settings-derived fields.
func (in Input) base(i int) model.Waypoint {
	s := in.Settings
	return model.Waypoint{
		Index:         i,
		FocalDistance: s.FocalDistance,
		Aperture:      s.Aperture,
		Hue:           model.DefaultHue,
		Saturation:    model.DefaultSaturation,
		Lightness:     model.DefaultLightness,
		Zoom:          s.Zoom,
		Speed:         s.Speed,
	}
}

func (in Input) points() int {
	if in.Settings.Points < 1 {
		return 1
	}
	return in.Settings.Points
}

func pos(x, y, z float64) model.Vec3 {
	return model.Vec3{X: x, Y: y, Z: z}.Round(3)
}
