package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Default tint applied to generated waypoints.
const (
	DefaultHue        = 120.0
	DefaultSaturation = 100.0
	DefaultLightness  = 50.0
)

// Vec3 is the {X,Y,Z} object used for positions and rotations on the wire.
type Vec3 struct {
	X float64 `json:"X" yaml:"X"`
	Y float64 `json:"Y" yaml:"Y"`
	Z float64 `json:"Z" yaml:"Z"`
}

// VecOf converts an r3 vector.
func VecOf(v r3.Vector) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// R3 converts to an r3 vector.
func (v Vec3) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Round returns v rounded to the given number of decimals.
func (v Vec3) Round(decimals int) Vec3 {
	return Vec3{X: Round(v.X, decimals), Y: Round(v.Y, decimals), Z: Round(v.Z, decimals)}
}

// Waypoint is one timed camera pose of a dolly path.
type Waypoint struct {
	Index           int     `json:"Index" yaml:"Index"`
	PathIndex       int     `json:"PathIndex" yaml:"PathIndex"`
	FocalDistance   float64 `json:"FocalDistance" yaml:"FocalDistance"`
	Aperture        float64 `json:"Aperture" yaml:"Aperture"`
	Hue             float64 `json:"Hue" yaml:"Hue"`
	Saturation      float64 `json:"Saturation" yaml:"Saturation"`
	Lightness       float64 `json:"Lightness" yaml:"Lightness"`
	LookAtMeXOffset float64 `json:"LookAtMeXOffset" yaml:"LookAtMeXOffset"`
	LookAtMeYOffset float64 `json:"LookAtMeYOffset" yaml:"LookAtMeYOffset"`
	Zoom            float64 `json:"Zoom" yaml:"Zoom"`
	Speed           float64 `json:"Speed" yaml:"Speed"`
	Duration        float64 `json:"Duration" yaml:"Duration"`
	Position        Vec3    `json:"Position" yaml:"Position"`
	Rotation        Vec3    `json:"Rotation" yaml:"Rotation"`
	IsLocal         *bool   `json:"islocal,omitempty" yaml:"islocal,omitempty"`

	// Extra keeps members this program does not model so that authored
	// files survive a load/export cycle.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

var knownKeys = map[string]bool{
	"Index": true, "PathIndex": true, "FocalDistance": true, "Aperture": true,
	"Hue": true, "Saturation": true, "Lightness": true,
	"LookAtMeXOffset": true, "LookAtMeYOffset": true,
	"Zoom": true, "Speed": true, "Duration": true,
	"Position": true, "Rotation": true, "islocal": true,
}

type waypointAlias Waypoint

// UnmarshalJSON decodes the known fields and stashes the rest in Extra.
func (w *Waypoint) UnmarshalJSON(data []byte) error {
	var a waypointAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]json.RawMessage)
		}
		a.Extra[k] = v
	}
	*w = Waypoint(a)
	return nil
}

// MarshalJSON encodes the known fields followed by any preserved extras.
func (w Waypoint) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(waypointAlias(w))
	if err != nil {
		return nil, err
	}
	if len(w.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range w.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy of w.
func (w Waypoint) Clone() Waypoint {
	c := w
	if w.IsLocal != nil {
		v := *w.IsLocal
		c.IsLocal = &v
	}
	if w.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(w.Extra))
		for k, v := range w.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// Validate reports non-finite coordinates.
func (w Waypoint) Validate() error {
	for _, f := range []float64{w.Position.X, w.Position.Y, w.Position.Z, w.Rotation.X, w.Rotation.Y, w.Rotation.Z, w.Duration} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("waypoint %d: non-finite value", w.Index)
		}
	}
	return nil
}

// Bool returns a pointer to v, for the optional islocal flag.
func Bool(v bool) *bool {
	return &v
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
