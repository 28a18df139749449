package model

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects the path generator. The numeric values are the codes used
// by the SetDollyMode avatar parameter.
type Mode int

const (
	ModeCircle Mode = iota + 1
	ModeArc
	ModeLine
	ModeEllipse
	ModeLoaded
	ModeDollyZoom
)

// Modes lists every mode in code order.
var Modes = []Mode{ModeCircle, ModeArc, ModeLine, ModeEllipse, ModeLoaded, ModeDollyZoom}

func (m Mode) String() string {
	switch m {
	case ModeCircle:
		return "circle"
	case ModeArc:
		return "arc"
	case ModeLine:
		return "line"
	case ModeEllipse:
		return "ellipse"
	case ModeLoaded:
		return "loaded"
	case ModeDollyZoom:
		return "dollyzoom"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the six modes.
func (m Mode) Valid() bool {
	return m >= ModeCircle && m <= ModeDollyZoom
}

// ModeFromCode converts a remote parameter value, truncating toward zero
// as the avatar parameter arrives as a float.
func ModeFromCode(v float64) (Mode, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	m := Mode(int(v))
	return m, m.Valid()
}

// ParseMode accepts a mode name or its numeric code.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if s == m.String() || s == fmt.Sprint(int(m)) {
			return m, nil
		}
	}
	switch s {
	case "file", "custom":
		return ModeLoaded, nil
	case "dolly-zoom", "dolly_zoom", "zoom":
		return ModeDollyZoom, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
