package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidValue = errors.New("invalid value")
	ErrUnknownParam = errors.New("unknown parameter")
)

// Param names accepted by Settings.Set. They double as console and config
// identifiers.
const (
	ParamRadius          = "radius"
	ParamDuration        = "duration"
	ParamPoints          = "points"
	ParamZoom            = "zoom"
	ParamSpeed           = "speed"
	ParamAperture        = "aperture"
	ParamFocalDistance   = "focal"
	ParamArcAngle        = "arc"
	ParamExaggeration    = "exag"
	ParamTranslationStep = "tstep"
	ParamRotationStep    = "rstep"
	ParamLookAtX         = "lookatx"
	ParamLookAtY         = "lookaty"
)

// Bounds is the closed interval an entry is clamped to.
type Bounds struct {
	Min, Max float64
}

// Clamp limits v to b.
func (b Bounds) Clamp(v float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, v))
}

// ParamBounds holds the entry bounds of every tunable parameter.
var ParamBounds = map[string]Bounds{
	ParamRadius:          {0.1, 10},
	ParamDuration:        {0.1, 30},
	ParamPoints:          {5, 50},
	ParamZoom:            {20, 300},
	ParamSpeed:           {0.1, 10},
	ParamAperture:        {1.4, 32},
	ParamFocalDistance:   {0.1, 30},
	ParamArcAngle:        {5, 180},
	ParamExaggeration:    {1, 5},
	ParamTranslationStep: {0.01, 5},
	ParamRotationStep:    {0.01, 90},
	ParamLookAtX:         {-20, 20},
	ParamLookAtY:         {-20, 20},
}

// Settings are the generation parameters edited by the operator.
type Settings struct {
	Radius          float64
	Duration        float64
	Points          int
	Zoom            float64
	Speed           float64
	Aperture        float64
	FocalDistance   float64
	ArcAngle        float64
	Exaggeration    float64
	TranslationStep float64
	RotationStep    float64
	LookAtX         float64
	LookAtY         float64
}

// DefaultSettings returns the startup and reset values.
func DefaultSettings() Settings {
	return Settings{
		Radius:          2,
		Duration:        2,
		Points:          15,
		Zoom:            45,
		Speed:           3,
		Aperture:        15,
		FocalDistance:   2,
		ArcAngle:        180,
		Exaggeration:    2,
		TranslationStep: 0.5,
		RotationStep:    1,
	}
}

// ParamNames returns the accepted parameter names, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(ParamBounds))
	for k := range ParamBounds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Settings) field(name string) (*float64, bool) {
	switch name {
	case ParamRadius:
		return &s.Radius, true
	case ParamDuration:
		return &s.Duration, true
	case ParamZoom:
		return &s.Zoom, true
	case ParamSpeed:
		return &s.Speed, true
	case ParamAperture:
		return &s.Aperture, true
	case ParamFocalDistance:
		return &s.FocalDistance, true
	case ParamArcAngle:
		return &s.ArcAngle, true
	case ParamExaggeration:
		return &s.Exaggeration, true
	case ParamTranslationStep:
		return &s.TranslationStep, true
	case ParamRotationStep:
		return &s.RotationStep, true
	case ParamLookAtX:
		return &s.LookAtX, true
	case ParamLookAtY:
		return &s.LookAtY, true
	}
	return nil, false
}

// Set clamps v to the parameter's bounds and stores it, returning the
// stored value. Non-finite input leaves the setting unchanged.
func (s *Settings) Set(name string, v float64) (float64, error) {
	name = strings.ToLower(name)
	b, ok := ParamBounds[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, v)
	}
	v = b.Clamp(v)
	if name == ParamPoints {
		s.Points = int(math.Round(v))
		return float64(s.Points), nil
	}
	f, _ := s.field(name)
	*f = v
	return v, nil
}

// SetText parses text and applies it with Set. Unparsable text is
// discarded and the previous value kept.
func (s *Settings) SetText(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, text)
	}
	return s.Set(name, v)
}

// Get returns the current value of a parameter.
func (s Settings) Get(name string) (float64, error) {
	name = strings.ToLower(name)
	if name == ParamPoints {
		return float64(s.Points), nil
	}
	f, ok := s.field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return *f, nil
}
