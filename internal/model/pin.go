package model

import "encoding/json"

// PinSettings is the settings snapshot of a bookmark. Absent members leave
// the live value untouched on load.
type PinSettings struct {
	Radius          *float64 `json:"radius,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	Zoom            *float64 `json:"zoom,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
	Aperture        *float64 `json:"aperture,omitempty"`
	FocalDistance   *float64 `json:"focal_distance,omitempty"`
	ArcAngle        *float64 `json:"arc_angle,omitempty"`
	NumPoints       *float64 `json:"num_points,omitempty"`
	TranslationStep *float64 `json:"translation_step,omitempty"`
	RotationStep    *float64 `json:"rotation_step,omitempty"`
}

// SnapshotSettings captures every field of s.
func SnapshotSettings(s Settings) *PinSettings {
	f := func(v float64) *float64 { return &v }
	return &PinSettings{
		Radius:          f(s.Radius),
		Duration:        f(s.Duration),
		Zoom:            f(s.Zoom),
		Speed:           f(s.Speed),
		Aperture:        f(s.Aperture),
		FocalDistance:   f(s.FocalDistance),
		ArcAngle:        f(s.ArcAngle),
		NumPoints:       f(float64(s.Points)),
		TranslationStep: f(s.TranslationStep),
		RotationStep:    f(s.RotationStep),
	}
}

// ApplyTo copies the present members onto s. Values go through Set so a
// hand-edited bookmark cannot push a setting out of bounds.
func (p *PinSettings) ApplyTo(s *Settings) {
	if p == nil {
		return
	}
	for name, v := range map[string]*float64{
		ParamRadius:          p.Radius,
		ParamDuration:        p.Duration,
		ParamZoom:            p.Zoom,
		ParamSpeed:           p.Speed,
		ParamAperture:        p.Aperture,
		ParamFocalDistance:   p.FocalDistance,
		ParamArcAngle:        p.ArcAngle,
		ParamPoints:          p.NumPoints,
		ParamTranslationStep: p.TranslationStep,
		ParamRotationStep:    p.RotationStep,
	} {
		if v != nil {
			_, _ = s.Set(name, *v)
		}
	}
}

// Pin is a stored bookmark. HasTarget distinguishes an explicit null target
// from an absent member.
type Pin struct {
	Origin         *Vec3        `json:"origin,omitempty"`
	Target         *Vec3        `json:"target"`
	HasTarget      bool         `json:"-"`
	CameraOffset   *Vec3        `json:"camera_offset,omitempty"`
	RotationOffset *[3]float64  `json:"rotation_offset,omitempty"`
	Settings       *PinSettings `json:"settings,omitempty"`
}

type pinAlias Pin

// UnmarshalJSON records whether "target" was present.
func (p *Pin) UnmarshalJSON(data []byte) error {
	var a pinAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_, a.HasTarget = raw["target"]
	*p = Pin(a)
	return nil
}
