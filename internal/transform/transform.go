// Package transform applies the operator's offsets and send-time
// adjustments to a generated path.
//
// Offsets run once per regeneration and their result becomes the stored
// path. Finalize runs on every send and works on a copy.
package transform

import (
	"github.com/Changa-Husky/VrChatDollyController/internal/lookat"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/golang/geo/r3"
)

const (
	identityEps  = 1e-12
	verticalRoll = 90.0
)

// State is the accumulated transform applied on top of generated paths.
type State struct {
	// Translation is added to every non-anchor position.
	Translation r3.Vector
	// Rotation is applied about the centroid of the non-anchor points.
	Rotation orient.Quat

	Reverse       bool
	Vertical      bool
	Pause         bool
	PausePair     bool
	PauseDuration float64
}

// NewState returns a state with no offsets and the given pause length.
func NewState(pauseDuration float64) State {
	return State{Rotation: orient.Identity(), PauseDuration: pauseDuration}
}

// Send carries the values stamped on every waypoint when a path is sent.
type Send struct {
	Settings  model.Settings
	Target    *r3.Vector
	UseTarget bool
}

// anchors reports the waypoint exempt from offsets and look-at: the embedded
// target (index 1) of a loaded path while a view target is set.
func anchors(mode model.Mode, hasTarget bool) func(i int) bool {
	if mode == model.ModeLoaded && hasTarget {
		return func(i int) bool { return i == 1 }
	}
	return func(int) bool { return false }
}

// ApplyOffsets translates then rotates p in place. Dolly-zoom paths are
// defined by origin and target and are left alone.
func (s State) ApplyOffsets(p *model.Path, hasTarget bool) {
	if p.Mode == model.ModeDollyZoom || len(p.Waypoints) == 0 {
		return
	}
	skip := anchors(p.Mode, hasTarget)
	wps := p.Waypoints

	for i := range wps {
		if skip(i) {
			continue
		}
		wps[i].Position = model.VecOf(wps[i].Position.R3().Add(s.Translation)).Round(3)
	}

	if s.Rotation.IsIdentity(identityEps) {
		return
	}
	pivot, ok := model.Centroid(wps, skip)
	if !ok {
		return
	}
	for i := range wps {
		if skip(i) {
			continue
		}
		rel := wps[i].Position.R3().Sub(pivot)
		wps[i].Position = model.VecOf(pivot.Add(s.Rotation.Rotate(rel))).Round(3)

		r := wps[i].Rotation
		base := orient.FromEuler(orient.XYZ, r.X, r.Y, r.Z)
		e := s.Rotation.Mul(base).Euler(orient.XYZ)
		wps[i].Rotation = model.Vec3{X: e[0], Y: e[1], Z: e[2]}.Round(2)
	}
}

// Finalize returns the waypoint list to export: a deep copy of p with
// send-time values stamped, look-at applied, vertical roll, reversal and
// pause hold points. Indices of the result always run 0..N-1.
func (s State) Finalize(p model.Path, send Send) []model.Waypoint {
	wps := model.CloneWaypoints(p.Waypoints)
	hasTarget := send.Target != nil
	skip := anchors(p.Mode, hasTarget)
	set := send.Settings

	for i := range wps {
		wps[i].LookAtMeXOffset = set.LookAtX
		wps[i].LookAtMeYOffset = set.LookAtY
		wps[i].Speed = set.Speed
		if p.Mode != model.ModeDollyZoom {
			wps[i].Zoom = set.Zoom
		}
	}

	if hasTarget && send.UseTarget {
		for i := range wps {
			if skip(i) {
				continue
			}
			a := lookat.Solve(wps[i].Position.R3(), *send.Target, false)
			wps[i].Rotation = model.Vec3{X: a.X, Y: a.Y, Z: a.Z}.Round(2)
		}
	}

	if s.Vertical {
		for i := range wps {
			wps[i].Rotation = Vertical(wps[i].Rotation)
		}
	}

	if s.Reverse {
		Reverse(wps, p.Mode == model.ModeLoaded && hasTarget)
	}

	if s.Pause {
		wps = AddPause(wps, s.PauseDuration, s.PausePair)
	}
	model.Reindex(wps)
	return wps
}

// Vertical rolls an orientation by 90° about its own forward axis for
// portrait framing.
func Vertical(r model.Vec3) model.Vec3 {
	q := orient.FromEuler(orient.YXZ, r.Y, r.X, r.Z).Mul(orient.About(orient.AxisZ, verticalRoll))
	e := q.Euler(orient.YXZ)
	return model.Vec3{X: e[1], Y: e[0], Z: e[2]}.Round(2)
}

// Reverse flips wps in place. With keepAnchor set and more than two points,
// the first two stay where they are.
func Reverse(wps []model.Waypoint, keepAnchor bool) {
	rest := wps
	if keepAnchor && len(wps) > 2 {
		rest = wps[2:]
	}
	for i, j := 0, len(rest)-1; i < j; i, j = i+1, j-1 {
		rest[i], rest[j] = rest[j], rest[i]
	}
}

// AddPause appends a hold at the last pose with zero speed. With pair set a
// zero-length resume marker follows the hold.
func AddPause(wps []model.Waypoint, duration float64, pair bool) []model.Waypoint {
	if len(wps) == 0 {
		return wps
	}
	last := wps[len(wps)-1]

	hold := last.Clone()
	hold.Duration = model.Round(duration, 3)
	hold.Speed = 0
	wps = append(wps, hold)

	if pair {
		resume := last.Clone()
		resume.Duration = 0
		resume.Speed = 0
		wps = append(wps, resume)
	}
	model.Reindex(wps)
	return wps
}
