package model

import "github.com/golang/geo/r3"

// Path is an ordered waypoint list tagged with the mode that produced it.
type Path struct {
	Mode      Mode
	Waypoints []Waypoint
}

// CloneWaypoints deep-copies a waypoint slice.
func CloneWaypoints(wps []Waypoint) []Waypoint {
	out := make([]Waypoint, len(wps))
	for i, w := range wps {
		out[i] = w.Clone()
	}
	return out
}

// Reindex rewrites Index so it matches each waypoint's position.
func Reindex(wps []Waypoint) {
	for i := range wps {
		wps[i].Index = i
	}
}

// Centroid returns the mean position of the waypoints whose index is not
// skipped. ok is false when nothing remains.
func Centroid(wps []Waypoint, skip func(i int) bool) (c r3.Vector, ok bool) {
	n := 0
	for i, w := range wps {
		if skip != nil && skip(i) {
			continue
		}
		c = c.Add(w.Position.R3())
		n++
	}
	if n == 0 {
		return r3.Vector{}, false
	}
	return c.Mul(1 / float64(n)), true
}
