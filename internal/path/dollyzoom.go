package path

import (
	"math"

	"github.com/Changa-Husky/VrChatDollyController/internal/lookat"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
)

const (
	dollyZoomPoints = 5
	dollyZoomMaxT   = 0.95
	zoomMin         = 20.0
	zoomMax         = 300.0
)

// DollyZoom moves from Origin toward the target while widening the zoom in
// proportion to the remaining distance, keeping the subject framed.
func DollyZoom(in Input) ([]model.Waypoint, error) {
	if in.Target == nil {
		return []model.Waypoint{}, ErrNoTarget
	}
	start, target := in.Origin, *in.Target
	d0 := target.Sub(start).Norm()
	base := in.DollyZoomBase
	if base == 0 {
		base = in.Settings.Zoom
	}

	wps := make([]model.Waypoint, 0, dollyZoomPoints)
	for i := 0; i < dollyZoomPoints; i++ {
		t := dollyZoomMaxT * float64(i) / float64(dollyZoomPoints-1)
		if in.ReverseDollyZoom {
			t = dollyZoomMaxT - t
		}
		p := start.Mul(1 - t).Add(target.Mul(t))

		zoom := ClampZoom(ZoomAt(base, d0, target.Sub(p).Norm(), in.Settings.Exaggeration))
		rot := lookat.Solve(p, target, false)

		wp := in.base(i)
		wp.Zoom = model.Round(zoom, 2)
		wp.Duration = model.Round(t*in.Settings.Duration, 3)
		wp.Position = model.VecOf(p).Round(3)
		wp.Rotation = model.Vec3{X: rot.X, Y: rot.Y, Z: rot.Z}.Round(2)
		wps = append(wps, wp)
	}
	return wps, nil
}

// ZoomAt is the unclamped dolly-zoom compensation for a camera d away from
// the target when the path started d0 away. A zero d0 keeps the base zoom.
func ZoomAt(base, d0, d, exaggeration float64) float64 {
	if d0 <= 0 {
		return base
	}
	return base * (d / d0) * exaggeration
}

// ClampZoom limits a zoom value to the renderer's accepted range.
func ClampZoom(z float64) float64 {
	return math.Max(zoomMin, math.Min(zoomMax, z))
}
