package path

import (
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/golang/geo/r3"
)

// Loaded re-centers the custom path on its own centroid at scale 1 and
// applies the current zoom, speed, aperture and focal distance. Every other
// field of the source waypoints is kept except Index, which is renumbered
// in file order.
func Loaded(in Input) ([]model.Waypoint, error) {
	if len(in.Loaded) == 0 {
		return []model.Waypoint{}, ErrNoLoadedPath
	}
	const scale = 1.0

	c, _ := model.Centroid(in.Loaded, nil)
	s := in.Settings
	wps := model.CloneWaypoints(in.Loaded)
	for i := range wps {
		rel := wps[i].Position.R3().Sub(c)
		p := c.Add(rel.Mul(scale))
		wps[i].Position = model.VecOf(p).Round(3)
		wps[i].Zoom = s.Zoom
		wps[i].Speed = s.Speed
		wps[i].Aperture = s.Aperture
		wps[i].FocalDistance = s.FocalDistance
	}
	model.Reindex(wps)
	return wps, nil
}

// Rebase shifts wps so the first waypoint sits at origin. It returns a new
// slice; an empty input yields ErrNoLoadedPath.
func Rebase(wps []model.Waypoint, origin r3.Vector) ([]model.Waypoint, error) {
	if len(wps) == 0 {
		return nil, ErrNoLoadedPath
	}
	offset := origin.Sub(wps[0].Position.R3())
	out := model.CloneWaypoints(wps)
	for i := range out {
		out[i].Position = model.VecOf(out[i].Position.R3().Add(offset)).Round(3)
	}
	return out, nil
}
