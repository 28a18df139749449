package path

import (
	"math"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
)

const ellipseRatio = 0.75

// Circle places N points on a horizontal circle around Center (or Origin),
// each yawed toward the center. Durations follow (i/N)·total.
func Circle(in Input) []model.Waypoint {
	c := in.Origin
	if in.Center != nil {
		c = *in.Center
	}
	n := in.points()
	r := in.Settings.Radius
	total := in.Settings.Duration

	wps := make([]model.Waypoint, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n)
		angle := frac * 2 * math.Pi
		p := pos(c.X+r*math.Cos(angle), c.Y, c.Z+r*math.Sin(angle))
		yaw := orient.Degrees(math.Atan2(c.Z-p.Z, c.X-p.X))

		wp := in.base(i)
		wp.Duration = model.Round(frac*total, 3)
		wp.Position = p
		wp.Rotation = model.Vec3{Y: model.Round(yaw, 2)}
		wp.IsLocal = model.Bool(in.IsLocal)
		wps = append(wps, wp)
	}
	return wps
}

// Ellipse is Circle around Origin with the Z radius shortened, no yaw and
// no islocal flag.
func Ellipse(in Input) []model.Waypoint {
	c := in.Origin
	n := in.points()
	r := in.Settings.Radius
	total := in.Settings.Duration

	wps := make([]model.Waypoint, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n)
		angle := frac * 2 * math.Pi

		wp := in.base(i)
		wp.Duration = model.Round(frac*total, 3)
		wp.Position = pos(c.X+r*math.Cos(angle), c.Y, c.Z+r*ellipseRatio*math.Sin(angle))
		wps = append(wps, wp)
	}
	return wps
}

// Line runs along X from Origin.X−R to Origin.X+R at fixed Y and Z.
func Line(in Input) []model.Waypoint {
	o := in.Origin
	n := in.points()
	r := in.Settings.Radius
	per := model.Round(in.Settings.Duration/float64(max(1, n-1)), 3)
	startX, endX := o.X-r, o.X+r

	wps := make([]model.Waypoint, 0, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		wp := in.base(i)
		wp.Duration = per
		wp.Position = pos(startX+t*(endX-startX), o.Y, o.Z)
		wp.IsLocal = model.Bool(in.IsLocal)
		wps = append(wps, wp)
	}
	return wps
}
