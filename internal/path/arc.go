package path

import (
	"math"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
)

const (
	arcEps         = 1e-6
	arcDegPerSeg   = 5.0
	arcMinSegments = 2
	arcMaxSegments = 180
	arcMinSpan     = 0.001
)

// ArcSegments returns the number of waypoints used for a span in degrees.
func ArcSegments(span float64) int {
	segs := int(math.Round(math.Max(2, span/arcDegPerSeg)))
	return max(arcMinSegments, min(arcMaxSegments, segs))
}

// Arc sweeps from the camera's bearing around the target (or the camera
// itself when no target is set) by the configured span.
func Arc(in Input) []model.Waypoint {
	cam := in.Camera
	c := cam
	if in.Target != nil {
		c = *in.Target
	}

	vx, vz := cam.X-c.X, cam.Z-c.Z
	start := 0.0
	if math.Abs(vx) > arcEps || math.Abs(vz) > arcEps {
		start = orient.Degrees(math.Atan2(vx, vz))
	}

	span := math.Max(0, math.Min(360, in.Settings.ArcAngle))
	if span == 0 {
		span = arcMinSpan
	}
	sign, tangent := 1.0, 90.0
	if in.ArcClockwise {
		sign, tangent = -1, -90
	}

	segs := ArcSegments(span)
	per := model.Round(in.Settings.Duration/float64(max(1, segs-1)), 3)
	r := in.Settings.Radius

	wps := make([]model.Waypoint, 0, segs)
	for i := 0; i < segs; i++ {
		t := float64(i) / float64(segs-1)
		a := start + sign*t*span
		rad := orient.Radians(a)
		x := c.X + r*math.Sin(rad)
		z := c.Z + r*math.Cos(rad)

		yaw := orient.Degrees(math.Atan2(c.X-x, c.Z-z))
		if in.ArcFaceTangent {
			yaw = a + tangent
		}

		wp := in.base(i)
		wp.Duration = per
		wp.Position = pos(x, c.Y, z)
		wp.Rotation = model.Vec3{Y: model.Round(yaw, 2)}
		wp.IsLocal = model.Bool(in.IsLocal)
		wps = append(wps, wp)
	}
	return wps
}
