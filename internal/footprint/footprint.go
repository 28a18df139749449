// Package footprint measures the ground-plane shape of a path.
package footprint

import (
	"fmt"
	"math"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Footprint is the XZ projection of a path.
type Footprint struct {
	Length float64 `json:"length"`
	MinX   float64 `json:"minX"`
	MinZ   float64 `json:"minZ"`
	MaxX   float64 `json:"maxX"`
	MaxZ   float64 `json:"maxZ"`
	WKT    string  `json:"wkt,omitempty"`
}

// Width is the X extent.
func (f Footprint) Width() float64 { return f.MaxX - f.MinX }

// Depth is the Z extent.
func (f Footprint) Depth() float64 { return f.MaxZ - f.MinZ }

func (f Footprint) String() string {
	return fmt.Sprintf("length %.2f m, %.2f x %.2f m", f.Length, f.Width(), f.Depth())
}

// LineString projects waypoint positions onto the XZ plane. Fewer than two
// waypoints cannot form a line.
func LineString(wps []model.Waypoint) (geom.LineString, error) {
	if len(wps) < 2 {
		return geom.LineString{}, fmt.Errorf("path must have at least 2 points, got %d", len(wps))
	}
	flatCoords := make([]float64, 0, len(wps)*2)
	for _, w := range wps {
		flatCoords = append(flatCoords, w.Position.X, w.Position.Z)
	}
	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq)
}

// Of measures wps. A single waypoint has zero length and a point envelope;
// an empty path has a zero footprint.
func Of(wps []model.Waypoint) Footprint {
	if len(wps) == 0 {
		return Footprint{}
	}
	if len(wps) == 1 {
		p := wps[0].Position
		return Footprint{MinX: p.X, MaxX: p.X, MinZ: p.Z, MaxZ: p.Z}
	}

	ls, err := LineString(wps)
	if err != nil {
		return Footprint{}
	}

	f := Footprint{
		Length: model.Round(ls.Length(), 3),
		MinX:   math.Inf(1), MinZ: math.Inf(1),
		MaxX:   math.Inf(-1), MaxZ: math.Inf(-1),
		WKT:    ls.AsText(),
	}
	seq := ls.Coordinates()
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		f.MinX = math.Min(f.MinX, xy.X)
		f.MaxX = math.Max(f.MaxX, xy.X)
		f.MinZ = math.Min(f.MinZ, xy.Y)
		f.MaxZ = math.Max(f.MaxZ, xy.Y)
	}
	return f
}
