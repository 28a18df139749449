package footprint

import (
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wp(x, y, z float64) model.Waypoint {
	return model.Waypoint{Position: model.Vec3{X: x, Y: y, Z: z}}
}

func TestOf_Square(t *testing.T) {
	f := Of([]model.Waypoint{wp(0, 5, 0), wp(2, 0, 0), wp(2, 9, 2), wp(0, 1, 2)})

	// height is ignored
	assert.InDelta(t, 6, f.Length, 1e-9)
	assert.Equal(t, 0.0, f.MinX)
	assert.Equal(t, 2.0, f.MaxX)
	assert.Equal(t, 0.0, f.MinZ)
	assert.Equal(t, 2.0, f.MaxZ)
	assert.Equal(t, 2.0, f.Width())
	assert.Equal(t, 2.0, f.Depth())
	assert.Contains(t, f.WKT, "LINESTRING")
	assert.Equal(t, "length 6.00 m, 2.00 x 2.00 m", f.String())
}

func TestOf_Degenerate(t *testing.T) {
	assert.Equal(t, Footprint{}, Of(nil))

	one := Of([]model.Waypoint{wp(3, 1, -4)})
	assert.Equal(t, 0.0, one.Length)
	assert.Equal(t, 3.0, one.MinX)
	assert.Equal(t, -4.0, one.MaxZ)
}

func TestLineString(t *testing.T) {
	_, err := LineString([]model.Waypoint{wp(0, 0, 0)})
	require.Error(t, err)

	ls, err := LineString([]model.Waypoint{wp(0, 0, 0), wp(3, 0, 4)})
	require.NoError(t, err)
	assert.InDelta(t, 5, ls.Length(), 1e-9)
}
