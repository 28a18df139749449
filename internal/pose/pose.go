// Package pose tracks the last camera pose reported by the renderer.
package pose

import (
	"math"
	"sync"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/golang/geo/r3"
)

// Pose is a camera position and orientation in degrees.
type Pose struct {
	Position r3.Vector
	Rotation model.Vec3
	Time     time.Time
}

// Capturable reports whether the pose may be used as an origin or target.
// A camera at exactly (0,0,0) is treated as "no pose received yet".
func (p Pose) Capturable() bool {
	v := p.Position
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) {
		return false
	}
	return v != (r3.Vector{})
}

// Tracker holds the current pose. Writers replace all fields at once.
type Tracker struct {
	mu   sync.RWMutex
	pose Pose
	now  func() time.Time
}

// NewTracker creates a Tracker with no pose.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Update stores a new pose, rounding position to 3 and rotation to 2
// decimals.
func (t *Tracker) Update(pos, rot r3.Vector) Pose {
	p := Pose{
		Position: model.VecOf(pos).Round(3).R3(),
		Rotation: model.VecOf(rot).Round(2),
		Time:     t.now(),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pose = p
	return p
}

// UpdateFromArgs stores a pose from six values (position XYZ then rotation
// XYZ). Values past the sixth are ignored. Fewer than six values, or a NaN
// or infinite one, leave the stored pose as it was and ok is false.
func (t *Tracker) UpdateFromArgs(v []float64) (p Pose, ok bool) {
	if len(v) < 6 {
		return Pose{}, false
	}
	for _, f := range v[:6] {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Pose{}, false
		}
	}
	return t.Update(r3.Vector{X: v[0], Y: v[1], Z: v[2]}, r3.Vector{X: v[3], Y: v[4], Z: v[5]}), true
}

// Snapshot returns the current pose.
func (t *Tracker) Snapshot() Pose {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pose
}
