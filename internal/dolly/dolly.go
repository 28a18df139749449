// Package dolly owns the live dolly state: mode, settings, offsets, anchors
// and the current path. A single goroutine (Controller.Run) applies every
// mutation, regenerates the path and sends it to the renderer.
package dolly

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/pose"
)

var (
	// ErrCaptureRejected is returned when the camera pose cannot be used as
	// an origin or target.
	ErrCaptureRejected = errors.New("capture rejected: camera at origin (0,0,0)")
	// ErrStopped is returned once the controller has stopped.
	ErrStopped = errors.New("controller stopped")
	// ErrNoStore is returned by pin operations without a storage backend.
	ErrNoStore = errors.New("no pin storage configured")
)

// Importer is the renderer side of the control link.
type Importer interface {
	Import(path string) error
	Play() error
}

// Telemetry receives pose samples and export records.
type Telemetry interface {
	RecordPose(p pose.Pose)
	RecordExport(r model.ExportRecord)
}

// Publisher mirrors exported paths and status lines to live viewers.
type Publisher interface {
	PublishPath(mode model.Mode, wps []model.Waypoint) error
	PublishStatus(line string) error
}

// Flag is an on/off switch of the controller.
type Flag int

const (
	FlagReverse Flag = iota
	FlagVertical
	FlagPause
	FlagPausePair
	FlagUseTarget
	FlagIsLocal
	FlagArcClockwise
	FlagArcTangent
	FlagReverseDollyZoom
)

var flagNames = map[Flag]string{
	FlagReverse:          "reverse",
	FlagVertical:         "vertical",
	FlagPause:            "pause",
	FlagPausePair:        "pausepair",
	FlagUseTarget:        "usetarget",
	FlagIsLocal:          "islocal",
	FlagArcClockwise:     "clockwise",
	FlagArcTangent:       "tangent",
	FlagReverseDollyZoom: "reversezoom",
}

func (f Flag) String() string {
	if n, ok := flagNames[f]; ok {
		return n
	}
	return fmt.Sprintf("flag(%d)", int(f))
}

// ParseFlag looks a flag up by name, case-insensitively.
func ParseFlag(s string) (Flag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range flagNames {
		if n == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown toggle %q (want one of %s)", s, strings.Join(FlagNames(), ", "))
}

// FlagNames returns every flag name, sorted.
func FlagNames() []string {
	out := make([]string, 0, len(flagNames))
	for _, n := range flagNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Options configures a Controller.
type Options struct {
	Mode     model.Mode
	Settings model.Settings

	InboxSize             int
	StatusHistory         int
	SuppressInitialImport bool

	PauseDuration  float64
	PausePair      bool
	PlayCountdown  time.Duration
	ArcFaceTangent bool
	ArcClockwise   bool

	SessionID string
}

// DefaultOptions returns the startup configuration.
func DefaultOptions() Options {
	return Options{
		Mode:                  model.ModeCircle,
		Settings:              model.DefaultSettings(),
		InboxSize:             256,
		StatusHistory:         200,
		SuppressInitialImport: true,
		PauseDuration:         60,
		PlayCountdown:         7 * time.Second,
	}
}

// View is a copy of the controller state for display.
type View struct {
	Mode      model.Mode
	Settings  model.Settings
	Origin    model.Vec3
	Center    *model.Vec3
	Target    *model.Vec3
	UseTarget bool

	Translation model.Vec3
	// Rotation is the rotation offset as intrinsic XYZ Euler degrees.
	Rotation model.Vec3
	Flags    map[Flag]bool

	PauseDuration float64
	DollyZoomBase float64
	LoadedPoints  int
	Suspended     bool

	Path []model.Waypoint
	// Sent is the last waypoint list written for the renderer.
	Sent []model.Waypoint
}
