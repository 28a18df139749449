package dolly

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
	"github.com/Changa-Husky/VrChatDollyController/internal/export"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/Changa-Husky/VrChatDollyController/internal/pose"
	"github.com/Changa-Husky/VrChatDollyController/internal/queue"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/Changa-Husky/VrChatDollyController/internal/transform"
	"github.com/golang/geo/r3"
)

// AddrPose is the renderer's camera pose message.
const AddrPose = "/usercamera/Pose"

const (
	poseBuffer = 64
	poseArgs   = 6
)

// Deps are the collaborators of a Controller. Store, Telemetry and Stream
// are optional.
type Deps struct {
	Poses     *pose.Tracker
	Export    *export.Writer
	Importer  Importer
	Store     storage.Backend
	Telemetry Telemetry
	Stream    Publisher
	Logger    *slog.Logger
}

// op is one unit of work for the owner goroutine. A nil reply means the
// sender does not wait.
type op struct {
	fn    func(s *state) error
	reply chan error
}

// state is owned by the Run goroutine and never shared.
type state struct {
	mode     model.Mode
	settings model.Settings
	xf       transform.State

	origin    r3.Vector
	center    *r3.Vector
	target    *r3.Vector
	useTarget bool

	isLocal      bool
	arcClockwise bool
	arcTangent   bool
	reverseZoom  bool
	zoomBase     float64

	loaded []model.Waypoint
	path   model.Path
	sent   []model.Waypoint

	dirty        bool
	suspended    int
	skipNextSend bool
}

// Controller serializes every state change through one goroutine.
type Controller struct {
	opts    Options
	deps    Deps
	log     *slog.Logger
	metrics *metrics

	inbox  chan op
	done   chan struct{}
	status *queue.Queue[string]

	// st is only touched by the Run goroutine.
	st *state

	runOnce sync.Once
	stop    sync.Once
}

// New creates a Controller. Run must be started before any operation is
// requested.
func New(opts Options, deps Deps) (*Controller, error) {
	if deps.Poses == nil {
		deps.Poses = pose.NewTracker()
	}
	if deps.Export == nil {
		return nil, fmt.Errorf("dolly: export writer is required")
	}
	if deps.Importer == nil {
		return nil, fmt.Errorf("dolly: importer is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = DefaultOptions().InboxSize
	}
	if opts.StatusHistory <= 0 {
		opts.StatusHistory = DefaultOptions().StatusHistory
	}
	if !opts.Mode.Valid() {
		opts.Mode = model.ModeCircle
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	xf := transform.NewState(opts.PauseDuration)
	xf.PausePair = opts.PausePair

	st := &state{
		mode:         opts.Mode,
		settings:     opts.Settings,
		xf:           xf,
		arcClockwise: opts.ArcClockwise,
		arcTangent:   opts.ArcFaceTangent,
		path:         model.Path{Mode: opts.Mode, Waypoints: []model.Waypoint{}},
		skipNextSend: opts.SuppressInitialImport,
	}
	if st.mode == model.ModeDollyZoom {
		st.zoomBase = st.settings.Zoom
	}

	return &Controller{
		opts:    opts,
		deps:    deps,
		log:     deps.Logger.With("component", "dolly"),
		metrics: m,
		inbox:   make(chan op, opts.InboxSize),
		done:    make(chan struct{}),
		status:  queue.NewBounded[string](opts.StatusHistory),
		st:      st,
	}, nil
}

// Run owns the state until ctx is cancelled. It regenerates once on start
// so a path exists before the first event. Operation errors are reported
// to their caller and never stop the loop.
func (c *Controller) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return fmt.Errorf("dolly: Run called twice")
	}
	defer c.stop.Do(func() { close(c.done) })

	c.st.dirty = true
	c.settle(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-c.inbox:
			err := o.fn(c.st)
			c.settle(ctx)
			if o.reply != nil {
				o.reply <- err
			}
		}
	}
}

// settle regenerates when the last op changed something and no capture
// window is open.
func (c *Controller) settle(ctx context.Context) {
	if c.st.dirty && c.st.suspended == 0 {
		c.st.dirty = false
		c.regenerate(ctx)
	}
}

// do runs fn on the owner goroutine and waits for its result.
func (c *Controller) do(ctx context.Context, fn func(s *state) error) error {
	reply := make(chan error, 1)
	select {
	case c.inbox <- op{fn: fn, reply: reply}:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting. It blocks while the inbox is full so
// remote events are neither dropped nor reordered.
func (c *Controller) post(fn func(s *state) error) {
	select {
	case c.inbox <- op{fn: fn}:
	case <-c.done:
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// RegisterHandlers routes the camera pose, nudge, capture and mode
// addresses to the controller.
func (c *Controller) RegisterHandlers(d *dispatcher.Dispatcher, deb *nudge.Debouncer) {
	d.Register(AddrPose, c.handlePose, dispatcher.Buffered(poseBuffer))
	nudge.Bind(d, deb, c)
}

// handlePose reads position XYZ and rotation XYZ from the first six
// arguments; anything after them is ignored.
func (c *Controller) handlePose(e dispatcher.Event) (any, error) {
	n := min(poseArgs, len(e.Args))
	vals := make([]float64, 0, n)
	for i := range n {
		v, ok := e.Float(i)
		if !ok {
			return nil, fmt.Errorf("pose: argument %d is not a number", i)
		}
		vals = append(vals, v)
	}
	p, ok := c.deps.Poses.UpdateFromArgs(vals)
	if !ok {
		return nil, nil
	}
	if c.deps.Telemetry != nil {
		c.deps.Telemetry.RecordPose(p)
	}
	return nil, nil
}

var _ nudge.CaptureGate = (*Controller)(nil)

// CanCapture reports whether a camera pose usable for a capture has been
// received.
func (c *Controller) CanCapture() bool {
	return c.deps.Poses.Snapshot().Capturable()
}

// Trigger queues a fired nudge or capture action.
func (c *Controller) Trigger(a nudge.Action) {
	c.post(func(s *state) error {
		err := c.apply(s, a)
		if err != nil {
			c.log.Debug("Remote action not applied", "action", a.String(), "error", err)
		}
		return err
	})
}

// SelectMode queues a remote mode selection. Codes outside 1..6 are
// ignored, as is selecting the current mode.
func (c *Controller) SelectMode(code float64) {
	m, ok := model.ModeFromCode(code)
	if !ok {
		c.log.Debug("Ignoring SetDollyMode", "value", code)
		return
	}
	c.post(func(s *state) error {
		if s.mode == m {
			return nil
		}
		c.statusf("OSC: SetDollyMode -> %d (%s)", int(m), m)
		c.setMode(s, m)
		return nil
	})
}

func (c *Controller) apply(s *state, a nudge.Action) error {
	switch a.Kind {
	case nudge.Translate:
		c.translate(s, a.Axis, a.Sign)
	case nudge.Rotate:
		c.rotate(s, a.Axis, a.Sign)
	case nudge.CaptureTarget:
		return c.captureTarget(s)
	case nudge.CaptureOrigin:
		return c.captureOrigin(s)
	default:
		return fmt.Errorf("unknown action %s", a)
	}
	return nil
}

func (c *Controller) translate(s *state, axis orient.Axis, sign float64) {
	d := axis.Unit().Mul(sign * s.settings.TranslationStep)
	s.xf.Translation = s.xf.Translation.Add(d)
	s.dirty = true
}

func (c *Controller) rotate(s *state, axis orient.Axis, sign float64) {
	s.xf.Rotation = orient.About(axis, sign*s.settings.RotationStep).Mul(s.xf.Rotation)
	s.dirty = true
}

func (c *Controller) captureTarget(s *state) error {
	p := c.deps.Poses.Snapshot()
	if !p.Capturable() {
		c.reject("SetTargetFromCam")
		return ErrCaptureRejected
	}
	t := p.Position
	s.target = &t
	s.useTarget = true
	s.dirty = true
	c.statusf("Target set from camera: %s", formatVec(t))
	return nil
}

func (c *Controller) captureOrigin(s *state) error {
	p := c.deps.Poses.Snapshot()
	if !p.Capturable() {
		c.reject("SetPathFromCam")
		return ErrCaptureRejected
	}
	o := p.Position
	s.origin = o
	s.center = &o
	s.dirty = true
	c.statusf("Path origin set from camera: %s", formatVec(o))
	return nil
}

func (c *Controller) reject(what string) {
	c.metrics.rejected.Add(context.Background(), 1)
	c.log.Warn("Capture rejected, camera at origin", "action", what)
	c.statusf("Ignored %s: camera at origin (0,0,0).", what)
}

func (c *Controller) setMode(s *state, m model.Mode) {
	s.mode = m
	if m == model.ModeDollyZoom && s.zoomBase == 0 {
		s.zoomBase = s.settings.Zoom
	}
	s.dirty = true
}

// statusf appends a line to the status feed and mirrors it to the log and
// the live stream.
func (c *Controller) statusf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	c.status.Push(line)
	c.log.Info(line)
	if c.deps.Stream != nil {
		if err := c.deps.Stream.PublishStatus(line); err != nil {
			c.log.Debug("Status not streamed", "error", err)
		}
	}
}

// StatusLines returns the recent status lines, oldest first.
func (c *Controller) StatusLines() []string {
	return c.status.Snapshot()
}

func formatVec(v r3.Vector) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
