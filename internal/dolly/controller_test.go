package dolly

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
	"github.com/Changa-Husky/VrChatDollyController/internal/export"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/Changa-Husky/VrChatDollyController/internal/path"
	"github.com/Changa-Husky/VrChatDollyController/internal/pose"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage/jsonfile"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	mu      sync.Mutex
	imports []string
	plays   int
	err     error
}

var _ Importer = (*fakeImporter)(nil)

func (f *fakeImporter) Import(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.imports = append(f.imports, p)
	return nil
}

func (f *fakeImporter) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.imports)
}

type fakeTelemetry struct {
	mu      sync.Mutex
	poses   []pose.Pose
	exports []model.ExportRecord
}

var _ Telemetry = (*fakeTelemetry)(nil)

func (f *fakeTelemetry) RecordPose(p pose.Pose) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poses = append(f.poses, p)
}

func (f *fakeTelemetry) RecordExport(r model.ExportRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exports = append(f.exports, r)
}

type fakePublisher struct {
	mu     sync.Mutex
	paths  int
	status []string
}

var _ Publisher = (*fakePublisher)(nil)

func (f *fakePublisher) PublishPath(model.Mode, []model.Waypoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths++
	return nil
}

func (f *fakePublisher) PublishStatus(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, line)
	return nil
}

type fixture struct {
	c     *Controller
	imp   *fakeImporter
	poses *pose.Tracker
	dir   string
	store storage.Backend
}

func startController(t *testing.T, opts Options, deps Deps) *fixture {
	t.Helper()
	dir := t.TempDir()
	imp := &fakeImporter{}
	if deps.Importer == nil {
		deps.Importer = imp
	}
	if deps.Export == nil {
		deps.Export = export.NewWriter(filepath.Join(dir, "Used_Locations"))
	}
	if deps.Poses == nil {
		deps.Poses = pose.NewTracker()
	}
	if deps.Store == nil {
		store := jsonfile.New(jsonfile.Config{Dir: filepath.Join(dir, "Bookmarks")})
		require.NoError(t, store.Init())
		deps.Store = store
	}

	c, err := New(opts, deps)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})

	// wait for the startup regeneration
	_, err = c.Snapshot(context.Background())
	require.NoError(t, err)

	return &fixture{c: c, imp: imp, poses: deps.Poses, dir: dir, store: deps.Store}
}

func lineOptions() Options {
	opts := DefaultOptions()
	opts.Mode = model.ModeLine
	opts.SuppressInitialImport = false
	return opts
}

func readExport(t *testing.T, f *fixture) []model.Waypoint {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "Used_Locations", export.FileName))
	require.NoError(t, err)
	var wps []model.Waypoint
	require.NoError(t, json.Unmarshal(data, &wps))
	return wps
}

func hasStatus(c *Controller, prefix string) bool {
	for _, l := range c.StatusLines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(DefaultOptions(), Deps{Importer: &fakeImporter{}})
	assert.Error(t, err)
	_, err = New(DefaultOptions(), Deps{Export: export.NewWriter(t.TempDir())})
	assert.Error(t, err)
}

func TestRun_InitialImportSuppressed(t *testing.T) {
	opts := DefaultOptions()
	f := startController(t, opts, Deps{})

	assert.Equal(t, 0, f.imp.count())
	v, err := f.c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Path, 15)
	assert.Empty(t, v.Sent)

	_, err = f.c.Set(context.Background(), model.ParamRadius, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, f.imp.count())
}

func TestRun_SendsOnStart(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})

	require.Equal(t, 1, f.imp.count())
	assert.True(t, filepath.IsAbs(f.imp.imports[0]))
	wps := readExport(t, f)
	require.Len(t, wps, 15)
	assert.Equal(t, -2.0, wps[0].Position.X)
	assert.Equal(t, 2.0, wps[14].Position.X)
}

func TestRun_SecondCallFails(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	assert.Error(t, f.c.Run(context.Background()))
}

func TestOperationsAfterStop(t *testing.T) {
	c, err := New(lineOptions(), Deps{Importer: &fakeImporter{}, Export: export.NewWriter(t.TempDir())})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	_, err = c.Snapshot(context.Background())
	require.NoError(t, err)
	cancel()
	<-c.Done()

	_, err = c.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	c.Trigger(nudge.Action{Kind: nudge.Translate, Axis: orient.AxisX, Sign: 1})
}

func TestTranslateNudge(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	require.NoError(t, f.c.Nudge(ctx, nudge.Action{Kind: nudge.Translate, Axis: orient.AxisX, Sign: 1}))
	require.NoError(t, f.c.Nudge(ctx, nudge.Action{Kind: nudge.Translate, Axis: orient.AxisY, Sign: -1}))

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Vec3{X: 0.5, Y: -0.5}, v.Translation)
	assert.Equal(t, 3, f.imp.count())

	wps := readExport(t, f)
	assert.Equal(t, -1.5, wps[0].Position.X)
	assert.Equal(t, -0.5, wps[0].Position.Y)
}

func TestRotateNudgePreMultiplies(t *testing.T) {
	opts := lineOptions()
	opts.Settings.RotationStep = 10
	f := startController(t, opts, Deps{})
	ctx := context.Background()

	f.c.Trigger(nudge.Action{Kind: nudge.Rotate, Axis: orient.AxisY, Sign: 1})
	f.c.Trigger(nudge.Action{Kind: nudge.Rotate, Axis: orient.AxisX, Sign: -1})

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)

	want := orient.About(orient.AxisX, -10).Mul(orient.About(orient.AxisY, 10)).Euler(orient.XYZ)
	assert.InDelta(t, want[0], v.Rotation.X, 0.01)
	assert.InDelta(t, want[1], v.Rotation.Y, 0.01)
	assert.InDelta(t, want[2], v.Rotation.Z, 0.01)
	assert.Equal(t, 3, f.imp.count())
}

func TestCaptureRejectedAtOrigin(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	assert.ErrorIs(t, f.c.CaptureTarget(ctx), ErrCaptureRejected)
	assert.ErrorIs(t, f.c.CaptureOrigin(ctx), ErrCaptureRejected)

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, v.Target)
	assert.Nil(t, v.Center)
	assert.Equal(t, 1, f.imp.count())
	assert.True(t, hasStatus(f.c, "Ignored SetTargetFromCam"))
	assert.True(t, hasStatus(f.c, "Ignored SetPathFromCam"))
}

func TestCaptureFromPose(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	f.poses.Update(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{})
	require.NoError(t, f.c.CaptureOrigin(ctx))
	f.poses.Update(r3.Vector{X: 1, Y: 2, Z: 13}, r3.Vector{})
	require.NoError(t, f.c.CaptureTarget(ctx))

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Vec3{X: 1, Y: 2, Z: 3}, v.Origin)
	require.NotNil(t, v.Center)
	require.NotNil(t, v.Target)
	assert.Equal(t, model.Vec3{X: 1, Y: 2, Z: 13}, *v.Target)
	assert.True(t, v.UseTarget)

	// the line is centered on the origin and faces the target
	wps := readExport(t, f)
	assert.Equal(t, -1.0, wps[0].Position.X)
	assert.InDelta(t, 0, wps[7].Rotation.Y, 1e-9)
}

func TestSelectMode(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	f.c.SelectMode(3) // current mode
	f.c.SelectMode(0)
	f.c.SelectMode(7)
	_, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.imp.count())

	f.c.SelectMode(1.9)
	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ModeCircle, v.Mode)
	assert.Equal(t, 2, f.imp.count())
}

func TestDollyZoomBaseline(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	_, err := f.c.Set(ctx, model.ParamZoom, 60)
	require.NoError(t, err)
	require.NoError(t, f.c.SetMode(ctx, model.ModeDollyZoom))

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60.0, v.DollyZoomBase)
	assert.Empty(t, v.Path)
	assert.True(t, hasStatus(f.c, "Dolly zoom needs a view target"))

	// later zoom changes and re-entry keep the first baseline
	_, err = f.c.Set(ctx, model.ParamZoom, 90)
	require.NoError(t, err)
	require.NoError(t, f.c.SetMode(ctx, model.ModeLine))
	require.NoError(t, f.c.SetMode(ctx, model.ModeDollyZoom))
	v, err = f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60.0, v.DollyZoomBase)

	target := r3.Vector{Z: 10}
	require.NoError(t, f.c.SetTarget(ctx, &target))
	v, err = f.c.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, v.Path, 5)
	// zoom = base * (d/d0) * exaggeration at the start
	assert.Equal(t, 120.0, v.Path[0].Zoom)

	require.NoError(t, f.c.Reset(ctx))
	v, err = f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45.0, v.DollyZoomBase)
}

func TestSetClampsAndRejectsText(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	got, err := f.c.Set(ctx, model.ParamRadius, 50)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)

	_, err = f.c.SetText(ctx, model.ParamRadius, "abc")
	assert.ErrorIs(t, err, model.ErrInvalidValue)
	_, err = f.c.Set(ctx, "nope", 1)
	assert.ErrorIs(t, err, model.ErrUnknownParam)

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.Settings.Radius)
	assert.Equal(t, 2, f.imp.count())

	got, err = f.c.SetText(ctx, model.ParamPoints, " 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
	assert.Len(t, readExport(t, f), 7)
}

func TestToggleFlags(t *testing.T) {
	opts := lineOptions()
	opts.PauseDuration = 12
	f := startController(t, opts, Deps{})
	ctx := context.Background()

	on, err := f.c.Toggle(ctx, FlagPause)
	require.NoError(t, err)
	assert.True(t, on)
	wps := readExport(t, f)
	require.Len(t, wps, 16)
	assert.Equal(t, 12.0, wps[15].Duration)

	require.NoError(t, f.c.SetFlag(ctx, FlagPausePair, true))
	assert.Len(t, readExport(t, f), 17)

	require.NoError(t, f.c.SetFlag(ctx, FlagReverse, true))
	wps = readExport(t, f)
	assert.Equal(t, 2.0, wps[0].Position.X)

	// reverse dolly zoom outside dolly-zoom mode does not resend
	n := f.imp.count()
	require.NoError(t, f.c.SetFlag(ctx, FlagReverseDollyZoom, true))
	assert.Equal(t, n, f.imp.count())

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, v.Flags[FlagPause])
	assert.True(t, v.Flags[FlagReverseDollyZoom])
	assert.False(t, v.Flags[FlagVertical])

	_, err = f.c.Toggle(ctx, Flag(99))
	assert.Error(t, err)
}

func TestParseFlag(t *testing.T) {
	f, err := ParseFlag(" Reverse ")
	require.NoError(t, err)
	assert.Equal(t, FlagReverse, f)
	assert.Equal(t, "usetarget", FlagUseTarget.String())

	_, err = ParseFlag("sideways")
	assert.Error(t, err)
	assert.Len(t, FlagNames(), len(flagNames))
}

func TestSuspendDefersRegeneration(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	resume, err := f.c.Suspend(ctx)
	require.NoError(t, err)
	for _, r := range []float64{3, 4, 5} {
		_, err := f.c.Set(ctx, model.ParamRadius, r)
		require.NoError(t, err)
	}
	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, v.Suspended)
	assert.Equal(t, 1, f.imp.count())

	resume()
	resume()
	v, err = f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, v.Suspended)
	assert.Equal(t, 2, f.imp.count())
	assert.Equal(t, -5.0, readExport(t, f)[0].Position.X)
}

func TestPins(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	require.NoError(t, f.c.SetOrigin(ctx, r3.Vector{X: 1, Y: 2, Z: 3}))
	target := r3.Vector{X: 4, Y: 5, Z: 6}
	require.NoError(t, f.c.SetTarget(ctx, &target))
	require.NoError(t, f.c.Nudge(ctx, nudge.Action{Kind: nudge.Translate, Axis: orient.AxisZ, Sign: 1}))
	require.NoError(t, f.c.Nudge(ctx, nudge.Action{Kind: nudge.Rotate, Axis: orient.AxisY, Sign: 1}))
	_, err := f.c.Set(ctx, model.ParamRadius, 3)
	require.NoError(t, err)
	require.NoError(t, f.c.SavePin(ctx, 2))

	_, err = os.Stat(filepath.Join(f.dir, "Bookmarks", "pin2.json"))
	require.NoError(t, err)
	slots, err := f.c.ListPins()
	require.NoError(t, err)
	assert.Equal(t, []int{2}, slots)

	require.NoError(t, f.c.Reset(ctx))
	require.NoError(t, f.c.SetTarget(ctx, nil))
	require.NoError(t, f.c.SetOrigin(ctx, r3.Vector{}))

	require.NoError(t, f.c.LoadPin(ctx, 2))
	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Vec3{X: 1, Y: 2, Z: 3}, v.Origin)
	require.NotNil(t, v.Target)
	assert.Equal(t, model.Vec3{X: 4, Y: 5, Z: 6}, *v.Target)
	assert.True(t, v.UseTarget)
	assert.Equal(t, model.Vec3{Z: 0.5}, v.Translation)
	assert.InDelta(t, 1, v.Rotation.Y, 0.01)
	assert.Equal(t, 3.0, v.Settings.Radius)

	assert.ErrorIs(t, f.c.LoadPin(ctx, 5), storage.ErrPinEmpty)
	assert.ErrorIs(t, f.c.SavePin(ctx, 9), storage.ErrInvalidSlot)
	assert.ErrorIs(t, f.c.LoadPin(ctx, 0), storage.ErrInvalidSlot)
}

func TestLoadPinNullTargetClears(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	require.NoError(t, f.store.SavePin(1, &model.Pin{HasTarget: true}))
	target := r3.Vector{X: 4}
	require.NoError(t, f.c.SetTarget(ctx, &target))
	require.NoError(t, f.c.LoadPin(ctx, 1))

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, v.Target)
	assert.False(t, v.UseTarget)
}

func TestLoadPathAndRebase(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	assert.ErrorIs(t, f.c.Rebase(ctx), path.ErrNoLoadedPath)
	_, err := f.c.LoadPath(ctx, filepath.Join(f.dir, "missing.json"))
	assert.Error(t, err)

	src := []model.Waypoint{
		{Index: 0, Position: model.Vec3{X: 10, Y: 1, Z: 10}},
		{Index: 1, Position: model.Vec3{X: 12, Y: 1, Z: 10}},
		{Index: 2, Position: model.Vec3{X: 14, Y: 1, Z: 10}},
	}
	file := filepath.Join(f.dir, "custom.json")
	require.NoError(t, path.WriteFile(file, src))

	n, err := f.c.LoadPath(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, f.c.SetMode(ctx, model.ModeLoaded))
	assert.Equal(t, 10.0, readExport(t, f)[0].Position.X)

	require.NoError(t, f.c.SetOrigin(ctx, r3.Vector{X: 1, Y: 1, Z: 1}))
	require.NoError(t, f.c.Rebase(ctx))
	wps := readExport(t, f)
	require.Len(t, wps, 3)
	assert.Equal(t, model.Vec3{X: 1, Y: 1, Z: 1}, wps[0].Position)
	assert.Equal(t, model.Vec3{X: 5, Y: 1, Z: 1}, wps[2].Position)
}

func TestLoadedModeWithoutPath(t *testing.T) {
	f := startController(t, lineOptions(), Deps{})
	ctx := context.Background()

	require.NoError(t, f.c.SetMode(ctx, model.ModeLoaded))
	assert.Empty(t, readExport(t, f))
	assert.True(t, hasStatus(f.c, "No custom path loaded"))
}

func TestExportFailureKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	f := startController(t, lineOptions(), Deps{Export: export.NewWriter(filepath.Join(blocker, "sub"))})
	ctx := context.Background()

	assert.Equal(t, 0, f.imp.count())
	assert.True(t, hasStatus(f.c, "Error writing temp file"))

	_, err := f.c.Set(ctx, model.ParamRadius, 4)
	require.NoError(t, err)
	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v.Settings.Radius)
	assert.Len(t, v.Sent, 15)
}

func TestImportFailureReported(t *testing.T) {
	imp := &fakeImporter{err: errors.New("network down")}
	f := startController(t, lineOptions(), Deps{Importer: imp})
	assert.True(t, hasStatus(f.c, "Error sending import"))
}

func TestExportSinks(t *testing.T) {
	tel := &fakeTelemetry{}
	pub := &fakePublisher{}
	opts := lineOptions()
	opts.SessionID = "sess"
	f := startController(t, opts, Deps{Telemetry: tel, Stream: pub})

	tel.mu.Lock()
	require.Len(t, tel.exports, 1)
	rec := tel.exports[0]
	tel.mu.Unlock()
	assert.Equal(t, "sess", rec.SessionID)
	assert.Equal(t, "line", rec.Mode)
	assert.Equal(t, 15, rec.Points)
	assert.InDelta(t, 4.0, rec.Length, 1e-9)
	assert.True(t, strings.HasSuffix(rec.FilePath, export.FileName))

	pub.mu.Lock()
	assert.Equal(t, 1, pub.paths)
	assert.NotEmpty(t, pub.status)
	pub.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(f.dir, "Bookmarks", jsonfile.HistoryFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"line"`)
}

func TestPlay(t *testing.T) {
	opts := lineOptions()
	opts.PlayCountdown = 0
	f := startController(t, opts, Deps{})

	require.NoError(t, f.c.Play(context.Background()))
	assert.Equal(t, 1, f.imp.plays)
	assert.True(t, hasStatus(f.c, "Sent OSC /dolly/Play"))
}

func TestPlayCancelled(t *testing.T) {
	opts := lineOptions()
	opts.PlayCountdown = time.Hour
	f := startController(t, opts, Deps{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.c.Play(ctx), context.DeadlineExceeded)
	assert.Equal(t, 0, f.imp.plays)
	assert.True(t, hasStatus(f.c, "Starting in 3600 seconds"))
}

func TestHandlePose_RejectsNonFiniteKeepsArcExporting(t *testing.T) {
	tel := &fakeTelemetry{}
	f := startController(t, lineOptions(), Deps{Telemetry: tel})
	ctx := context.Background()

	// a trailing non-numeric argument does not drop the pose
	_, err := f.c.handlePose(dispatcher.Event{Address: AddrPose, Args: []any{
		float32(2), float32(1), float32(-3), float32(0), float32(90), float32(0), "note",
	}})
	require.NoError(t, err)
	good := f.poses.Snapshot()
	require.Equal(t, r3.Vector{X: 2, Y: 1, Z: -3}, good.Position)

	require.NoError(t, f.c.SetMode(ctx, model.ModeArc))
	before := f.imp.count()

	_, err = f.c.handlePose(dispatcher.Event{Address: AddrPose, Args: []any{
		float32(math.NaN()), float32(1), float32(-3), float32(0), float32(90), float32(0),
	}})
	require.NoError(t, err)
	assert.Equal(t, good, f.poses.Snapshot())

	require.NoError(t, f.c.Resend(ctx))
	assert.Equal(t, before+1, f.imp.count())
	for _, w := range readExport(t, f) {
		assert.False(t, math.IsNaN(w.Position.X))
	}

	tel.mu.Lock()
	assert.Len(t, tel.poses, 1)
	tel.mu.Unlock()
}

func TestRegisterHandlers(t *testing.T) {
	tel := &fakeTelemetry{}
	f := startController(t, lineOptions(), Deps{Telemetry: tel})
	ctx := context.Background()

	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	defer d.Close()
	f.c.RegisterHandlers(d, nudge.NewDebouncer())

	assert.True(t, d.HasHandler(AddrPose))
	assert.True(t, d.HasHandler(nudge.ParamPrefix+"SetDollyMode"))

	// fewer than six values are ignored
	_, err = d.Dispatch(dispatcher.Event{Address: AddrPose, Args: []any{float32(1), float32(2)}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Address: AddrPose, Args: []any{
		float32(1.5), float32(2), float32(3), float32(10), float32(20), float32(0),
	}})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return f.poses.Snapshot().Position == r3.Vector{X: 1.5, Y: 2, Z: 3}
	}, time.Second, 5*time.Millisecond)

	for _, v := range []float32{0, 1, 1, 0} {
		_, err = d.Dispatch(dispatcher.Event{Address: nudge.ParamPrefix + "SetPathFromCam", Args: []any{v}})
		require.NoError(t, err)
	}
	_, err = d.Dispatch(dispatcher.Event{Address: nudge.ParamPrefix + "SetDolly_T+Y", Args: []any{true}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Address: nudge.ParamPrefix + "SetDollyMode", Args: []any{float32(4)}})
	require.NoError(t, err)

	v, err := f.c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Vec3{X: 1.5, Y: 2, Z: 3}, v.Origin)
	assert.Equal(t, model.Vec3{Y: 0.5}, v.Translation)
	assert.Equal(t, model.ModeEllipse, v.Mode)
	// start, capture, nudge, mode
	assert.Equal(t, 4, f.imp.count())

	tel.mu.Lock()
	assert.Len(t, tel.poses, 1)
	tel.mu.Unlock()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
