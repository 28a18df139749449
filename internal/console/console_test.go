package console

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/dolly"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController records every call as a short string.
type fakeController struct {
	mu     sync.Mutex
	calls  []string
	pins   []int
	status []string
	view   dolly.View
	err    error
}

var _ Controller = (*fakeController)(nil)

func (f *fakeController) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.TrimSpace(fmt.Sprintf(format, args...)))
	return f.err
}

func (f *fakeController) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) SetMode(_ context.Context, m model.Mode) error {
	return f.record("mode %s", m)
}

func (f *fakeController) SetText(_ context.Context, name, text string) (float64, error) {
	s := model.DefaultSettings()
	v, err := s.SetText(name, text)
	if err != nil {
		return 0, err
	}
	return v, f.record("set %s %g", name, v)
}

func (f *fakeController) SetPauseDuration(_ context.Context, s float64) error {
	return f.record("pause %g", s)
}

func (f *fakeController) SetFlag(_ context.Context, fl dolly.Flag, on bool) error {
	return f.record("flag %s %t", fl, on)
}

func (f *fakeController) Toggle(_ context.Context, fl dolly.Flag) (bool, error) {
	return true, f.record("toggle %s", fl)
}

func (f *fakeController) Nudge(_ context.Context, a nudge.Action) error {
	return f.record("nudge %s", a)
}

func (f *fakeController) CaptureTarget(context.Context) error { return f.record("capture target") }
func (f *fakeController) CaptureOrigin(context.Context) error { return f.record("capture origin") }

func (f *fakeController) SetTarget(_ context.Context, t *r3.Vector) error {
	if t == nil {
		return f.record("target clear")
	}
	return f.record("target %g %g %g", t.X, t.Y, t.Z)
}

func (f *fakeController) SetOrigin(_ context.Context, o r3.Vector) error {
	return f.record("origin %g %g %g", o.X, o.Y, o.Z)
}

func (f *fakeController) LoadPath(_ context.Context, file string) (int, error) {
	return 3, f.record("load %s", file)
}

func (f *fakeController) Rebase(context.Context) error { return f.record("rebase") }

func (f *fakeController) SavePin(_ context.Context, slot int) error {
	return f.record("pin save %d", slot)
}

func (f *fakeController) LoadPin(_ context.Context, slot int) error {
	return f.record("pin load %d", slot)
}

func (f *fakeController) ListPins() ([]int, error) { return f.pins, nil }
func (f *fakeController) Reset(context.Context) error  { return f.record("reset") }
func (f *fakeController) Resend(context.Context) error { return f.record("resend") }
func (f *fakeController) Play(context.Context) error   { return f.record("play") }

func (f *fakeController) Snapshot(context.Context) (dolly.View, error) {
	return f.view, nil
}

func (f *fakeController) StatusLines() []string { return f.status }

func newConsole() (*Console, *fakeController, *bytes.Buffer) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	return New(f, out, nil), f, out
}

func TestExec_Commands(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"mode arc", "mode arc"},
		{"MODE 6", "mode dollyzoom"},
		{"set radius 50", "set radius 10"},
		{"set pause 12.5", "pause 12.5"},
		{"toggle reverse", "toggle reverse"},
		{"toggle pause off", "flag pause false"},
		{"toggle usetarget on", "flag usetarget true"},
		{"nudge t+x", "nudge translate +X"},
		{"nudge R-Z", "nudge rotate -Z"},
		{"target", "capture target"},
		{"target clear", "target clear"},
		{"target 1 2 3.5", "target 1 2 3.5"},
		{"origin", "capture origin"},
		{"origin -1 0 2", "origin -1 0 2"},
		{"load /tmp/path.json", "load /tmp/path.json"},
		{"rebase", "rebase"},
		{"pin save 3", "pin save 3"},
		{"pin load 8", "pin load 8"},
		{"reset", "reset"},
		{"resend", "resend"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, f, _ := newConsole()
			require.NoError(t, c.Exec(context.Background(), tt.line))
			assert.Equal(t, []string{tt.want}, f.all())
		})
	}
}

func TestExec_Errors(t *testing.T) {
	for _, line := range []string{
		"bogus",
		"mode",
		"mode spiral",
		"set radius",
		"set radius abc",
		"set pause soon",
		"toggle",
		"toggle sideways",
		"toggle pause maybe",
		"nudge",
		"nudge q+x",
		"nudge t*x",
		"nudge t+w",
		"nudge t+x 0",
		"target 1 2",
		"origin a b c",
		"load",
		"pin",
		"pin save x",
		"pin drop 1",
		"status -1",
	} {
		t.Run(line, func(t *testing.T) {
			c, f, _ := newConsole()
			assert.Error(t, c.Exec(context.Background(), line))
			assert.Empty(t, f.all())
		})
	}
}

func TestExec_NudgeRepeat(t *testing.T) {
	c, f, _ := newConsole()
	require.NoError(t, c.Exec(context.Background(), "nudge r+y 3"))
	assert.Len(t, f.all(), 3)
}

func TestExec_Quit(t *testing.T) {
	c, _, _ := newConsole()
	assert.ErrorIs(t, c.Exec(context.Background(), "quit"), ErrQuit)
	assert.ErrorIs(t, c.Exec(context.Background(), "exit"), ErrQuit)
	assert.NoError(t, c.Exec(context.Background(), "   "))
}

func TestParseNudge(t *testing.T) {
	a, err := ParseNudge("t-y")
	require.NoError(t, err)
	assert.Equal(t, nudge.Action{Kind: nudge.Translate, Axis: orient.AxisY, Sign: -1}, a)

	_, err = ParseNudge("t+xx")
	assert.Error(t, err)
}

func TestStatusAndPins(t *testing.T) {
	c, f, out := newConsole()
	f.status = []string{"a", "b", "c"}
	f.pins = []int{1, 4}

	require.NoError(t, c.Exec(context.Background(), "status 2"))
	require.NoError(t, c.Exec(context.Background(), "pin list"))
	assert.Equal(t, "b\nc\npins: 1 4\n", out.String())

	out.Reset()
	f.pins = nil
	require.NoError(t, c.Exec(context.Background(), "pin list"))
	assert.Equal(t, "no pins saved\n", out.String())
}

func TestShow(t *testing.T) {
	c, f, out := newConsole()
	target := model.Vec3{Z: 10}
	f.view = dolly.View{
		Mode:      model.ModeLine,
		Settings:  model.DefaultSettings(),
		Target:    &target,
		UseTarget: true,
		Flags:     map[dolly.Flag]bool{dolly.FlagReverse: true, dolly.FlagPause: false},
		Sent: []model.Waypoint{
			{Position: model.Vec3{X: -2}},
			{Position: model.Vec3{X: 2}},
		},
	}

	require.NoError(t, c.Exec(context.Background(), "show"))
	s := out.String()
	assert.Contains(t, s, "mode:        line")
	assert.Contains(t, s, "target:      0.000 0.000 10.000 (use true)")
	assert.Contains(t, s, "flags:       reverse\n")
	assert.Contains(t, s, "path:        2 points, length 4.00 m")
	assert.Contains(t, s, "radius")
}

func TestRun(t *testing.T) {
	c, f, out := newConsole()
	in := strings.NewReader("mode line\nnope\nplay\nquit\nreset\n")

	require.NoError(t, c.Run(context.Background(), in))

	calls := f.all()
	assert.Contains(t, calls, "mode line")
	assert.Contains(t, calls, "play")
	assert.NotContains(t, calls, "reset")
	assert.Contains(t, out.String(), `error: unknown command "nope"`)
}

func TestRun_EOF(t *testing.T) {
	c, f, _ := newConsole()
	require.NoError(t, c.Run(context.Background(), strings.NewReader("rebase")))
	assert.Equal(t, []string{"rebase"}, f.all())
}

func TestHelp(t *testing.T) {
	c, _, out := newConsole()
	require.NoError(t, c.Exec(context.Background(), "help"))
	assert.Equal(t, Help, out.String())
}
