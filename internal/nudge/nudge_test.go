package nudge

import (
	"sync"
	"testing"

	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	actions []Action
	modes   []float64
}

var _ Sink = (*recordingSink)(nil)

func (r *recordingSink) Trigger(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recordingSink) SelectMode(code float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, code)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func TestDebouncer_RisingEdges(t *testing.T) {
	d := NewDebouncer()
	fired := 0
	for _, v := range []float64{0, 0.3, 0.8, 0.8, 0.8, 0.2, 0.9} {
		if d.Fire("k", v) {
			fired++
		}
	}
	assert.Equal(t, 2, fired)
}

func TestDebouncer_Cases(t *testing.T) {
	tests := []struct {
		name   string
		levels []float64
		want   int
	}{
		{"first value at threshold", []float64{0.5}, 1},
		{"held high", []float64{1, 1, 1}, 1},
		{"just below", []float64{0.49, 0.49}, 0},
		{"toggle", []float64{1, 0, 1, 0, 1}, 3},
		{"negative then high", []float64{-1, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer()
			got := 0
			for _, v := range tt.levels {
				if d.Fire("k", v) {
					got++
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDebouncer_KeysIndependent(t *testing.T) {
	d := NewDebouncer()
	assert.True(t, d.Fire("a", 1))
	assert.True(t, d.Fire("b", 1))
	assert.False(t, d.Fire("a", 1))

	d.Reset()
	assert.True(t, d.Fire("a", 1))
}

func TestBindings(t *testing.T) {
	b := Bindings()
	assert.Len(t, b, 14)
	assert.Equal(t, Action{Kind: Translate, Axis: orient.AxisY, Sign: -1}, b["SetDolly_T-Y"])
	assert.Equal(t, Action{Kind: Rotate, Axis: orient.AxisZ, Sign: 1}, b["SetDolly_R+Z"])
	assert.Equal(t, CaptureTarget, b["SetTargetFromCam"].Kind)
	assert.Equal(t, CaptureOrigin, b["SetPathFromCam"].Kind)
}

func TestBind_DispatchesEdges(t *testing.T) {
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	sink := &recordingSink{}
	Bind(d, NewDebouncer(), sink)

	addr := ParamPrefix + "SetDolly_T+X"
	for _, v := range []any{false, true, true, false, int32(1), float32(0.2), float32(0.7)} {
		_, err := d.Dispatch(dispatcher.Event{Address: addr, Args: []any{v}})
		require.NoError(t, err)
	}
	require.Len(t, sink.actions, 3)
	assert.Equal(t, Action{Kind: Translate, Axis: orient.AxisX, Sign: 1}, sink.actions[0])

	_, err = d.Dispatch(dispatcher.Event{Address: ParamPrefix + "SetPathFromCam", Args: []any{float32(1)}})
	require.NoError(t, err)
	assert.Equal(t, CaptureOrigin, sink.actions[3].Kind)
}

type gatedSink struct {
	recordingSink
	ready bool
}

var _ CaptureGate = (*gatedSink)(nil)

func (g *gatedSink) CanCapture() bool { return g.ready }

func TestBind_CaptureWaitsForGate(t *testing.T) {
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	sink := &gatedSink{}
	Bind(d, NewDebouncer(), sink)

	capture := ParamPrefix + "SetTargetFromCam"
	nudgeX := ParamPrefix + "SetDolly_R+X"
	for range 3 {
		_, err := d.Dispatch(dispatcher.Event{Address: capture, Args: []any{true}})
		require.NoError(t, err)
	}
	_, err = d.Dispatch(dispatcher.Event{Address: nudgeX, Args: []any{true}})
	require.NoError(t, err)
	require.Len(t, sink.actions, 1, "nudges are not gated")
	assert.Equal(t, Rotate, sink.actions[0].Kind)

	// toggle still held when the first pose arrives
	sink.ready = true
	_, err = d.Dispatch(dispatcher.Event{Address: capture, Args: []any{true}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Address: capture, Args: []any{true}})
	require.NoError(t, err)

	require.Len(t, sink.actions, 2)
	assert.Equal(t, CaptureTarget, sink.actions[1].Kind)
}

func TestBind_Mode(t *testing.T) {
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	sink := &recordingSink{}
	Bind(d, NewDebouncer(), sink)

	addr := ParamPrefix + "SetDollyMode"
	_, err = d.Dispatch(dispatcher.Event{Address: addr, Args: []any{float32(3)}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Address: addr, Args: []any{int32(6)}})
	require.NoError(t, err)
	_, err = d.Dispatch(dispatcher.Event{Address: addr, Args: []any{"x"}})
	assert.Error(t, err)

	assert.Equal(t, []float64{3, 6}, sink.modes)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "rotate -Y", Action{Kind: Rotate, Axis: orient.AxisY, Sign: -1}.String())
	assert.Equal(t, "capture-target", Action{Kind: CaptureTarget}.String())
}
