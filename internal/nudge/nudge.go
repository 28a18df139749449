// Package nudge turns avatar parameter changes into discrete operator
// actions. Avatar toggles send their level repeatedly, so each parameter
// fires once per rising edge across 0.5.
package nudge

import (
	"fmt"
	"sync"

	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
)

// ParamPrefix is the OSC address prefix of avatar parameters.
const ParamPrefix = "/avatar/parameters/"

// Threshold is the level a parameter must cross upward to fire.
const Threshold = 0.5

// Kind classifies an action.
type Kind int

const (
	Translate Kind = iota + 1
	Rotate
	CaptureTarget
	CaptureOrigin
)

func (k Kind) String() string {
	switch k {
	case Translate:
		return "translate"
	case Rotate:
		return "rotate"
	case CaptureTarget:
		return "capture-target"
	case CaptureOrigin:
		return "capture-origin"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is one step requested by the operator. Axis and Sign are only
// meaningful for Translate and Rotate.
type Action struct {
	Kind Kind
	Axis orient.Axis
	Sign float64
}

func (a Action) IsCapture() bool {
	return a.Kind == CaptureTarget || a.Kind == CaptureOrigin
}

func (a Action) String() string {
	if a.Kind == Translate || a.Kind == Rotate {
		s := "+"
		if a.Sign < 0 {
			s = "-"
		}
		return fmt.Sprintf("%s %s%s", a.Kind, s, a.Axis)
	}
	return a.Kind.String()
}

// Bindings returns the avatar parameter name for every edge-triggered
// action.
func Bindings() map[string]Action {
	m := map[string]Action{
		"SetTargetFromCam": {Kind: CaptureTarget},
		"SetPathFromCam":   {Kind: CaptureOrigin},
	}
	for _, ax := range []orient.Axis{orient.AxisX, orient.AxisY, orient.AxisZ} {
		m["SetDolly_T+"+ax.String()] = Action{Kind: Translate, Axis: ax, Sign: 1}
		m["SetDolly_T-"+ax.String()] = Action{Kind: Translate, Axis: ax, Sign: -1}
		m["SetDolly_R+"+ax.String()] = Action{Kind: Rotate, Axis: ax, Sign: 1}
		m["SetDolly_R-"+ax.String()] = Action{Kind: Rotate, Axis: ax, Sign: -1}
	}
	return m
}

// Debouncer remembers the last level seen per key. Keys start at 0.
type Debouncer struct {
	mu   sync.Mutex
	last map[string]float64
}

func NewDebouncer() *Debouncer {
	return &Debouncer{last: make(map[string]float64)}
}

// Fire records v for key and reports whether it is a rising edge.
func (d *Debouncer) Fire(key string, v float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.last[key]
	d.last[key] = v
	return prev < Threshold && v >= Threshold
}

// Reset forgets every remembered level.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = make(map[string]float64)
}

// Sink receives fired actions and mode selections.
type Sink interface {
	Trigger(a Action)
	SelectMode(code float64)
}

// CaptureGate is implemented by sinks that can refuse captures, such as
// before the first camera pose arrives. A refused capture leaves the
// debouncer untouched, so a toggle still held fires once captures are
// allowed.
type CaptureGate interface {
	CanCapture() bool
}

// Bind registers a handler for every binding plus SetDollyMode. Handlers
// run synchronously so actions reach the sink in arrival order.
func Bind(d *dispatcher.Dispatcher, deb *Debouncer, sink Sink) {
	for name, action := range Bindings() {
		d.Register(ParamPrefix+name, edgeHandler(deb, name, action, sink), dispatcher.Logged())
	}
	d.Register(ParamPrefix+"SetDollyMode", func(e dispatcher.Event) (any, error) {
		v, ok := e.Float(0)
		if !ok {
			return nil, fmt.Errorf("SetDollyMode: expected a number, got %d args", len(e.Args))
		}
		sink.SelectMode(v)
		return nil, nil
	}, dispatcher.Logged())
}

func edgeHandler(deb *Debouncer, key string, action Action, sink Sink) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		// a missing or non-numeric value reads as released
		v, _ := e.Float(0)
		if action.IsCapture() {
			if g, ok := sink.(CaptureGate); ok && !g.CanCapture() {
				return "no camera pose", nil
			}
		}
		if deb.Fire(key, v) {
			sink.Trigger(action)
			return action.String(), nil
		}
		return nil, nil
	}
}
