// Package console is the operator command surface on stdin. Each line is
// one command; see Help for the list.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Changa-Husky/VrChatDollyController/internal/dolly"
	"github.com/Changa-Husky/VrChatDollyController/internal/footprint"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/golang/geo/r3"
)

// Controller is the part of dolly.Controller the console drives.
type Controller interface {
	SetMode(ctx context.Context, m model.Mode) error
	SetText(ctx context.Context, name, text string) (float64, error)
	SetPauseDuration(ctx context.Context, seconds float64) error
	SetFlag(ctx context.Context, f dolly.Flag, on bool) error
	Toggle(ctx context.Context, f dolly.Flag) (bool, error)
	Nudge(ctx context.Context, a nudge.Action) error
	CaptureTarget(ctx context.Context) error
	CaptureOrigin(ctx context.Context) error
	SetTarget(ctx context.Context, t *r3.Vector) error
	SetOrigin(ctx context.Context, o r3.Vector) error
	LoadPath(ctx context.Context, file string) (int, error)
	Rebase(ctx context.Context) error
	SavePin(ctx context.Context, slot int) error
	LoadPin(ctx context.Context, slot int) error
	ListPins() ([]int, error)
	Reset(ctx context.Context) error
	Resend(ctx context.Context) error
	Play(ctx context.Context) error
	Snapshot(ctx context.Context) (dolly.View, error)
	StatusLines() []string
}

var _ Controller = (*dolly.Controller)(nil)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

const defaultStatusLines = 10

// Console parses command lines and applies them to a Controller.
type Console struct {
	ctl Controller
	out io.Writer
	log *slog.Logger

	mu      sync.Mutex
	playing sync.WaitGroup
}

// New creates a console writing replies to out.
func New(ctl Controller, out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{ctl: ctl, out: out, log: logger.With("component", "console")}
}

// Run reads commands from in until EOF, quit or ctx is done. Command errors
// are printed and do not stop the loop. A running play countdown is
// cancelled on return.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.playing.Wait()
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	c.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := c.Exec(ctx, line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				c.printf("error: %v\n", err)
			}
			c.prompt()
		}
	}
}

func (c *Console) prompt() {
	c.printf("> ")
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	c.log.Debug("Console command", "command", cmd, "args", args)

	switch cmd {
	case "help", "?":
		c.printf("%s", Help)
		return nil
	case "quit", "exit":
		return ErrQuit
	case "mode":
		return c.mode(ctx, args)
	case "set":
		return c.set(ctx, args)
	case "toggle":
		return c.toggle(ctx, args)
	case "nudge":
		return c.nudge(ctx, args)
	case "target":
		return c.target(ctx, args)
	case "origin":
		return c.origin(ctx, args)
	case "load":
		if len(args) != 1 {
			return usage("load <file>")
		}
		n, err := c.ctl.LoadPath(ctx, args[0])
		if err != nil {
			return err
		}
		c.printf("loaded %d waypoints\n", n)
		return nil
	case "rebase":
		return c.ctl.Rebase(ctx)
	case "pin":
		return c.pin(ctx, args)
	case "reset":
		return c.ctl.Reset(ctx)
	case "resend", "send":
		return c.ctl.Resend(ctx)
	case "play":
		c.play(ctx)
		return nil
	case "status":
		return c.status(args)
	case "show":
		return c.show(ctx)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}

func (c *Console) mode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("mode <circle|arc|line|ellipse|loaded|dollyzoom|1-6>")
	}
	m, err := model.ParseMode(args[0])
	if err != nil {
		return err
	}
	return c.ctl.SetMode(ctx, m)
}

func (c *Console) set(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("set <param> <value> (params: " + strings.Join(model.ParamNames(), ", ") + ", pause)")
	}
	name := strings.ToLower(args[0])
	if name == "pause" {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("%w: pause=%q", model.ErrInvalidValue, args[1])
		}
		return c.ctl.SetPauseDuration(ctx, v)
	}
	v, err := c.ctl.SetText(ctx, name, args[1])
	if err != nil {
		return err
	}
	c.printf("%s = %g\n", name, v)
	return nil
}

func (c *Console) toggle(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("toggle <" + strings.Join(dolly.FlagNames(), "|") + "> [on|off]")
	}
	f, err := dolly.ParseFlag(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		return c.ctl.SetFlag(ctx, f, on)
	}
	on, err := c.ctl.Toggle(ctx, f)
	if err != nil {
		return err
	}
	c.printf("%s = %t\n", f, on)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// ParseNudge reads "t+x", "r-y" and the like.
func ParseNudge(s string) (nudge.Action, error) {
	s = strings.ToLower(s)
	if len(s) != 3 {
		return nudge.Action{}, fmt.Errorf("bad nudge %q, want t|r, +|-, x|y|z", s)
	}
	var a nudge.Action
	switch s[0] {
	case 't':
		a.Kind = nudge.Translate
	case 'r':
		a.Kind = nudge.Rotate
	default:
		return nudge.Action{}, fmt.Errorf("bad nudge kind %q", s[:1])
	}
	switch s[1] {
	case '+':
		a.Sign = 1
	case '-':
		a.Sign = -1
	default:
		return nudge.Action{}, fmt.Errorf("bad nudge sign %q", s[1:2])
	}
	switch s[2] {
	case 'x':
		a.Axis = orient.AxisX
	case 'y':
		a.Axis = orient.AxisY
	case 'z':
		a.Axis = orient.AxisZ
	default:
		return nudge.Action{}, fmt.Errorf("bad nudge axis %q", s[2:])
	}
	return a, nil
}

func (c *Console) nudge(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("nudge <t|r><+|-><x|y|z> [count]")
	}
	a, err := ParseNudge(args[0])
	if err != nil {
		return err
	}
	n := 1
	if len(args) == 2 {
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			return fmt.Errorf("bad count %q", args[1])
		}
	}
	for i := 0; i < n; i++ {
		if err := c.ctl.Nudge(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func parseVec(args []string) (r3.Vector, error) {
	if len(args) != 3 {
		return r3.Vector{}, fmt.Errorf("expected x y z")
	}
	var v [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return r3.Vector{}, fmt.Errorf("%w: %q", model.ErrInvalidValue, a)
		}
		v[i] = f
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func (c *Console) target(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
		return c.ctl.CaptureTarget(ctx)
	case len(args) == 1 && strings.EqualFold(args[0], "clear"):
		return c.ctl.SetTarget(ctx, nil)
	}
	v, err := parseVec(args)
	if err != nil {
		return fmt.Errorf("target [x y z|clear]: %w", err)
	}
	return c.ctl.SetTarget(ctx, &v)
}

func (c *Console) origin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.ctl.CaptureOrigin(ctx)
	}
	v, err := parseVec(args)
	if err != nil {
		return fmt.Errorf("origin [x y z]: %w", err)
	}
	return c.ctl.SetOrigin(ctx, v)
}

func (c *Console) pin(ctx context.Context, args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "list") {
		slots, err := c.ctl.ListPins()
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			c.printf("no pins saved\n")
			return nil
		}
		c.printf("pins: %s\n", joinInts(slots))
		return nil
	}
	if len(args) != 2 {
		return usage("pin save|load <1-8> | pin list")
	}
	slot, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad pin slot %q", args[1])
	}
	switch strings.ToLower(args[0]) {
	case "save":
		return c.ctl.SavePin(ctx, slot)
	case "load":
		return c.ctl.LoadPin(ctx, slot)
	}
	return usage("pin save|load <1-8> | pin list")
}

// play runs the countdown in the background so the console stays usable.
func (c *Console) play(ctx context.Context) {
	c.playing.Add(1)
	go func() {
		defer c.playing.Done()
		if err := c.ctl.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.printf("play: %v\n", err)
		}
	}()
}

func (c *Console) status(args []string) error {
	n := defaultStatusLines
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("bad line count %q", args[0])
		}
		n = v
	}
	lines := c.ctl.StatusLines()
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, l := range lines {
		c.printf("%s\n", l)
	}
	return nil
}

func (c *Console) show(ctx context.Context) error {
	v, err := c.ctl.Snapshot(ctx)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "mode:        %s\n", v.Mode)
	fmt.Fprintf(&b, "origin:      %s\n", fmtVec(v.Origin))
	if v.Target != nil {
		fmt.Fprintf(&b, "target:      %s (use %t)\n", fmtVec(*v.Target), v.UseTarget)
	} else {
		fmt.Fprintf(&b, "target:      none\n")
	}
	fmt.Fprintf(&b, "translation: %s\n", fmtVec(v.Translation))
	fmt.Fprintf(&b, "rotation:    %s\n", fmtVec(v.Rotation))
	fmt.Fprintf(&b, "pause:       %gs\n", v.PauseDuration)
	if v.DollyZoomBase != 0 {
		fmt.Fprintf(&b, "zoom base:   %g\n", v.DollyZoomBase)
	}
	if v.LoadedPoints > 0 {
		fmt.Fprintf(&b, "loaded:      %d waypoints\n", v.LoadedPoints)
	}

	s := v.Settings
	for _, name := range model.ParamNames() {
		val, _ := s.Get(name)
		fmt.Fprintf(&b, "  %-8s %g\n", name, val)
	}

	flags := make([]string, 0, len(v.Flags))
	for f, on := range v.Flags {
		if on {
			flags = append(flags, f.String())
		}
	}
	sort.Strings(flags)
	fmt.Fprintf(&b, "flags:       %s\n", strings.Join(flags, " "))

	fmt.Fprintf(&b, "path:        %d points", len(v.Sent))
	if len(v.Sent) > 1 {
		fmt.Fprintf(&b, ", %s", footprint.Of(v.Sent))
	}
	if v.Suspended {
		b.WriteString(" (suspended)")
	}
	b.WriteString("\n")

	c.printf("%s", b.String())
	return nil
}

func fmtVec(v model.Vec3) string {
	return fmt.Sprintf("%.3f %.3f %.3f", v.X, v.Y, v.Z)
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}

// Help lists the console commands.
const Help = `commands:
  mode <name|1-6>             circle arc line ellipse loaded dollyzoom
  set <param> <value>         set a generation parameter, or "set pause <seconds>"
  toggle <flag> [on|off]      reverse vertical pause pausepair usetarget islocal
                              clockwise tangent reversezoom
  nudge <t|r><+|-><x|y|z> [n] translate or rotate the path
  target [x y z|clear]        capture the view target from the camera, or set it
  origin [x y z]              capture the path origin from the camera, or set it
  load <file>                 load a custom path (.json, .yaml)
  rebase                      move the loaded path onto the origin
  pin save|load <1-8>         bookmarks; "pin list" shows saved slots
  reset                       restore defaults
  resend                      send the current path again
  play                        count down and start playback
  status [n]                  show the last n status lines
  show                        print the current state
  quit
`
