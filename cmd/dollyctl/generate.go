package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/footprint"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/path"
	"github.com/Changa-Husky/VrChatDollyController/internal/transform"
	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	mode     string
	out      string
	load     string
	origin   string
	center   string
	target   string
	offset   string
	set      []string
	reverse  bool
	vertical bool
	pause    bool
	isLocal  bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a camera path file without sending it",
		Example: "  dollyctl generate --mode circle --origin 0,1.5,0 --set radius=3 --out circle.json\n" +
			"  dollyctl generate --mode arc --origin 0,1.5,-4 --target 0,1.5,0 --out arc.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			wps, err := generate(f)
			if err != nil {
				return err
			}
			if err := path.WriteFile(f.out, wps); err != nil {
				return err
			}
			cmd.Printf("Wrote %d waypoints to %s (%s)\n", len(wps), f.out, footprint.Of(wps))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", "circle", "path mode ("+strings.Join(modeNames(), ", ")+")")
	flags.StringVarP(&f.out, "out", "o", "", "output file (.json or .yaml)")
	flags.StringVar(&f.load, "load", "", "waypoint file for the loaded mode")
	flags.StringVar(&f.origin, "origin", "0,0,0", "start position x,y,z")
	flags.StringVar(&f.center, "center", "", "circle center x,y,z (defaults to origin)")
	flags.StringVar(&f.target, "target", "", "view target x,y,z")
	flags.StringVar(&f.offset, "offset", "", "translation offset x,y,z")
	flags.StringArrayVar(&f.set, "set", nil, "setting as name=value, repeatable ("+strings.Join(model.ParamNames(), ", ")+")")
	flags.BoolVar(&f.reverse, "reverse", false, "reverse the path")
	flags.BoolVar(&f.vertical, "vertical", false, "roll the camera for portrait framing")
	flags.BoolVar(&f.pause, "pause", false, "hold at the end of the path")
	flags.BoolVar(&f.isLocal, "islocal", false, "mark waypoints as local to the player")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// generate runs the same pipeline as the controller for a single path.
func generate(f generateFlags) ([]model.Waypoint, error) {
	mode, err := model.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}

	settings := model.DefaultSettings()
	for _, kv := range f.set {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
		if _, err := settings.Set(strings.TrimSpace(name), v); err != nil {
			return nil, err
		}
	}

	in := path.Input{Settings: settings, IsLocal: f.isLocal}
	if in.Origin, err = parseVec(f.origin); err != nil {
		return nil, fmt.Errorf("--origin: %w", err)
	}
	in.Camera = in.Origin
	if in.Center, err = parseOptionalVec(f.center); err != nil {
		return nil, fmt.Errorf("--center: %w", err)
	}
	if in.Target, err = parseOptionalVec(f.target); err != nil {
		return nil, fmt.Errorf("--target: %w", err)
	}
	if mode == model.ModeLoaded {
		if f.load == "" {
			return nil, fmt.Errorf("--load is required for the %s mode", mode)
		}
		if in.Loaded, err = path.LoadFile(f.load); err != nil {
			return nil, err
		}
	}

	p, err := path.Generate(mode, in)
	if err != nil {
		return nil, err
	}

	dc := config.GetDollyConfig()
	xf := transform.NewState(dc.PauseDuration)
	xf.PausePair = dc.PausePair
	xf.Reverse = f.reverse
	xf.Vertical = f.vertical
	xf.Pause = f.pause
	if f.offset != "" {
		if xf.Translation, err = parseVec(f.offset); err != nil {
			return nil, fmt.Errorf("--offset: %w", err)
		}
	}

	xf.ApplyOffsets(&p, in.Target != nil)
	return xf.Finalize(p, transform.Send{
		Settings:  settings,
		Target:    in.Target,
		UseTarget: in.Target != nil,
	}), nil
}

func modeNames() []string {
	names := make([]string, 0, len(model.Modes))
	for _, m := range model.Modes {
		names = append(names, m.String())
	}
	return names
}

// parseVec reads "x,y,z".
func parseVec(s string) (r3.Vector, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vector{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vector{}, fmt.Errorf("bad component %q: %w", p, err)
		}
		v[i] = f
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parseOptionalVec(s string) (*r3.Vector, error) {
	if s == "" {
		return nil, nil
	}
	v, err := parseVec(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
