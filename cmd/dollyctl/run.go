package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/console"
	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
	"github.com/Changa-Husky/VrChatDollyController/internal/dolly"
	"github.com/Changa-Husky/VrChatDollyController/internal/export"
	"github.com/Changa-Husky/VrChatDollyController/internal/influx"
	"github.com/Changa-Husky/VrChatDollyController/internal/logging"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/nudge"
	"github.com/Changa-Husky/VrChatDollyController/internal/osc"
	"github.com/Changa-Husky/VrChatDollyController/internal/pose"
	"github.com/Changa-Husky/VrChatDollyController/internal/storage"
	"github.com/Changa-Husky/VrChatDollyController/internal/stream"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	var (
		noConsole bool
		mode      string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Listen for OSC input and drive the dolly camera",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(true)
			defer a.Close()

			opts, err := dollyOptions(mode)
			if err != nil {
				return err
			}
			opts.SessionID = a.SessionID

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var in *os.File
			if !noConsole {
				in = os.Stdin
			}
			return a.run(ctx, opts, in)
		},
	}
	cmd.Flags().BoolVar(&noConsole, "no-console", false, "do not read commands from stdin")
	cmd.Flags().StringVar(&mode, "mode", "circle", "initial path mode")
	return cmd
}

// dollyOptions builds controller options from the loaded config.
func dollyOptions(mode string) (dolly.Options, error) {
	opts := dolly.DefaultOptions()
	if mode != "" {
		m, err := model.ParseMode(mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}

	oscCfg := config.GetOSCConfig()
	opts.InboxSize = oscCfg.InboxSize
	opts.SuppressInitialImport = oscCfg.SuppressInitialImport

	dc := config.GetDollyConfig()
	opts.PauseDuration = dc.PauseDuration
	opts.PausePair = dc.PausePair
	opts.PlayCountdown = dc.PlayCountdown
	opts.ArcFaceTangent = dc.ArcFaceTangent
	opts.ArcClockwise = dc.ArcClockwise
	return opts, nil
}

// run wires the controller to its transports and blocks until ctx is done
// or the console quits.
func (a *app) run(ctx context.Context, opts dolly.Options, in *os.File) error {
	oscCfg := config.GetOSCConfig()
	paths := config.GetPathsConfig()

	a.Logger.Info("Starting dolly controller",
		"version", CurrentVersion,
		"send", oscCfg.SendAddr(),
		"receive", oscCfg.ReceiveAddr(),
		"exportDir", paths.ExportDir,
	)

	client, err := osc.Dial(oscCfg.SendAddr())
	if err != nil {
		return err
	}
	defer client.Close()

	d, err := dispatcher.New(logging.NewDispatcherLogger(a.ZLog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer d.Close()

	deps := dolly.Deps{
		Poses:    pose.NewTracker(),
		Export:   export.NewWriter(paths.UsedLocations()),
		Importer: client,
		Logger:   a.Logger,
	}

	var store storage.Backend
	if store, err = a.initStorage(); err != nil {
		a.Logger.Warn("Pins disabled", "error", err)
	} else {
		deps.Store = store
		defer store.Close()
	}

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		backup := filepath.Join(config.GetString("logsDir"), fmt.Sprintf("%s_%s.lp.gz", AppName, a.SessionStartTime.Format("20060102_150405")))
		m := influx.New(a.ZLog, influxCfg, backup, a.SessionID)
		if err := m.Connect(ctx); err != nil {
			a.Logger.Warn("Telemetry disabled", "error", err)
		} else {
			deps.Telemetry = m
			defer m.Close()
		}
	}

	if streamCfg := config.GetStreamConfig(); streamCfg.Enabled {
		p := stream.New(stream.Config{URL: streamCfg.URL, Secret: streamCfg.Secret}, a.SessionID, a.Logger)
		if err := p.Init(); err != nil {
			a.Logger.Warn("Live stream disabled", "url", streamCfg.URL, "error", err)
		} else {
			deps.Stream = p
			defer p.Close()
		}
	}

	ctl, err := dolly.New(opts, deps)
	if err != nil {
		return err
	}
	ctl.RegisterHandlers(d, nudge.NewDebouncer())

	srv, err := osc.Listen(oscCfg.ReceiveAddr(), d, a.Logger)
	if err != nil {
		return err
	}
	defer srv.Close()
	a.Logger.Info("Listening for OSC", "addr", srv.Addr().String(), "handlers", len(d.Addresses()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctl.Run(ctx) })
	g.Go(func() error { return srv.Serve(ctx) })
	if in != nil {
		con := console.New(ctl, os.Stdout, a.Logger)
		g.Go(func() error {
			defer cancel()
			return con.Run(ctx, in)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.Logger.Info("Dolly controller stopped")
	return err
}
