package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/logging"
	intOtel "github.com/Changa-Husky/VrChatDollyController/internal/otel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// app holds the process-wide logging and telemetry setup shared by every
// command.
type app struct {
	SessionID        string
	SessionStartTime time.Time

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager
	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger
	// ZLog feeds the components that log through zerolog
	ZLog zerolog.Logger

	OTelProvider *intOtel.Provider

	LogFilePath string
	logFile     *os.File
	graylog     io.Closer
}

// newApp sets up logging. With toFile false records go to stderr only and
// no session log file is created.
func newApp(toFile bool) *app {
	a := &app{
		SessionID:        uuid.NewString(),
		SessionStartTime: time.Now(),
		SlogManager:      logging.NewSlogManager(),
	}
	level := config.GetString("logLevel")

	var out io.Writer = os.Stderr
	if toFile {
		if f, err := a.openLogFile(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log file: %v\n", err)
		} else {
			out = f
		}
	}

	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	a.ZLog = zerolog.New(out).Level(zlevel).With().Timestamp().Str("session", a.SessionID).Logger()

	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Graylog disabled: %v\n", err)
		} else {
			a.SlogManager.SetGraylog(gw)
			a.graylog = gw
		}
	}
	a.SlogManager.SetContext(func() []slog.Attr {
		return []slog.Attr{slog.String("session", a.SessionID)}
	})

	// OTel needs the log file; without one it stays off
	var otelLogProvider *sdklog.LoggerProvider
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled && a.logFile != nil {
		a.OTelProvider, err = intOtel.New(intOtel.FromConfig(otelCfg, a.logFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize OTel provider: %v\n", err)
		} else {
			otelLogProvider = a.OTelProvider.LoggerProvider()
		}
	}

	a.SlogManager.Setup(out, level, otelLogProvider)
	a.Logger = a.SlogManager.Logger()
	if a.LogFilePath != "" {
		a.Logger.Info("Logging to file", "path", a.LogFilePath)
	}
	if a.OTelProvider != nil {
		a.Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	}
	return a
}

// openLogFile creates the session log in logsDir. An existing file with
// the same name is kept as .old.
func (a *app) openLogFile() (*os.File, error) {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, err
	}
	a.LogFilePath = logging.LogFilePath(logsDir, AppName, a.SessionStartTime)
	if _, err := os.Stat(a.LogFilePath); err == nil {
		_ = os.Rename(a.LogFilePath, a.LogFilePath+".old")
	}
	f, err := os.OpenFile(filepath.Clean(a.LogFilePath), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		a.LogFilePath = ""
		return nil, err
	}
	a.logFile = f
	return f, nil
}

// Close flushes telemetry and closes the log outputs.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.SlogManager.Flush(ctx); err != nil {
		a.Logger.Warn("Failed to flush logs", "error", err)
	}
	if a.OTelProvider != nil {
		if err := a.OTelProvider.Shutdown(ctx); err != nil {
			a.Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if a.graylog != nil {
		_ = a.graylog.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
