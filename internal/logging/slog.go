package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped in tests
var osStdout io.Writer = os.Stdout

// SlogManager owns the process slog.Logger. Sinks are chosen once per
// Setup: the log file (or stdout), Graylog and the OTel bridge.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider

	graylog io.Writer
	context ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// NewGraylogWriter opens a GELF UDP writer to addr (host:port).
func NewGraylogWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("graylog writer %s: %w", addr, err)
	}
	return w, nil
}

// SetGraylog adds w as an extra text sink on the next Setup.
func (m *SlogManager) SetGraylog(w io.Writer) {
	m.graylog = w
}

// SetContext attaches dynamic attributes to every record on the next Setup.
func (m *SlogManager) SetContext(p ContextProvider) {
	m.context = p
}

// parseLevel accepts slog level names in any case, including offsets such
// as "warn+2". Anything else is Info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Setup replaces the logger. Records go to file when one is given and to
// stdout otherwise. A nil provider leaves the OTel bridge out.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.logProvider = provider
	opts := &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: utcTime}

	out := file
	if out == nil {
		out = osStdout
	}
	sinks := []slog.Handler{slog.NewTextHandler(out, opts)}
	if m.graylog != nil {
		sinks = append(sinks, slog.NewTextHandler(m.graylog, opts))
	}
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler("dollyctl", otelslog.WithLoggerProvider(provider)))
	}

	var h slog.Handler = NewMultiHandler(sinks...)
	if m.context != nil {
		h = NewContextHandler(h, m.context)
	}

	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger falls back to slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}

// WriteLog logs data at the named level, tagged with the calling function.
// It is a no-op before Setup.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
