// Package otel sets up the OpenTelemetry log and metric providers. Log
// records and periodic metric snapshots share one writer, normally the
// session log file; an OTLP endpoint receives logs as well when set.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
)

type Config struct {
	Enabled     bool
	ServiceName string
	// BatchTimeout bounds a log export and sets the metric reader interval.
	BatchTimeout time.Duration
	Writer       io.Writer
	Endpoint     string
	Insecure     bool
}

// FromConfig pairs the loaded settings with the writer for exported data.
func FromConfig(cfg config.OTelConfig, w io.Writer) Config {
	return Config{
		Enabled:      cfg.Enabled,
		ServiceName:  cfg.ServiceName,
		BatchTimeout: cfg.BatchTimeout,
		Writer:       w,
		Endpoint:     cfg.Endpoint,
		Insecure:     cfg.Insecure,
	}
}

// Provider is inert when disabled: every method is safe to call and the
// global meter stays a no-op.
type Provider struct {
	enabled bool
	logs    *sdklog.LoggerProvider
	meters  *sdkmetric.MeterProvider
}

// New builds the providers and installs the meter provider globally, so
// the counters registered by the controller and dispatcher start
// recording. An enabled config needs a writer or an endpoint.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}
	if cfg.Writer == nil && cfg.Endpoint == "" {
		return nil, errors.New("otel enabled without a writer or endpoint")
	}

	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	logOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	batch := func(exp sdklog.Exporter) sdklog.LoggerProviderOption {
		return sdklog.WithProcessor(sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(cfg.BatchTimeout)))
	}

	if cfg.Writer != nil {
		exp, err := stdoutlog.New(stdoutlog.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("otel log writer: %w", err)
		}
		logOpts = append(logOpts, batch(exp))
	}
	if cfg.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp log exporter %s: %w", cfg.Endpoint, err)
		}
		logOpts = append(logOpts, batch(exp))
	}

	p := &Provider{enabled: true, logs: sdklog.NewLoggerProvider(logOpts...)}

	if cfg.Writer != nil {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			_ = p.logs.Shutdown(ctx)
			return nil, fmt.Errorf("otel metric writer: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if cfg.BatchTimeout > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.BatchTimeout))
		}
		p.meters = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		)
		otel.SetMeterProvider(p.meters)
	}
	return p, nil
}

// LoggerProvider is nil when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Meter returns a meter from the global provider.
func (p *Provider) Meter(name string) metric.Meter {
	return otel.Meter(name)
}

func (p *Provider) Flush(ctx context.Context) error {
	var errs []error
	if p.logs != nil {
		if err := p.logs.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	if p.meters != nil {
		if err := p.meters.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops both providers. Call once on exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.meters != nil {
		if err := p.meters.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown logs: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *Provider) Enabled() bool {
	return p.enabled
}
