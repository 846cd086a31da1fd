// Package tracing installs the OpenTelemetry tracer provider used by the
// execution controller, the pipeline and the API.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config selects the span exporter.
type Config struct {
	Enabled     bool    `json:"enabled"`
	ServiceName string  `json:"service_name"`
	// File receives spans as JSON; empty writes to stdout.
	File        string  `json:"file"`
	Pretty      bool    `json:"pretty"`
	SampleRatio float64 `json:"sample_ratio"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "metrox"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("tracing: sample_ratio must be within [0,1]")
	}
	return nil
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// Init installs a global tracer provider. When tracing is disabled the
// default no-op provider stays in place.
func Init(cfg Config) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("tracing: open %s: %w", cfg.File, err)
		}
		w, closer = f, f
	}
	tp, err := NewProvider(cfg, w)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// NewProvider builds a provider exporting spans to w. It is not installed
// globally.
func NewProvider(cfg Config, w io.Writer) (*sdktrace.TracerProvider, error) {
	cfg.SetDefaults()
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: exporter: %w", err)
	}
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(cfg.ServiceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	), nil
}
