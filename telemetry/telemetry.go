// Package telemetry builds the optional tracer and meter. When disabled it
// hands out no-op providers so callers never branch on it.
package telemetry

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/miosa/lingo-tui/logging"
)

const (
	ServiceName = "lingo"
	TraceFile   = "lingo_traces.log"
	MetricFile  = "lingo_metrics.log"
)

// Providers is what the rest of the program needs from telemetry.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	shutdown []func(context.Context) error
	closers  []io.Closer
}

// Disabled returns no-op providers.
func Disabled() *Providers {
	return &Providers{
		Tracer: tracenoop.NewTracerProvider().Tracer(ServiceName),
		Meter:  metricnoop.NewMeterProvider().Meter(ServiceName),
	}
}

// Init exports spans and metrics as JSON into rotated files under dir.
func Init(ctx context.Context, dir, version string) (*Providers, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create telemetry directory")
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "telemetry resource")
	}
	return initWith(res, logging.Rotating(dir, TraceFile), logging.Rotating(dir, MetricFile), 10*time.Second)
}

func initWith(res *resource.Resource, traceOut, metricOut io.WriteCloser, interval time.Duration) (*Providers, error) {
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
	if err != nil {
		return nil, errors.Wrap(err, "trace exporter")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricOut))
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, errors.Wrap(err, "metric exporter")
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)

	return &Providers{
		Tracer:   tp.Tracer(ServiceName),
		Meter:    mp.Meter(ServiceName),
		shutdown: []func(context.Context) error{tp.Shutdown, mp.Shutdown},
		closers:  []io.Closer{traceOut, metricOut},
	}, nil
}

// Shutdown flushes pending spans and metrics, then closes the files. It
// returns the first error.
func (p *Providers) Shutdown(ctx context.Context) error {
	var first error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil && first == nil {
			first = err
		}
	}
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.shutdown, p.closers = nil, nil
	return first
}
