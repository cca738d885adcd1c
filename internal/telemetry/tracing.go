// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	Exporter     string // none, stdout or otlp
	OTLPEndpoint string // host:port, used by otlp
	ServiceName  string
	Stdout       io.Writer // destination for the stdout exporter
}

// Setup installs a tracer provider and W3C propagators and returns the
// shutdown func that flushes pending spans. With exporter "none" spans are
// still created, so trace ids are propagated, but nothing is exported.
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	serviceName := strings.TrimSpace(opts.ServiceName)
	if serviceName == "" {
		serviceName = "tasks-comments-api"
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	exporter, err := newExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Exporter)) {
	case "", "none":
		return nil, nil
	case "stdout":
		var stdOpts []stdouttrace.Option
		if opts.Stdout != nil {
			stdOpts = append(stdOpts, stdouttrace.WithWriter(opts.Stdout))
		}
		exp, err := stdouttrace.New(stdOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		return exp, nil
	case "otlp":
		var httpOpts []otlptracehttp.Option
		if ep := strings.TrimSpace(opts.OTLPEndpoint); ep != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(ep), otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, httpOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating otlp exporter: %w", err)
		}
		return exp, nil
	}
	return nil, fmt.Errorf("unknown tracing exporter %q", opts.Exporter)
}
