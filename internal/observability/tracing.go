package observability

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"ecommerce-eda/internal/config"
)

const TracerName = "ecommerce-eda"

// TracerProvider owns the process-wide tracer. Shutdown flushes buffered
// spans and is safe to call when tracing is disabled.
type TracerProvider struct {
	shutdown func(context.Context) error
}

// NewTracerProvider installs the global tracer provider. With tracing
// disabled a noop provider is installed and spans cost nothing.
func NewTracerProvider(cfg config.TracingConfig) (*TracerProvider, error) {
	return newTracerProvider(cfg, os.Stdout)
}

func newTracerProvider(cfg config.TracingConfig, w io.Writer) (*TracerProvider, error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &TracerProvider{
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return &TracerProvider{shutdown: tp.Shutdown}, nil
}

func (p *TracerProvider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}

// StartSpan starts a span on the global tracer.
func StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, operation, trace.WithAttributes(attrs...))
}

// FinishSpan records err on the span, if any, and ends it.
func FinishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
