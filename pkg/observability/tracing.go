package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of mondrian's own spans.
const TracerName = "github.com/matzehuels/mondrian"

// TracerConfig configures OTLP trace export. An empty OTLPEndpoint leaves
// the global no-op provider in place.
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string  // host:port of an OTLP/gRPC collector
	SampleRate     float64 // 0..1, applied to root spans
}

// TracerProvider owns the SDK provider installed by InitTracer.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *log.Logger
}

// InitTracer installs a global tracer provider exporting to cfg.OTLPEndpoint.
// Call Shutdown on the result to flush buffered spans.
func InitTracer(ctx context.Context, cfg TracerConfig, logger *log.Logger) (*TracerProvider, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.OTLPEndpoint == "" {
		logger.Debug("tracing disabled")
		return &TracerProvider{logger: logger}, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint, "sample_rate", cfg.SampleRate)
	return &TracerProvider{provider: tp, logger: logger}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Shutdown flushes and stops the provider. It is a no-op when tracing is
// disabled.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp == nil || tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	tp.logger.Debug("tracer provider shut down")
	return nil
}

// StartSpan starts a span on the global provider under TracerName.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
