package trace

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// constructor seams, replaced in tests to avoid network exporters
var (
	newResource      = resource.New
	newOTLPTraceHTTP = otlptracehttp.New
	newOTLPTraceGRPC = otlptracegrpc.New
)

// Shutdown flushes and stops the tracer provider
type Shutdown func(context.Context) error

// noop is returned when tracing is disabled
func noop(context.Context) error { return nil }

// InitTracing installs an OTLP tracer provider and returns its shutdown.
// With tracing disabled the global no-op provider stays in place.
func InitTracing(ctx context.Context, cfg *config.TracingConfig, lg *zap.Logger) (Shutdown, error) {
	if cfg == nil || !cfg.Enabled {
		return noop, nil
	}

	protocol := cfg.Protocol
	if protocol == "" {
		protocol = ProtocolGRPC
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		if protocol == ProtocolHTTP {
			endpoint = "localhost:4318"
		} else {
			endpoint = "localhost:4317"
		}
	}

	res, err := newResource(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var exp *otlptrace.Exporter
	switch protocol {
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		exp, err = newOTLPTraceHTTP(ctx, opts...)
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		exp, err = newOTLPTraceGRPC(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported tracing protocol: %s", protocol)
	}
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	rate := min(max(cfg.SamplerRate, 0), 1)

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
		sdktrace.WithResource(res),
	}
	if exp != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exp))
	}
	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	lg.Info("tracing enabled",
		zap.String("endpoint", endpoint),
		zap.String("protocol", protocol),
		zap.Float64("sampler_rate", rate),
	)
	return tp.Shutdown, nil
}

// NewHTTPClient returns a client whose requests are traced as client spans
func NewHTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := *base
	client.Transport = otelhttp.NewTransport(transport)
	return &client
}

// Builder is a small wrapper to access a named tracer with fluent helpers
type Builder struct {
	tracer trace.Tracer
}

// Tracer creates a Builder for a named tracer
func Tracer(name string) *Builder {
	return &Builder{tracer: otel.Tracer(name)}
}

// SpanScope holds span and context
type SpanScope struct {
	Ctx  context.Context
	Span trace.Span
}

func (b *Builder) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) *SpanScope {
	nctx, sp := b.tracer.Start(ctx, spanName, opts...)
	return &SpanScope{Ctx: nctx, Span: sp}
}

// WithAttrs sets attributes on the span and returns the scope for chaining
func (s *SpanScope) WithAttrs(attrs ...attribute.KeyValue) *SpanScope {
	if s != nil && s.Span != nil {
		s.Span.SetAttributes(attrs...)
	}
	return s
}

// Fail records err on the span and marks it failed
func (s *SpanScope) Fail(err error) {
	if s == nil || s.Span == nil || err == nil {
		return
	}
	s.Span.RecordError(err)
	s.Span.SetStatus(codes.Error, err.Error())
}

func (s *SpanScope) End() {
	if s != nil && s.Span != nil {
		s.Span.End()
	}
}
