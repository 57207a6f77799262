package trace

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const defaultService = "signal-trading-bot"

// Config selects where spans go and how many are kept.
type Config struct {
	ServiceName string
	Enabled     bool
	Pretty      bool
	// SampleRatio is the fraction of root spans sampled, 1 keeps all.
	SampleRatio float64
	Writer      io.Writer
}

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	enabled        bool
)

// ConfigFromEnv reads LOG_TRACING_ENABLED, LOG_TRACE_PRETTY and
// LOG_TRACE_SAMPLE_RATIO.
func ConfigFromEnv(serviceName string) Config {
	cfg := Config{
		ServiceName: serviceName,
		Enabled:     os.Getenv("LOG_TRACING_ENABLED") != "false",
		Pretty:      os.Getenv("LOG_TRACE_PRETTY") == "true",
		SampleRatio: 1,
		Writer:      os.Stdout,
	}
	if v, err := strconv.ParseFloat(os.Getenv("LOG_TRACE_SAMPLE_RATIO"), 64); err == nil && v >= 0 && v <= 1 {
		cfg.SampleRatio = v
	}
	return cfg
}

// Init installs a stdout exporting tracer provider configured from the
// environment.
func Init(serviceName string) error {
	return InitWithConfig(ConfigFromEnv(serviceName))
}

func InitWithConfig(cfg Config) error {
	if !cfg.Enabled {
		enabled = false
		return nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultService
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(cfg.Writer)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(cfg.ServiceName)
	enabled = true
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

// Symbol tags a span with the instrument it concerns.
func Symbol(symbol string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("symbol", symbol))
}

// Finish ends span, marking it failed when err is set.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func Enabled() bool { return enabled }

func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
