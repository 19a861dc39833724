// Package tracing exports request and provider spans over OTLP.
package tracing

import (
	"context"  // Exporter setup and shutdown
	"net/http" // Server handler wrapping

	"github.com/sirupsen/logrus"                                      // Logging
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"   // HTTP server spans
	"go.opentelemetry.io/otel"                                        // Global provider
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp" // OTLP over HTTP
	"go.opentelemetry.io/otel/propagation"                            // W3C headers
	"go.opentelemetry.io/otel/sdk/resource"                           // Service attributes
	sdktrace "go.opentelemetry.io/otel/sdk/trace"                     // Tracer provider
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"                // Attribute keys
)

// ServiceName identifies this server in exported spans
const ServiceName = "restaurant-system"

// Config selects where and how much to trace
type Config struct {
	Endpoint    string  // Collector host:port, empty disables export
	Insecure    bool    // Plain HTTP to the collector
	SampleRatio float64 // Share of new traces recorded
	Environment string  // deployment.environment attribute
}

// Shutdown flushes pending spans
type Shutdown func(context.Context) error

// Init installs the global tracer provider and W3C propagation.
// Without an endpoint spans are still propagated but nothing is exported.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, // traceparent
		propagation.Baggage{},
	))
	if cfg.Endpoint == "" {
		logrus.Info("Tracing export disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))), // Follow the caller's decision
	)
	otel.SetTracerProvider(tp)
	logrus.WithFields(logrus.Fields{
		"endpoint":     cfg.Endpoint,
		"sample_ratio": cfg.SampleRatio,
	}).Info("Tracing initialized")
	return tp.Shutdown, nil
}

// untraced are health check and scrape paths
var untraced = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// Handler wraps h so every request runs in a server span.
// The span is named by method until the router renames it after the matched route.
func Handler(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool { return !untraced[r.URL.Path] }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string { return r.Method }),
	)
}
