package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultServiceName = "cheats"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheats_http_requests_total",
			Help: "Total number of HTTP requests received.",
		},
		[]string{"handler", "method", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cheats_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
	catalogCheatsheets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cheats_catalog_cheatsheets",
			Help: "Number of cheatsheets in the current catalog snapshot.",
		},
	)
	catalogReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheats_catalog_reloads_total",
			Help: "Catalog reloads by result.",
		},
		[]string{"result"},
	)
	renderCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cheats_render_cache_total",
			Help: "Rendered cheatsheet cache lookups by result.",
		},
		[]string{"result"},
	)
	cheatsheetViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cheats_cheatsheet_views_total",
			Help: "Cheatsheet pages served.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		catalogCheatsheets,
		catalogReloads,
		renderCache,
		cheatsheetViews,
	)
}

// Init sets up the tracer provider from config and returns its shutdown
// function. Supported exporters: "none" (default), "stdout", "otlp".
func Init(cfg *config.Config) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if cfg == nil || cfg.Tracing == nil || cfg.Tracing.Exporter == "" || cfg.Tracing.Exporter == constants.TracingExporterNone {
		return noop, nil
	}

	serviceName := defaultServiceName
	if cfg.Tracing.ServiceName != "" {
		serviceName = cfg.Tracing.ServiceName
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return noop, fmt.Errorf("telemetry resource: %w", err)
	}

	var exp sdktrace.SpanExporter
	switch cfg.Tracing.Exporter {
	case constants.TracingExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case constants.TracingExporterOTLP:
		exp, err = otlptracehttp.New(context.Background(), otlpOptions(cfg.Tracing.Endpoint)...)
	default:
		return noop, fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	if err != nil {
		return noop, fmt.Errorf("telemetry exporter %s: %w", cfg.Tracing.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func otlpOptions(endpoint string) []otlptracehttp.Option {
	if endpoint == "" {
		return nil
	}
	var opts []otlptracehttp.Option
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		opts = append(opts, otlptracehttp.WithInsecure())
		endpoint = strings.TrimPrefix(endpoint, "http://")
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	return append(opts, otlptracehttp.WithEndpoint(strings.TrimSuffix(endpoint, "/")))
}

// WrapHandler applies tracing, Prometheus metrics, and otelhttp middleware.
func WrapHandler(name string, next http.Handler) http.Handler {
	h := otelhttp.NewHandler(next, name)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{w, http.StatusOK}
		h.ServeHTTP(rw, r)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(name, r.Method, fmt.Sprintf("%d", rw.status)).Inc()
		httpRequestDuration.WithLabelValues(name, r.Method).Observe(dur)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsHandler returns the Prometheus metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// SetCatalogSize records the size of the catalog snapshot now being served.
func SetCatalogSize(n int) {
	catalogCheatsheets.Set(float64(n))
}

// ObserveReload counts a catalog reload attempt.
func ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	catalogReloads.WithLabelValues(result).Inc()
}

// ObserveRenderCache counts a rendered-page cache lookup.
func ObserveRenderCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	renderCache.WithLabelValues(result).Inc()
}

// ObserveView counts a served cheatsheet page.
func ObserveView() {
	cheatsheetViews.Inc()
}
