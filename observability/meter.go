package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/diext/logger"
)

// DefaultMeterName is the instrumentation scope used for DI metrics.
const DefaultMeterName = "github.com/kbukum/diext"

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// MetricsConfig switches the DI instruments on and names their meter.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	MeterName string `yaml:"meter_name" mapstructure:"meter_name"`
}

// ApplyDefaults applies default values to the metrics configuration.
func (c *MetricsConfig) ApplyDefaults() {
	if c.MeterName == "" {
		c.MeterName = DefaultMeterName
	}
}

// Metric instrument names.
const (
	MetricFallbackResolveTotal    = "diext.fallback.resolve.total"
	MetricFallbackResolveDuration = "diext.fallback.resolve.duration"
	MetricLazyWrappersTotal       = "diext.lazy.wrappers.total"
	MetricCacheClosedTotal        = "diext.cache.closed.total"
)

// Metrics holds the OpenTelemetry instruments for DI resolution.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	fallbackTotal    metric.Int64Counter
	fallbackDuration metric.Float64Histogram
	lazyWrappers     metric.Int64Counter
	cacheClosed      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	fallbackTotal, err := meter.Int64Counter(MetricFallbackResolveTotal,
		metric.WithDescription("Total number of unregistered-type resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricFallbackResolveTotal, err)
	}

	fallbackDuration, err := meter.Float64Histogram(MetricFallbackResolveDuration,
		metric.WithDescription("Duration of unregistered-type resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricFallbackResolveDuration, err)
	}

	lazyWrappers, err := meter.Int64Counter(MetricLazyWrappersTotal,
		metric.WithDescription("Total number of lazy wrapper registrations added"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricLazyWrappersTotal, err)
	}

	cacheClosed, err := meter.Int64Counter(MetricCacheClosedTotal,
		metric.WithDescription("Total number of resolution caches closed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricCacheClosedTotal, err)
	}

	return &Metrics{
		fallbackTotal:    fallbackTotal,
		fallbackDuration: fallbackDuration,
		lazyWrappers:     lazyWrappers,
		cacheClosed:      cacheClosed,
	}, nil
}

// RecordFallbackResolve records one unregistered-type resolution, keyed by
// lifetime and status.
func (m *Metrics) RecordFallbackResolve(ctx context.Context, lifetime, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lifetime", lifetime),
		attribute.String("status", status),
	))
	m.fallbackDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("lifetime", lifetime),
		attribute.String("status", status),
	))
}

// RecordLazyWrapper records one added lazy wrapper registration.
func (m *Metrics) RecordLazyWrapper(ctx context.Context, lifetime string, keyed bool) {
	if m == nil {
		return
	}
	m.lazyWrappers.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lifetime", lifetime),
		attribute.Bool("keyed", keyed),
	))
}

// RecordCacheClosed records a closed cache and how many instances it held.
func (m *Metrics) RecordCacheClosed(ctx context.Context, lifetime string, instances int) {
	if m == nil {
		return
	}
	m.cacheClosed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lifetime", lifetime),
		attribute.Int("instances", instances),
	))
}
