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

	"github.com/kbukum/bg/logger"
)

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

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
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

	logger.Debug("meter initialized", logger.Fields(
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

// LaunchMetrics holds the instruments recorded around every launch and
// every HTTP request served by the launch API. A nil *LaunchMetrics is
// valid and records nothing.
type LaunchMetrics struct {
	launchTotal     metric.Int64Counter
	launchDuration  metric.Float64Histogram
	launchActive    metric.Int64UpDownCounter
	errorTotal      metric.Int64Counter
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewLaunchMetrics creates metric instruments on the given meter.
func NewLaunchMetrics(meter metric.Meter) (*LaunchMetrics, error) {
	launchTotal, err := meter.Int64Counter("launch.total",
		metric.WithDescription("Total number of launches by mode and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating launch.total counter: %w", err)
	}

	launchDuration, err := meter.Float64Histogram("launch.duration",
		metric.WithDescription("Duration of launches in seconds, including the wait in capture mode"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating launch.duration histogram: %w", err)
	}

	launchActive, err := meter.Int64UpDownCounter("launch.active",
		metric.WithDescription("Number of launches in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating launch.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("launch.errors",
		metric.WithDescription("Failed launches by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating launch.errors counter: %w", err)
	}

	requestTotal, err := meter.Int64Counter("request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}

	return &LaunchMetrics{
		launchTotal:     launchTotal,
		launchDuration:  launchDuration,
		launchActive:    launchActive,
		errorTotal:      errorTotal,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}, nil
}

// RecordLaunchStart increments the in-progress launch count.
func (m *LaunchMetrics) RecordLaunchStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.launchActive.Add(ctx, 1)
}

// RecordLaunchEnd decrements in-progress launches and records the completed one.
func (m *LaunchMetrics) RecordLaunchEnd(ctx context.Context, mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.launchActive.Add(ctx, -1)
	m.launchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	))
	m.launchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
	))
}

// RecordError counts a failed launch by error code.
func (m *LaunchMetrics) RecordError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}

// RecordRequest records a completed HTTP request.
func (m *LaunchMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}
