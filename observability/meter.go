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

	"github.com/origon-labs/apiutils/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
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

// AuthMetrics holds the instruments for token validation and issuance.
type AuthMetrics struct {
	validationTotal    metric.Int64Counter
	validationDuration metric.Float64Histogram
	issuedTotal        metric.Int64Counter
}

// ResultOK is the validation result attribute for accepted tokens; failed
// validations carry their reason code instead.
const ResultOK = "OK"

// NewAuthMetrics creates the auth instrument set on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	validationTotal, err := meter.Int64Counter("auth.validation.total",
		metric.WithDescription("Token validations by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.validation.total counter: %w", err)
	}

	validationDuration, err := meter.Float64Histogram("auth.validation.duration",
		metric.WithDescription("Duration of token validation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.validation.duration histogram: %w", err)
	}

	issuedTotal, err := meter.Int64Counter("auth.token.issued.total",
		metric.WithDescription("Tokens issued by the development login endpoint"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.token.issued.total counter: %w", err)
	}

	return &AuthMetrics{
		validationTotal:    validationTotal,
		validationDuration: validationDuration,
		issuedTotal:        issuedTotal,
	}, nil
}

// RecordValidation records one token validation. result is ResultOK or the
// failure reason code.
func (m *AuthMetrics) RecordValidation(ctx context.Context, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.validationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
	m.validationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("result", result),
	))
}

// RecordIssued records one issued development token.
func (m *AuthMetrics) RecordIssued(ctx context.Context, subject string) {
	if m == nil {
		return
	}
	m.issuedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("subject", subject),
	))
}

// RequestMetrics holds the per-request HTTP instruments.
type RequestMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewRequestMetrics creates the HTTP instrument set on the given meter.
func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
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

	requestActive, err := meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.active gauge: %w", err)
	}

	return &RequestMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *RequestMetrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the completion.
func (m *RequestMetrics) RecordRequestEnd(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	))
}
