package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/streamkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the application.
	ServiceName string
	// ServiceVersion is the version of the application.
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

// InitMeter initializes the OpenTelemetry meter provider. Returns a
// MeterProvider that should be shut down on application exit.
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

// newResource creates an OpenTelemetry resource with service metadata.
func newResource(serviceName, serviceVersion, environment string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", environment),
		),
	)
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// PipelineMetrics holds metric instruments for stream pipelines.
type PipelineMetrics struct {
	samplesTotal     metric.Int64Counter
	droppedTotal     metric.Int64Counter
	queuePending     metric.Int64UpDownCounter
	deliveryDuration metric.Float64Histogram
}

// NewPipelineMetrics creates metric instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	samplesTotal, err := meter.Int64Counter("stream.samples.total",
		metric.WithDescription("Total samples observed per stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.samples.total counter: %w", err)
	}

	droppedTotal, err := meter.Int64Counter("stream.dropped.total",
		metric.WithDescription("Total samples dropped per stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.dropped.total counter: %w", err)
	}

	queuePending, err := meter.Int64UpDownCounter("stream.queue.pending",
		metric.WithDescription("Asynchronous deliveries currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.queue.pending gauge: %w", err)
	}

	deliveryDuration, err := meter.Float64Histogram("stream.delivery.duration",
		metric.WithDescription("Duration of downstream delivery in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.delivery.duration histogram: %w", err)
	}

	return &PipelineMetrics{
		samplesTotal:     samplesTotal,
		droppedTotal:     droppedTotal,
		queuePending:     queuePending,
		deliveryDuration: deliveryDuration,
	}, nil
}

// RecordSample counts one sample passing through a stage and times its
// downstream delivery.
func (m *PipelineMetrics) RecordSample(ctx context.Context, stage string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.samplesTotal.Add(ctx, 1, attrs)
	m.deliveryDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDrop counts a sample dropped at a stage.
func (m *PipelineMetrics) RecordDrop(ctx context.Context, stage string) {
	m.droppedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordEnqueue increments the in-flight delivery gauge.
func (m *PipelineMetrics) RecordEnqueue(ctx context.Context, stage string) {
	m.queuePending.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordDequeue decrements the in-flight delivery gauge.
func (m *PipelineMetrics) RecordDequeue(ctx context.Context, stage string) {
	m.queuePending.Add(ctx, -1, metric.WithAttributes(attribute.String("stage", stage)))
}
