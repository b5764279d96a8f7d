package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"roi-workers/internal/common/metrics"
)

var _ metrics.JobObserver = (*Observability)(nil)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	jobCounter         otelmetric.Int64Counter
	jobDuration        otelmetric.Float64Histogram
	calculationCounter otelmetric.Int64Counter
	multiplier         otelmetric.Float64Histogram
}

// New registers the OpenTelemetry prometheus exporter with reg (the default
// registerer when nil) and installs meter and tracer providers. Extra span
// processors receive every finished span.
func New(serviceName string, reg promclient.Registerer, spanProcessors ...sdktrace.SpanProcessor) *Observability {
	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.AlwaysSample())}
	for _, sp := range spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	o := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	var exporterOpts []prometheus.Option
	if reg != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(reg))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)
	o.meterProvider = provider
	o.meter = meter

	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.calculationCounter, _ = meter.Int64Counter(
		"roi.engine.calculations",
		otelmetric.WithDescription("Number of ROI calculations"),
	)
	o.multiplier, _ = meter.Float64Histogram(
		"roi.engine.multiplier",
		otelmetric.WithDescription("Computed ROI multiplier"),
	)

	return o
}

// StartSpan starts a span on the service tracer. A nil receiver falls back to
// the global tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("roi-workers")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// ObserveJob feeds the otel job instruments. Register it with
// metrics.AddJobObserver so every worker's done func reaches it.
func (o *Observability) ObserveJob(taskType, status string, elapsed time.Duration) {
	ctx := context.Background()
	o.RecordJobProcessed(ctx, taskType, status)
	o.RecordJobDuration(ctx, taskType, elapsed, status)
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o != nil && o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o != nil && o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordCalculation(ctx context.Context, industry, outcome string, multiplier float64) {
	if o == nil || o.calculationCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("industry", metrics.IndustryLabel(industry, outcome)),
		attribute.String("outcome", outcome),
	)
	o.calculationCounter.Add(ctx, 1, attrs)
	if multiplier > 0 {
		o.multiplier.Record(ctx, multiplier, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
