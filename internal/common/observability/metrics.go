package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	tracer        trace.Tracer
	draftCounter  otelmetric.Int64Counter
	draftDuration otelmetric.Float64Histogram
}

// New wires the otel meter provider to the Prometheus exporter so otel
// instruments are served on /metrics next to the promauto ones.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return NewNoop(serviceName)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := build(provider.Meter(serviceName), otel.Tracer(serviceName))
	o.meterProvider = provider
	return o
}

// NewNoop returns an Observability whose instruments and spans discard
// everything. Used by tests and the CLI.
func NewNoop(serviceName string) *Observability {
	return build(
		metricnoop.NewMeterProvider().Meter(serviceName),
		tracenoop.NewTracerProvider().Tracer(serviceName),
	)
}

func build(meter otelmetric.Meter, tracer trace.Tracer) *Observability {
	draftCounter, _ := meter.Int64Counter(
		"drafts.processed",
		otelmetric.WithDescription("Number of draft requests processed"),
	)

	draftDuration, _ := meter.Float64Histogram(
		"drafts.duration",
		otelmetric.WithDescription("Draft pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meter:         meter,
		tracer:        tracer,
		draftCounter:  draftCounter,
		draftDuration: draftDuration,
	}
}

// StartSpan starts a span named name as a child of any span in ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordDraftProcessed(ctx context.Context, outcome string) {
	if o != nil && o.draftCounter != nil {
		o.draftCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordDraftDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o != nil && o.draftDuration != nil {
		o.draftDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
