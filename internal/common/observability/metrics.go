package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records scheduler sweep telemetry through an OpenTelemetry
// meter exported to the default Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	sweepCounter  otelmetric.Int64Counter
	firedCounter  otelmetric.Int64Counter
	sweepDuration otelmetric.Float64Histogram
}

// New falls back to a disabled instance when the exporter can't be built.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sweepCounter, _ := meter.Int64Counter(
		"scheduler.sweeps",
		otelmetric.WithDescription("Number of scheduler sweeps"),
	)
	firedCounter, _ := meter.Int64Counter(
		"scheduler.reminders_fired",
		otelmetric.WithDescription("Reminders fired by sweeps"),
	)
	sweepDuration, _ := meter.Float64Histogram(
		"scheduler.sweep_duration",
		otelmetric.WithDescription("Sweep duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		sweepCounter:  sweepCounter,
		firedCounter:  firedCounter,
		sweepDuration: sweepDuration,
	}
}

// Disabled returns an instance whose Record calls are no-ops.
func Disabled() *Observability {
	return &Observability{}
}

// RecordSweep records one sweep pass with its outcome and fired count.
func (o *Observability) RecordSweep(ctx context.Context, duration time.Duration, fired int, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.sweepCounter != nil {
		o.sweepCounter.Add(ctx, 1, attrs)
	}
	if o.firedCounter != nil && fired > 0 {
		o.firedCounter.Add(ctx, int64(fired))
	}
	if o.sweepDuration != nil {
		o.sweepDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
