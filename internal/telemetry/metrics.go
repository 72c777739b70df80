package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/KaramelBytes/datamatic"

// Instruments holds pre-created metric instruments for the profiling pipeline.
type Instruments struct {
	ProfileCount    metric.Int64Counter
	ProfileDuration metric.Float64Histogram
	DroppedValues   metric.Int64Counter
}

// NewInstruments creates instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	return NewInstrumentsFromMeter(otel.Meter(meterName))
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	return NewInstrumentsFromMeter(noop.NewMeterProvider().Meter(meterName))
}

// NewInstrumentsFromMeter builds the instrument set on meter.
func NewInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// The API hands back usable noop instruments alongside any error.
	count, _ := meter.Int64Counter("datamatic.profile.count",
		metric.WithDescription("Number of dataset profiles built"),
	)
	duration, _ := meter.Float64Histogram("datamatic.profile.duration",
		metric.WithDescription("Time to build one dataset profile in milliseconds"),
		metric.WithUnit("ms"),
	)
	dropped, _ := meter.Int64Counter("datamatic.values.dropped",
		metric.WithDescription("Non-empty values excluded from numeric statistics"),
	)
	return &Instruments{
		ProfileCount:    count,
		ProfileDuration: duration,
		DroppedValues:   dropped,
	}
}

// RecordProfile records one finished profile and how long it took.
func (i *Instruments) RecordProfile(ctx context.Context, ms float64, columns int) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Int("columns", columns))
	i.ProfileCount.Add(ctx, 1, attrs)
	i.ProfileDuration.Record(ctx, ms, attrs)
}

// AddDropped counts values of column that failed numeric coercion.
func (i *Instruments) AddDropped(ctx context.Context, column string, n int) {
	if i == nil || n <= 0 {
		return
	}
	i.DroppedValues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}
