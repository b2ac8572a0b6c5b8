package infra

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/triarb-allocator/business/optimizer/domain"
)

// PassMetrics records optimization pass outcomes through the global OTel
// meter provider. With no provider configured every instrument is a no-op.
type PassMetrics struct {
	passes   metric.Int64Counter
	duration metric.Float64Histogram
	invested metric.Float64Counter
}

// NewPassMetrics creates the pass instruments.
func NewPassMetrics() (*PassMetrics, error) {
	meter := otel.Meter("optimizer")

	passes, err := meter.Int64Counter("optimizer.passes",
		metric.WithDescription("Optimization passes by solve status"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("optimizer.solve.duration",
		metric.WithDescription("Wall-clock pass duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	invested, err := meter.Float64Counter("optimizer.invested",
		metric.WithDescription("Capital allocated across passes"),
	)
	if err != nil {
		return nil, err
	}

	return &PassMetrics{
		passes:   passes,
		duration: duration,
		invested: invested,
	}, nil
}

// RecordPass records one pass outcome.
func (p *PassMetrics) RecordPass(ctx context.Context, status domain.SolveStatus, seconds, invested float64) {
	statusAttr := metric.WithAttributes(attribute.String("status", string(status)))
	p.passes.Add(ctx, 1, statusAttr)
	p.duration.Record(ctx, seconds, statusAttr)
	if invested > 0 {
		p.invested.Add(ctx, invested)
	}
}
