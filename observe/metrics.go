package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records session-layer telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one outbound API call with duration and
	// error status.
	RecordRequest(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordRenewal records one settled renewal exchange.
	RecordRenewal(ctx context.Context, err error)

	// RecordReplay records one request replayed after a renewal.
	RecordReplay(ctx context.Context)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	requestCount  metric.Int64Counter
	requestErrors metric.Int64Counter
	durationHist  metric.Float64Histogram
	renewalCount  metric.Int64Counter
	renewalErrors metric.Int64Counter
	replayCount   metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	requestCount, err := meter.Int64Counter(
		"session.request.total",
		metric.WithDescription("Total number of outbound API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestErrors, err := meter.Int64Counter(
		"session.request.errors",
		metric.WithDescription("Total number of failed outbound API requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"session.request.duration_ms",
		metric.WithDescription("Outbound API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	renewalCount, err := meter.Int64Counter(
		"session.renewal.total",
		metric.WithDescription("Total number of settled token renewal exchanges"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, err
	}

	renewalErrors, err := meter.Int64Counter(
		"session.renewal.errors",
		metric.WithDescription("Total number of failed token renewal exchanges"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	replayCount, err := meter.Int64Counter(
		"session.replay.total",
		metric.WithDescription("Total number of requests replayed after renewal"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		requestCount:  requestCount,
		requestErrors: requestErrors,
		durationHist:  durationHist,
		renewalCount:  renewalCount,
		renewalErrors: renewalErrors,
		replayCount:   replayCount,
	}, nil
}

// RecordRequest records metrics for one outbound call.
func (m *metricsImpl) RecordRequest(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("session.component", meta.Component),
		attribute.String("session.operation", meta.Operation),
	)

	m.requestCount.Add(ctx, 1, opt)
	if err != nil {
		m.requestErrors.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRenewal records one settled renewal exchange.
func (m *metricsImpl) RecordRenewal(ctx context.Context, err error) {
	m.renewalCount.Add(ctx, 1)
	if err != nil {
		m.renewalErrors.Add(ctx, 1)
	}
}

// RecordReplay records one replayed request.
func (m *metricsImpl) RecordReplay(ctx context.Context) {
	m.replayCount.Add(ctx, 1)
}

// nopMetrics is a metrics implementation that does nothing.
type nopMetrics struct{}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) RecordRequest(context.Context, OpMeta, time.Duration, error) {}
func (nopMetrics) RecordRenewal(context.Context, error)                        {}
func (nopMetrics) RecordReplay(context.Context)                                {}
