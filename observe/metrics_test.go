package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	sums := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			sums[m.Name] = total
		}
	}
	return sums
}

func TestMetrics_Recording(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	meta := OpMeta{Component: "transport", Operation: "request"}
	metrics.RecordRequest(ctx, meta, 12*time.Millisecond, nil)
	metrics.RecordRequest(ctx, meta, 40*time.Millisecond, errors.New("boom"))
	metrics.RecordRenewal(ctx, nil)
	metrics.RecordRenewal(ctx, errors.New("boom"))
	metrics.RecordReplay(ctx)

	sums := collectSums(t, reader)
	want := map[string]int64{
		"session.request.total":  2,
		"session.request.errors": 1,
		"session.renewal.total":  2,
		"session.renewal.errors": 1,
		"session.replay.total":   1,
	}
	for name, value := range want {
		if sums[name] != value {
			t.Errorf("%s = %d, want %d", name, sums[name], value)
		}
	}
}

func TestNopMetrics(t *testing.T) {
	ctx := context.Background()
	m := NopMetrics()
	m.RecordRequest(ctx, OpMeta{Component: "transport"}, time.Second, errors.New("ignored"))
	m.RecordRenewal(ctx, nil)
	m.RecordReplay(ctx)
}
