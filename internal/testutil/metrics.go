package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// CollectMetrics reads everything recorded on reader so far
func CollectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// FindMetric returns the metric called name, failing the test when absent
func FindMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	require.Failf(t, "metric not found", "no metric named %q", name)
	return metricdata.Metrics{}
}

// HasMetric reports whether a metric called name was collected
func HasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

// Int64Value adds up the int64 sum or gauge points carrying every attr
func Int64Value(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var points []metricdata.DataPoint[int64]
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		points = data.DataPoints
	case metricdata.Gauge[int64]:
		points = data.DataPoints
	default:
		require.Failf(t, "unexpected metric data", "%s holds %T", m.Name, m.Data)
	}

	var total int64
	for _, dp := range points {
		if hasAttributes(dp.Attributes, attrs) {
			total += dp.Value
		}
	}
	return total
}

// HistogramCount adds up the observation counts of points carrying every attr
func HistogramCount(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) uint64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Histogram[float64])
	require.Truef(t, ok, "%s holds %T", m.Name, m.Data)

	var total uint64
	for _, dp := range data.DataPoints {
		if hasAttributes(dp.Attributes, attrs) {
			total += dp.Count
		}
	}
	return total
}

func hasAttributes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, want := range attrs {
		got, ok := set.Value(want.Key)
		if !ok || got != want.Value {
			return false
		}
	}
	return true
}
