package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	t.Run("telemetry off", func(t *testing.T) {
		mp, err := telemetry.NewMeterProvider(ctx, config.TelemetryConfig{MetricsEnabled: true}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())
	})

	t.Run("metrics off", func(t *testing.T) {
		mp, err := telemetry.NewMeterProvider(ctx, config.TelemetryConfig{Enabled: true}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())

		counter, err := telemetry.NewCounter(mp.Meter("test"), "noop_total", "discarded", "{call}")
		require.NoError(t, err)
		counter.Inc(ctx)

		assert.NoError(t, mp.ForceFlush(ctx))
		assert.NoError(t, mp.Shutdown(ctx))
	})
}

func TestMeterProvider_WithReader(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t))
	require.True(t, mp.IsEnabled())
	meter := mp.Meter("test")

	t.Run("counter", func(t *testing.T) {
		counter, err := telemetry.NewCounter(meter, "calls_total", "Calls", "{call}")
		require.NoError(t, err)
		counter.Inc(ctx, telemetry.AttrReportName.String("ledger"))
		counter.Inc(ctx, telemetry.AttrReportName.String("ledger"))
		counter.Inc(ctx, telemetry.AttrReportName.String("inventory"))

		m := testutil.FindMetric(t, testutil.CollectMetrics(t, reader), "calls_total")
		assert.Equal(t, int64(2), testutil.Int64Value(t, m, telemetry.AttrReportName.String("ledger")))
		assert.Equal(t, int64(3), testutil.Int64Value(t, m))
	})

	t.Run("histogram", func(t *testing.T) {
		h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:       "work_duration_seconds",
			Unit:       "s",
			Boundaries: telemetry.DBDurationBuckets,
		})
		require.NoError(t, err)
		h.RecordDuration(ctx, 3*time.Millisecond)
		h.RecordDuration(ctx, 2*time.Second)

		m := testutil.FindMetric(t, testutil.CollectMetrics(t, reader), "work_duration_seconds")
		assert.Equal(t, uint64(2), testutil.HistogramCount(t, m))
	})

	t.Run("shutdown disables the provider", func(t *testing.T) {
		require.NoError(t, mp.Shutdown(ctx))
		assert.False(t, mp.IsEnabled())
		assert.NoError(t, mp.Shutdown(ctx))
	})
}

func TestDBMetrics_PoolGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t)).Meter("test")

	stats := telemetry.PoolStats{MaxOpen: 25, Open: 7, InUse: 3, Idle: 4, WaitCount: 9}
	m, err := telemetry.NewDBMetrics(meter, func() (telemetry.PoolStats, error) {
		return stats, nil
	}, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	t.Run("observed on collection", func(t *testing.T) {
		rm := testutil.CollectMetrics(t, reader)

		conns := testutil.FindMetric(t, rm, "db_pool_connections")
		assert.Equal(t, int64(4), testutil.Int64Value(t, conns, telemetry.AttrDBState.String("idle")))
		assert.Equal(t, int64(3), testutil.Int64Value(t, conns, telemetry.AttrDBState.String("in_use")))
		assert.Equal(t, int64(7), testutil.Int64Value(t, conns, telemetry.AttrDBState.String("open")))
		assert.Equal(t, int64(25), testutil.Int64Value(t, testutil.FindMetric(t, rm, "db_pool_connections_max")))
		assert.Equal(t, int64(9), testutil.Int64Value(t, testutil.FindMetric(t, rm, "db_pool_wait_total")))
	})

	t.Run("follows the live pool", func(t *testing.T) {
		stats.InUse = 5
		conns := testutil.FindMetric(t, testutil.CollectMetrics(t, reader), "db_pool_connections")
		assert.Equal(t, int64(5), testutil.Int64Value(t, conns, telemetry.AttrDBState.String("in_use")))
	})

	t.Run("stop unregisters the gauges", func(t *testing.T) {
		m.Stop()
		m.Stop()
		assert.False(t, testutil.HasMetric(testutil.CollectMetrics(t, reader), "db_pool_connections_max"))
	})
}

func TestDBMetrics_PoolStatsError(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t)).Meter("test")

	_, err := telemetry.NewDBMetrics(meter, func() (telemetry.PoolStats, error) {
		return telemetry.PoolStats{}, errors.New("database closed")
	}, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	rm := testutil.CollectMetrics(t, reader)
	assert.False(t, testutil.HasMetric(rm, "db_pool_connections_max"))
}
