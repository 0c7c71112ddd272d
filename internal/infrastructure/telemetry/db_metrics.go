package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	MaxOpen   int
	Open      int
	InUse     int
	Idle      int
	WaitCount int64
}

// PoolStatsFunc reads the current pool statistics
type PoolStatsFunc func() (PoolStats, error)

// DBMetrics exports connection pool gauges and per-query counters.
// Pool gauges are observed on each collection, so nothing polls in between.
type DBMetrics struct {
	queryTotal      *Counter
	queryDuration   *Histogram
	slowQueryTotal  *Counter
	slowQueryThresh time.Duration
	registration    metric.Registration
	logger          *zap.Logger
}

// NewDBMetrics creates the database instruments on meter. stats may be nil,
// in which case no pool gauges are registered.
func NewDBMetrics(meter metric.Meter, stats PoolStatsFunc, slowQueryThresh time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slowQueryThresh <= 0 {
		slowQueryThresh = defaultSlowQueryThresh
	}

	queryTotal, err := NewCounter(meter, "db_query_total", "Total number of database queries by operation type", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total", "Total number of queries slower than the threshold", "{query}")
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		queryTotal:      queryTotal,
		queryDuration:   queryDuration,
		slowQueryTotal:  slowQueryTotal,
		slowQueryThresh: slowQueryThresh,
		logger:          logger,
	}
	if stats != nil {
		if err := m.observePool(meter, stats); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, stats PoolStatsFunc) error {
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConnections, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections that had to wait for a free slot"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s, err := stats()
		if err != nil {
			m.logger.Warn("Failed to read connection pool stats", zap.Error(err))
			return nil
		}
		o.ObserveInt64(maxConnections, int64(s.MaxOpen))
		o.ObserveInt64(connections, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(s.Open), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, connections, maxConnections, waits)
	return err
}

// Stop unregisters the pool gauges. Safe to call more than once.
func (m *DBMetrics) Stop() {
	if m.registration == nil {
		return
	}
	if err := m.registration.Unregister(); err != nil {
		m.logger.Warn("Failed to unregister pool gauges", zap.Error(err))
	}
	m.registration = nil
}

// RecordQuery counts one query and its latency
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.slowQueryThresh {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

const queryMetricsStartKey contextKey = "db_metrics_start_time"

// Register installs the query timing callbacks on db
func (m *DBMetrics) Register(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, queryMetricsStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			op := operation
			if op == "" {
				op = detectOperation(tx.Statement.SQL.String())
			}
			m.afterQuery(tx, op)
		}
	}

	cb := db.Callback()
	steps := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("db_metrics:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("db_metrics:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("db_metrics:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register("db_metrics:before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("db_metrics:after_create", after("INSERT")) },
		func() error { return cb.Query().After("gorm:query").Register("db_metrics:after_query", after("SELECT")) },
		func() error { return cb.Update().After("gorm:update").Register("db_metrics:after_update", after("UPDATE")) },
		func() error { return cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", after("DELETE")) },
		func() error { return cb.Row().After("gorm:row").Register("db_metrics:after_row", after("")) },
		func() error { return cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", after("")) },
	}
	for _, register := range steps {
		if err := register(); err != nil {
			return err
		}
	}
	m.logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", m.slowQueryThresh))
	return nil
}

func (m *DBMetrics) afterQuery(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var elapsed time.Duration
	if start, ok := ctx.Value(queryMetricsStartKey).(time.Time); ok {
		elapsed = time.Since(start)
	}
	m.RecordQuery(ctx, operation, tx.Statement.Table, elapsed)
}

// detectOperation reads the statement verb of a raw query
func detectOperation(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "PRAGMA", "CREATE", "DROP", "ALTER"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}
