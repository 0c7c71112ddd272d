package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrSnapshotUnsupported is returned by Snapshot for drivers without VACUUM INTO.
var ErrSnapshotUnsupported = shared.NewDomainError("BACKUP_UNAVAILABLE", "Snapshot is only supported for sqlite")

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	cfg    config.DatabaseConfig
	logger *zap.Logger
}

// Open connects to the configured driver, applies pool settings and verifies
// the connection. Migrations run when cfg.AutoMigrate is set.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel), cfg.SlowQueryThresh),
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == config.DriverPostgres,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{DB: db, cfg: cfg, logger: log}
	if cfg.AutoMigrate {
		if err := d.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	log.Info("Database connected",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return d, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLiteDSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.PostgresDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Driver returns the configured driver name
func (d *Database) Driver() string {
	return d.cfg.Driver
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
}

// Transaction executes fn within a database transaction bound to ctx.
// Any error returned by fn rolls the transaction back.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// Migrate applies all pending embedded migrations.
func (d *Database) Migrate() error {
	m, pooled, err := d.migrator()
	if err != nil {
		return err
	}
	if pooled {
		// The migrator's Close would close the pooled handle an in-memory
		// database lives on, so it is left open.
		return m.Up()
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			d.logger.Warn("Failed to close migrator", zap.Error(cerr))
		}
	}()
	return m.Up()
}

// migrator opens a dedicated handle for golang-migrate. The sqlite driver
// closes its handle on Close, and the postgres driver pins a connection for
// its lifetime, so neither may share the application pool.
func (d *Database) migrator() (*migration.Migrator, bool, error) {
	switch d.cfg.Driver {
	case config.DriverSQLite:
		if d.cfg.Path == ":memory:" {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return nil, false, fmt.Errorf("failed to get underlying sql.DB: %w", err)
			}
			m, err := migration.New(sqlDB, migration.DriverSQLite, d.logger)
			return m, true, err
		}
		sqlDB, err := sql.Open("sqlite3", d.cfg.SQLiteDSN())
		if err != nil {
			return nil, false, fmt.Errorf("failed to open migration handle: %w", err)
		}
		m, err := migration.New(sqlDB, migration.DriverSQLite, d.logger)
		if err != nil {
			_ = sqlDB.Close()
		}
		return m, false, err
	case config.DriverPostgres:
		sqlDB, err := sql.Open("postgres", d.cfg.PostgresDSN())
		if err != nil {
			return nil, false, fmt.Errorf("failed to open migration handle: %w", err)
		}
		m, err := migration.New(sqlDB, migration.DriverPostgres, d.logger)
		if err != nil {
			_ = sqlDB.Close()
		}
		return m, false, err
	default:
		return nil, false, fmt.Errorf("unsupported database driver %q", d.cfg.Driver)
	}
}

// Snapshot writes a consistent copy of a sqlite database to path.
// The target file must not exist.
func (d *Database) Snapshot(ctx context.Context, path string) error {
	if d.cfg.Driver != config.DriverSQLite {
		return ErrSnapshotUnsupported
	}
	if err := d.DB.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}
