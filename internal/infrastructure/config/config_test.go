package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearShopEnv unsets every SHOP_ variable for the duration of the test
func clearShopEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "SHOP_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearShopEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shopledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "shopledger.db", cfg.Database.Path)
		assert.Equal(t, 1, cfg.Database.MaxOpenConns)
		assert.Equal(t, 1, cfg.Database.MaxIdleConns)
		assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThresh)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Redis.ReportTTL)
		assert.Equal(t, "backups", cfg.Storage.BackupPrefix)
		assert.Equal(t, "shopledger", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Telemetry.MetricsEnabled)
		assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsInterval)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_APP_NAME", "test-app")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_DRIVER", "postgres")
		t.Setenv("SHOP_DATABASE_HOST", "testdb.local")
		t.Setenv("SHOP_DATABASE_PORT", "5433")
		t.Setenv("SHOP_DATABASE_USER", "testuser")
		t.Setenv("SHOP_DATABASE_PASSWORD", "testpass")
		t.Setenv("SHOP_DATABASE_DBNAME", "testdb")
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SHOP_REDIS_ENABLED", "true")
		t.Setenv("SHOP_REDIS_REPORT_TTL", "30s")
		t.Setenv("SHOP_TELEMETRY_METRICS_ENABLED", "true")
		t.Setenv("SHOP_TELEMETRY_METRICS_INTERVAL", "15s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Redis.ReportTTL)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
		assert.True(t, cfg.Telemetry.MetricsEnabled)
		assert.Equal(t, 15*time.Second, cfg.Telemetry.MetricsInterval)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects pooled sqlite", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "4")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be 1 for the sqlite driver")
	})

	t.Run("requires bucket when storage is enabled", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("rejects invalid sampling ratio", func(t *testing.T) {
		clearShopEnv(t)
		t.Setenv("SHOP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("sqlite file enables WAL and foreign keys", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: "/var/lib/shop.db", BusyTimeout: 5000}
		dsn := cfg.DSN()
		assert.True(t, strings.HasPrefix(dsn, "/var/lib/shop.db?"))
		assert.Contains(t, dsn, "_foreign_keys=on")
		assert.Contains(t, dsn, "_journal_mode=WAL")
		assert.Contains(t, dsn, "_busy_timeout=5000")
	})

	t.Run("in-memory sqlite skips WAL", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
		assert.NotContains(t, cfg.DSN(), "_journal_mode")
	})

	t.Run("postgres escapes credentials", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "db",
			Port:     5432,
			User:     "shop",
			Password: "p@ss:word",
			DBName:   "ledger",
			SSLMode:  "disable",
		}
		assert.Equal(t, "postgres://shop:p%40ss%3Aword@db:5432/ledger?sslmode=disable", cfg.DSN())
	})
}
