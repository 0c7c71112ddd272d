//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// newPostgresDatabase starts a disposable PostgreSQL container and opens a
// migrated Database on it
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shopledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := Open(config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "shopledger_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		AutoMigrate:     true,
		SlowQueryThresh: time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newInvoice(t *testing.T, number string) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(trade.InvoiceDetails{
		CustomerName:  "Ravi Motors",
		InvoiceNumber: number,
		InvoiceDate:   "2024-03-10",
		Items: []trade.InvoiceItem{
			{Description: "Brake pad set", Quantity: 2, UnitPrice: decimal.NewFromInt(450), DiscountPercentage: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestPostgres_InvoiceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newPostgresDatabase(t).DB, zaptest.NewLogger(t))

	t.Run("items survive the JSONB round trip", func(t *testing.T) {
		created, err := repo.Create(ctx, newInvoice(t, "INV-001"))
		require.NoError(t, err)

		found, err := repo.FindByInvoiceNumber(ctx, "INV-001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)
		assert.True(t, found.CreatedAt.Equal(created.CreatedAt))
		require.Len(t, found.Items, 1)
		assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromInt(810)))
		assert.True(t, found.Total.Equal(decimal.NewFromInt(810)))
	})

	t.Run("duplicate number rolls back the batch", func(t *testing.T) {
		_, err := repo.CreateBatch(ctx, []*trade.Invoice{
			newInvoice(t, "INV-002"),
			newInvoice(t, "INV-001"),
		})
		require.Error(t, err)

		missing, err := repo.FindByInvoiceNumber(ctx, "INV-002")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update keeps created_at", func(t *testing.T) {
		inv, err := repo.FindByInvoiceNumber(ctx, "INV-001")
		require.NoError(t, err)

		sent, err := repo.Update(ctx, inv.ID, func(i *trade.Invoice) error { return i.Send() })
		require.NoError(t, err)
		assert.Equal(t, trade.InvoiceStatusSent, sent.Status)
		assert.True(t, sent.CreatedAt.Equal(inv.CreatedAt))
		assert.Equal(t, inv.Version+1, sent.Version)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		found, err := repo.Search(ctx, "RAVI", []string{"customer_name"})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		_, err = repo.SoftDelete(ctx, found[0].ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}
