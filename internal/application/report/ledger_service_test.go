package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/finance"
	"github.com/shopledger/backend/internal/domain/report"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/cache"
	"github.com/shopledger/backend/internal/infrastructure/event"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopledger/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap/zaptest"
)

type mockInvoiceRepository struct {
	testutil.MockRepository[trade.Invoice]
}

func (m *mockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, number string) (*trade.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Invoice), args.Error(1)
}

type mockPartRepository struct {
	testutil.MockRepository[catalog.Part]
}

func (m *mockPartRepository) FindByPartNumber(ctx context.Context, partNumber string) (*catalog.Part, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *mockPartRepository) FindLowStock(ctx context.Context) ([]*catalog.Part, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*catalog.Part), args.Error(1)
}

type fixture struct {
	invoices     *mockInvoiceRepository
	purchases    *testutil.MockRepository[trade.StockPurchase]
	transactions *testutil.MockRepository[finance.Transaction]
	parts        *mockPartRepository
}

var testNow = time.Date(2024, 6, 20, 10, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	return &fixture{
		invoices:     new(mockInvoiceRepository),
		purchases:    new(testutil.MockRepository[trade.StockPurchase]),
		transactions: new(testutil.MockRepository[finance.Transaction]),
		parts:        new(mockPartRepository),
	}
}

func (f *fixture) service(t *testing.T, opts ...LedgerServiceOption) *LedgerService {
	logger := zaptest.NewLogger(t)
	ledger := report.NewLedger(logger, report.WithClock(testutil.FixedClock(testNow)))
	return NewLedgerService(Sources{
		Invoices:       f.invoices,
		StockPurchases: f.purchases,
		Transactions:   f.transactions,
		Parts:          f.parts,
	}, ledger, logger, opts...)
}

func (f *fixture) expectSources(invoices []*trade.Invoice, purchases []*trade.StockPurchase, transactions []*finance.Transaction) {
	f.invoices.On("FindAll", mock.Anything, shared.DefaultQuery()).Return(invoices, nil)
	f.purchases.On("FindAll", mock.Anything, shared.DefaultQuery()).Return(purchases, nil)
	f.transactions.On("FindAll", mock.Anything, shared.DefaultQuery()).Return(transactions, nil)
}

func paidInvoice(t *testing.T, number string, amount int64, date string) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(trade.InvoiceDetails{
		CustomerName:  "Ravi Kumar",
		InvoiceNumber: number,
		InvoiceDate:   date,
		Items:         []trade.InvoiceItem{{Description: "Service", Quantity: 1, UnitPrice: decimal.NewFromInt(amount)}},
	})
	require.NoError(t, err)
	inv.Stamp(testNow)
	require.NoError(t, inv.MarkPaid("cash", date))
	return inv
}

func sentInvoice(t *testing.T, number string, amount int64, date string) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(trade.InvoiceDetails{
		CustomerName:  "Anita Rao",
		InvoiceNumber: number,
		InvoiceDate:   date,
		Items:         []trade.InvoiceItem{{Description: "Service", Quantity: 1, UnitPrice: decimal.NewFromInt(amount)}},
	})
	require.NoError(t, err)
	inv.Stamp(testNow)
	require.NoError(t, inv.Send())
	return inv
}

func receivedPurchase(t *testing.T, amount int64, date string) *trade.StockPurchase {
	t.Helper()
	sp, err := trade.NewStockPurchase(trade.StockPurchaseDetails{
		SupplierName: "Acme Spares",
		PurchaseDate: date,
		Items:        []trade.StockPurchaseItem{{Name: "Brake pad", Quantity: 1, PurchasePrice: decimal.NewFromInt(amount)}},
	})
	require.NoError(t, err)
	sp.Stamp(testNow)
	require.NoError(t, sp.Receive())
	return sp
}

func completedExpense(t *testing.T, amount int64, date string) *finance.Transaction {
	t.Helper()
	tx, err := finance.NewTransaction(finance.TransactionDetails{
		Description:     "Shop rent",
		Amount:          decimal.NewFromInt(amount),
		Type:            finance.TransactionTypeExpense,
		TransactionDate: date,
	})
	require.NoError(t, err)
	tx.Stamp(testNow)
	require.NoError(t, tx.Complete(date))
	return tx
}

func TestLedgerService_Ledger(t *testing.T) {
	ctx := context.Background()

	t.Run("combines sources and computes stats over every row", func(t *testing.T) {
		f := newFixture()
		f.expectSources(
			[]*trade.Invoice{
				paidInvoice(t, "INV-1", 1000, "2024-06-10"),
				sentInvoice(t, "INV-2", 2000, "2024-05-01"),
			},
			[]*trade.StockPurchase{receivedPurchase(t, 300, "2024-06-12")},
			[]*finance.Transaction{completedExpense(t, 200, "2024-06-15")},
		)
		svc := f.service(t)

		resp, err := svc.Ledger(ctx, LedgerQuery{Type: "expense"})
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Total)
		for _, row := range resp.Transactions {
			assert.Equal(t, report.EntryTypeExpense, row.Type)
		}
		assert.Equal(t, "2024-06-15", resp.Transactions[0].Date)
		assert.True(t, resp.Stats.TotalIncome.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.Stats.TotalExpenses.Equal(decimal.NewFromInt(500)))
		assert.True(t, resp.Stats.NetFlow.Equal(decimal.NewFromInt(500)))
		assert.True(t, resp.Stats.TotalReceivables.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("overdue filter and search", func(t *testing.T) {
		f := newFixture()
		f.expectSources(
			[]*trade.Invoice{
				sentInvoice(t, "INV-2", 2000, "2024-05-01"),
				sentInvoice(t, "INV-3", 800, "2024-06-18"),
			},
			nil, nil,
		)
		svc := f.service(t)

		resp, err := svc.Ledger(ctx, LedgerQuery{Status: "Overdue", Search: "anita"})
		require.NoError(t, err)
		require.Len(t, resp.Transactions, 1)
		assert.Equal(t, "Invoice #INV-2 - Anita Rao", resp.Transactions[0].Description)
	})

	t.Run("a failing source fails the report", func(t *testing.T) {
		f := newFixture()
		loadErr := errors.New("database is locked")
		f.invoices.On("FindAll", mock.Anything, mock.Anything).Return(nil, loadErr)
		f.purchases.On("FindAll", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
		f.transactions.On("FindAll", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

		_, err := f.service(t).Ledger(ctx, LedgerQuery{})
		assert.ErrorIs(t, err, loadErr)
	})
}

func TestLedgerService_CashFlow(t *testing.T) {
	f := newFixture()
	f.expectSources(
		[]*trade.Invoice{
			paidInvoice(t, "INV-1", 1000, "2024-06-10"),
			paidInvoice(t, "INV-0", 700, "2024-05-03"),
		},
		nil,
		[]*finance.Transaction{completedExpense(t, 200, "2024-05-15")},
	)

	resp, err := f.service(t).CashFlow(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Months, 2)
	assert.Equal(t, "2024-06", resp.Months[0].Month)
	assert.Equal(t, "2024-05", resp.Months[1].Month)
	assert.True(t, resp.Months[1].Net.Equal(decimal.NewFromInt(500)))
}

func TestLedgerService_Inventory(t *testing.T) {
	f := newFixture()
	part, err := catalog.NewPart(catalog.PartDetails{
		Name:          "Brake pad",
		PartNumber:    "BP-1",
		PurchasePrice: decimal.NewFromInt(300),
		SellingPrice:  decimal.NewFromInt(450),
		Quantity:      4,
		MinStockLevel: 5,
	})
	require.NoError(t, err)
	part.Stamp(testNow)
	f.parts.On("FindAll", mock.Anything, mock.MatchedBy(func(q shared.Query) bool {
		return q.Where["status"] == "active"
	})).Return([]*catalog.Part{part}, nil)

	valuation, err := f.service(t).Inventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, valuation.TotalParts)
	assert.True(t, valuation.CostValue.Equal(decimal.NewFromInt(1200)))
	assert.True(t, valuation.RetailValue.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 1, valuation.LowStockCount)
}

func TestLedgerService_Cache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	reportCache := cache.NewReportCache(client, cache.WithLogger(zaptest.NewLogger(t)))

	f := newFixture()
	f.expectSources([]*trade.Invoice{paidInvoice(t, "INV-1", 1000, "2024-06-10")}, nil, nil)
	svc := f.service(t, WithCache(reportCache))

	bus := event.NewInMemoryEventBus(zaptest.NewLogger(t))
	bus.Subscribe(NewCacheInvalidator(reportCache, zaptest.NewLogger(t)))

	first, err := svc.Ledger(ctx, LedgerQuery{})
	require.NoError(t, err)
	assert.True(t, mr.Exists("ledger:v0:combined:2024-06-20"))

	second, err := svc.Ledger(ctx, LedgerQuery{})
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.True(t, second.Stats.TotalIncome.Equal(first.Stats.TotalIncome))
	f.invoices.AssertNumberOfCalls(t, "FindAll", 1)

	changed := shared.NewRecordChangedEvent("Invoice", first.Transactions[0].SourceID, shared.ChangeUpdated)
	require.NoError(t, bus.Publish(ctx, changed))

	_, err = svc.Ledger(ctx, LedgerQuery{})
	require.NoError(t, err)
	f.invoices.AssertNumberOfCalls(t, "FindAll", 2)
	assert.True(t, mr.Exists("ledger:v1:combined:2024-06-20"))

	t.Run("cache outage falls back to computing", func(t *testing.T) {
		mr.Close()
		resp, err := svc.Ledger(ctx, LedgerQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})
}

func TestLedgerService_CacheMetrics(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	reportCache := cache.NewReportCache(client, cache.WithLogger(zaptest.NewLogger(t)))

	reader := sdkmetric.NewManualReader()
	meter := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t)).Meter("report")

	f := newFixture()
	f.expectSources([]*trade.Invoice{paidInvoice(t, "INV-1", 1000, "2024-06-10")}, nil, nil)
	svc := f.service(t, WithCache(reportCache), WithMetrics(meter))

	for range 2 {
		_, err := svc.Ledger(ctx, LedgerQuery{})
		require.NoError(t, err)
	}
	mr.Close()
	_, err := svc.Ledger(ctx, LedgerQuery{})
	require.NoError(t, err)

	lookups := testutil.FindMetric(t, testutil.CollectMetrics(t, reader), "report_cache_lookups_total")
	combined := telemetry.AttrReportName.String("combined")
	for result, want := range map[string]int64{"miss": 1, "hit": 1, "error": 1} {
		t.Run(result, func(t *testing.T) {
			assert.Equal(t, want, testutil.Int64Value(t, lookups, combined, telemetry.AttrCacheResult.String(result)))
		})
	}
}

func TestCacheInvalidator_EventTypes(t *testing.T) {
	h := NewCacheInvalidator(nil, nil)
	assert.ElementsMatch(t, []string{"InvoiceChanged", "StockPurchaseChanged", "TransactionChanged", "PartChanged"}, h.EventTypes())
}
