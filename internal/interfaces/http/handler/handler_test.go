package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/application/backup"
	catalogapp "github.com/shopledger/backend/internal/application/catalog"
	financeapp "github.com/shopledger/backend/internal/application/finance"
	partnerapp "github.com/shopledger/backend/internal/application/partner"
	reportapp "github.com/shopledger/backend/internal/application/report"
	tradeapp "github.com/shopledger/backend/internal/application/trade"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

type stubProbe struct {
	err error
}

func (p stubProbe) Ping(ctx context.Context) error { return p.err }

func (p stubProbe) Stats() (persistence.ConnectionStats, error) {
	return persistence.ConnectionStats{MaxOpenConnections: 1}, nil
}

type stubBackups struct {
	result *backup.Result
	err    error
}

func (b stubBackups) Run(ctx context.Context) (*backup.Result, error) { return b.result, b.err }

// testAPI serves every handler over a fresh sqlite file
type testAPI struct {
	engine *gin.Engine
}

func newTestAPI(t *testing.T, probe DatabaseProbe, backups BackupRunner) *testAPI {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := persistence.Open(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "shop.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	parts := persistence.NewGormPartRepository(db.DB, log)
	suppliers := persistence.NewGormSupplierRepository(db.DB, log)
	transactions := persistence.NewGormTransactionRepository(db.DB, log)
	invoices := persistence.NewGormInvoiceRepository(db.DB, log)
	purchases := persistence.NewGormStockPurchaseRepository(db.DB, log)

	if probe == nil {
		probe = db
	}
	ledger := reportapp.NewLedgerService(reportapp.Sources{
		Invoices:       invoices,
		StockPurchases: purchases,
		Transactions:   transactions,
		Parts:          parts,
	}, nil, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	for _, r := range []interface{ RegisterRoutes(*gin.RouterGroup) }{
		NewPartHandler(catalogapp.NewPartService(parts, nil, log)),
		NewSupplierHandler(partnerapp.NewSupplierService(suppliers, log)),
		NewTransactionHandler(financeapp.NewTransactionService(transactions, nil, log)),
		NewInvoiceHandler(tradeapp.NewInvoiceService(invoices, nil, log)),
		NewStockPurchaseHandler(tradeapp.NewStockPurchaseService(purchases, nil, log)),
		NewReportHandler(ledger),
		NewSystemHandler("shopledger", probe, backups),
	} {
		r.RegisterRoutes(api)
	}
	return &testAPI{engine: engine}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

var errBackupOffline = shared.NewDomainError(shared.ErrBackupUnavailable.Code, "Backup storage is not configured")

