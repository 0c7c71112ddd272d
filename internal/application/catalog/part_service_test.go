package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockPartRepository is a mock implementation of PartRepository
type MockPartRepository struct {
	testutil.MockRepository[catalog.Part]
}

func (m *MockPartRepository) FindByPartNumber(ctx context.Context, partNumber string) (*catalog.Part, error) {
	args := m.Called(ctx, partNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindLowStock(ctx context.Context) ([]*catalog.Part, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*catalog.Part), args.Error(1)
}

var _ catalog.PartRepository = (*MockPartRepository)(nil)

func newTestPartService(t *testing.T) (*PartService, *MockPartRepository, *testutil.EventRecorder) {
	repo := new(MockPartRepository)
	events := new(testutil.EventRecorder)
	return NewPartService(repo, events, zaptest.NewLogger(t)), repo, events
}

func storedPart(t *testing.T, quantity, minStock int) *catalog.Part {
	t.Helper()
	part, err := catalog.NewPart(catalog.PartDetails{
		Name:          "Brake pad",
		PartNumber:    "BP-1",
		PurchasePrice: decimal.NewFromInt(300),
		SellingPrice:  decimal.NewFromInt(450),
		MRP:           decimal.NewFromInt(500),
		Quantity:      quantity,
		MinStockLevel: minStock,
	})
	require.NoError(t, err)
	part.Stamp(shared.Now())
	return part
}

func TestPartService_Create(t *testing.T) {
	ctx := context.Background()
	req := CreatePartRequest{
		Name:          "  Brake   pad ",
		PartNumber:    "BP-1",
		PurchasePrice: decimal.NewFromInt(300),
		SellingPrice:  decimal.NewFromInt(450),
		MRP:           decimal.NewFromInt(500),
		Quantity:      10,
		MinStockLevel: 2,
	}

	t.Run("stores a validated part", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		repo.On("FindByPartNumber", ctx, "BP-1").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *catalog.Part) bool {
			return p.Name == "Brake pad" && p.IsActive()
		})).Return(nil, nil)

		resp, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Brake pad", resp.Name)
		assert.True(t, resp.Margin.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, []string{"PartChanged"}, events.Types())
		repo.AssertExpectations(t)
	})

	t.Run("validation fails before any I/O", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		bad := req
		bad.SellingPrice = decimal.NewFromInt(600)

		_, err := svc.Create(ctx, bad)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
		repo.AssertNotCalled(t, "FindByPartNumber", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, events.Types())
	})

	t.Run("duplicate part number", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		repo.On("FindByPartNumber", ctx, "BP-1").Return(storedPart(t, 1, 0), nil)

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		storageErr := errors.New("disk full")
		repo.On("FindByPartNumber", ctx, "BP-1").Return(nil, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, storageErr)

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, storageErr)
		assert.Empty(t, events.Types())
	})
}

func TestPartService_CreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("one invalid request rejects the whole batch", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		_, err := svc.CreateBatch(ctx, []CreatePartRequest{
			{Name: "Horn", PartNumber: "HN-1"},
			{Name: "", PartNumber: "X"},
		})
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("stores all parts", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		repo.On("CreateBatch", ctx, mock.Anything).Return(nil, nil)

		resp, err := svc.CreateBatch(ctx, []CreatePartRequest{
			{Name: "Horn", PartNumber: "HN-1"},
			{Name: "Mirror", PartNumber: "MR-1"},
		})
		require.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Len(t, events.Types(), 2)
	})
}

func TestPartService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestPartService(t)
	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, nil)

	_, err := svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPartService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the repository", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		parts := []*catalog.Part{storedPart(t, 5, 1)}
		repo.On("FindAll", ctx, mock.MatchedBy(func(q shared.Query) bool {
			return q.Limit == 10 && q.Offset == 10 && q.OrderBy == "name" && q.Where["status"] == "active"
		})).Return(parts, nil)
		repo.On("Count", ctx, map[string]any{"status": "active"}).Return(int64(11), nil)

		resp, total, err := svc.List(ctx, PartListFilter{Status: "active", Page: 2, PageSize: 10, OrderBy: "name"})
		require.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, int64(11), total)
	})

	t.Run("search filters status in memory", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		active := storedPart(t, 5, 1)
		inactive := storedPart(t, 5, 1)
		inactive.Deactivate()
		repo.On("Search", ctx, "brake", []string{"name", "part_number"}).Return([]*catalog.Part{active, inactive}, nil)

		resp, total, err := svc.List(ctx, PartListFilter{Search: "brake", Status: "inactive"})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, inactive.ID, resp[0].ID)
		assert.Equal(t, int64(1), total)
		repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})
}

func TestPartService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges set fields only", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		part := storedPart(t, 5, 1)
		repo.On("Update", ctx, part.ID, mock.Anything).Return(part, nil)

		qty := 8
		resp, err := svc.Update(ctx, part.ID, UpdatePartRequest{Quantity: &qty})
		require.NoError(t, err)
		assert.Equal(t, 8, resp.Quantity)
		assert.Equal(t, "Brake pad", resp.Name)
		assert.Equal(t, []string{"PartChanged"}, events.Types())
	})

	t.Run("invalid merge is rejected", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		part := storedPart(t, 5, 1)
		repo.On("Update", ctx, part.ID, mock.Anything).Return(part, nil)

		price := decimal.NewFromInt(-1)
		_, err := svc.Update(ctx, part.ID, UpdatePartRequest{PurchasePrice: &price})
		assert.True(t, shared.IsValidationError(err))
		assert.Empty(t, events.Types())
	})

	t.Run("part number taken by another part", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		other := storedPart(t, 1, 0)
		repo.On("FindByPartNumber", ctx, "BP-1").Return(other, nil)

		number := "BP-1"
		_, err := svc.Update(ctx, uuid.New(), UpdatePartRequest{PartNumber: &number})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("missing part", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		id := uuid.New()
		repo.On("Update", ctx, id, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, id, UpdatePartRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPartService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestPartService(t)
	part := storedPart(t, 3, 2)
	repo.On("Update", ctx, part.ID, mock.Anything).Return(part, nil)

	resp, err := svc.AdjustStock(ctx, part.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Quantity)
	assert.True(t, resp.LowStock)

	_, err = svc.AdjustStock(ctx, part.ID, -5)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestPartService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivate returns the stored part", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		part := storedPart(t, 3, 2)
		part.Deactivate()
		repo.On("SoftDelete", ctx, part.ID).Return(true, nil)
		repo.On("FindByID", ctx, part.ID).Return(part, nil)

		resp, err := svc.Deactivate(ctx, part.ID)
		require.NoError(t, err)
		assert.Equal(t, "inactive", resp.Status)
	})

	t.Run("restore of a missing part", func(t *testing.T) {
		svc, repo, _ := newTestPartService(t)
		id := uuid.New()
		repo.On("Restore", ctx, id).Return(false, nil)

		_, err := svc.Restore(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete reports missing rows", func(t *testing.T) {
		svc, repo, events := newTestPartService(t)
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(false, nil)

		assert.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
		assert.Empty(t, events.Types())
	})
}
