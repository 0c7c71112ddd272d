package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of shared.Repository[T]. Entity
// repository mocks embed it and add their own finders.
type MockRepository[T any] struct {
	mock.Mock
}

func (m *MockRepository[T]) one(args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) many(args mock.Arguments) ([]*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*T), args.Error(1)
}

func (m *MockRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockRepository[T]) FindAll(ctx context.Context, query shared.Query) ([]*T, error) {
	return m.many(m.Called(ctx, query))
}

func (m *MockRepository[T]) FindFirst(ctx context.Context, where map[string]any) (*T, error) {
	return m.one(m.Called(ctx, where))
}

func (m *MockRepository[T]) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*T, error) {
	return m.many(m.Called(ctx, ids))
}

func (m *MockRepository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	args := m.Called(ctx, where)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository[T]) Search(ctx context.Context, term string, fields []string) ([]*T, error) {
	return m.many(m.Called(ctx, term, fields))
}

// Create returns the configured entity, or the argument itself when the
// expectation returns nil without error
func (m *MockRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	args := m.Called(ctx, entity)
	if args.Get(0) == nil && args.Error(1) == nil {
		return entity, nil
	}
	return m.one(args)
}

// Update runs apply against the entity configured as the first return value
// so mutations and their validation errors behave as with a real store
func (m *MockRepository[T]) Update(ctx context.Context, id uuid.UUID, apply func(*T) error) (*T, error) {
	args := m.Called(ctx, id, apply)
	entity, err := m.one(args)
	if err != nil || entity == nil {
		return entity, err
	}
	if err := apply(entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (m *MockRepository[T]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) Restore(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) CreateBatch(ctx context.Context, entities []*T) ([]*T, error) {
	args := m.Called(ctx, entities)
	if args.Get(0) == nil && args.Error(1) == nil {
		return entities, nil
	}
	return m.many(args)
}

func (m *MockRepository[T]) UpdateBatch(ctx context.Context, updates []shared.BatchUpdate[T]) ([]*T, error) {
	return m.many(m.Called(ctx, updates))
}

var _ shared.Repository[struct{}] = (*MockRepository[struct{}])(nil)
