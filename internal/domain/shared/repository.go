package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the generic persistence contract shared by every aggregate.
// FindByID and FindFirst return nil without error when nothing matches.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, query Query) ([]*T, error)
	FindFirst(ctx context.Context, where map[string]any) (*T, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*T, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context, where map[string]any) (int64, error)
	Search(ctx context.Context, term string, fields []string) ([]*T, error)

	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id uuid.UUID, apply func(*T) error) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	Restore(ctx context.Context, id uuid.UUID) (bool, error)

	CreateBatch(ctx context.Context, entities []*T) ([]*T, error)
	UpdateBatch(ctx context.Context, updates []BatchUpdate[T]) ([]*T, error)
}

// BatchUpdate pairs a record id with the mutation to apply to it
type BatchUpdate[T any] struct {
	ID    uuid.UUID
	Apply func(*T) error
}

// Query represents find-all options. Where holds exact-match column filters.
type Query struct {
	Where    map[string]any
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}

// DefaultQuery returns a query ordered newest first
func DefaultQuery() Query {
	return Query{
		Where:    make(map[string]any),
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// SoftDeletable is implemented by aggregates with an active/inactive lifecycle
type SoftDeletable interface {
	Deactivate()
	Activate()
	IsActive() bool
}

// DefaultPageSize is used when a list request does not set a page size
const DefaultPageSize = 20

// Paged returns a copy of q limited to the 1-based page of size pageSize
func (q Query) Paged(page, pageSize int) Query {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q.Limit = pageSize
	q.Offset = (page - 1) * pageSize
	return q
}

// PageSlice applies the same paging to an in-memory result
func PageSlice[T any](items []T, page, pageSize int) []T {
	q := Query{}.Paged(page, pageSize)
	if q.Offset >= len(items) {
		return []T{}
	}
	end := min(q.Offset+q.Limit, len(items))
	return items[q.Offset:end]
}
