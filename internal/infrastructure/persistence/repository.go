package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// GormRepository implements shared.Repository[E] for an aggregate E persisted
// through the GORM model M. Concrete repositories only bind the model mapping
// and the column whitelist.
type GormRepository[E any, P interface {
	*E
	shared.AggregateRoot
}, M any] struct {
	db         *gorm.DB
	table      string
	columns    map[string]bool
	toDomain   func(*M) *E
	fromDomain func(*E) *M
	logger     *zap.Logger
}

// NewGormRepository creates a generic repository. columns whitelists the
// column names accepted in where maps, ordering and search.
func NewGormRepository[E any, P interface {
	*E
	shared.AggregateRoot
}, M any](
	db *gorm.DB,
	columns map[string]bool,
	toDomain func(*M) *E,
	fromDomain func(*E) *M,
	logger *zap.Logger,
) *GormRepository[E, P, M] {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := ""
	if t, ok := any(new(M)).(schema.Tabler); ok {
		table = t.TableName()
	}
	return &GormRepository[E, P, M]{
		db:         db,
		table:      table,
		columns:    columns,
		toDomain:   toDomain,
		fromDomain: fromDomain,
		logger:     logger.With(zap.String("table", table)),
	}
}

// withDB returns a copy of the repository bound to tx
func (r *GormRepository[E, P, M]) withDB(tx *gorm.DB) *GormRepository[E, P, M] {
	clone := *r
	clone.db = tx
	return &clone
}

func (r *GormRepository[E, P, M]) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(M))
}

// fail logs a storage error and wraps it with the table and operation
func (r *GormRepository[E, P, M]) fail(op string, err error, fields ...zap.Field) error {
	r.logger.Error("storage operation failed",
		append(fields, zap.String("operation", op), zap.Error(err))...)
	return fmt.Errorf("%s %s: %w", r.table, op, err)
}

// where applies exact-match filters in a stable column order
func (r *GormRepository[E, P, M]) where(tx *gorm.DB, filters map[string]any) (*gorm.DB, error) {
	keys := make([]string, 0, len(filters))
	for col := range filters {
		if !r.columns[col] {
			return nil, shared.NewDomainError(shared.ErrInvalidColumn.Code,
				fmt.Sprintf("Unknown column %q for %s", col, r.table))
		}
		keys = append(keys, col)
	}
	sort.Strings(keys)
	for _, col := range keys {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: filters[col]})
	}
	return tx, nil
}

func (r *GormRepository[E, P, M]) order(tx *gorm.DB, field, dir string) *gorm.DB {
	return tx.Order(clause.OrderByColumn{
		Column: clause.Column{Name: ValidateSortField(field, r.columns, "created_at")},
		Desc:   ValidateSortOrder(dir) == "DESC",
	})
}

func (r *GormRepository[E, P, M]) mapRows(rows []M) []*E {
	out := make([]*E, 0, len(rows))
	for i := range rows {
		out = append(out, r.toDomain(&rows[i]))
	}
	return out
}

// FindByID returns the entity with id, or nil when no row matches
func (r *GormRepository[E, P, M]) FindByID(ctx context.Context, id uuid.UUID) (*E, error) {
	var row M
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("find by id", err, zap.String("id", id.String()))
	}
	return r.toDomain(&row), nil
}

// FindAll returns the rows matching q.Where ordered and paginated as requested
func (r *GormRepository[E, P, M]) FindAll(ctx context.Context, q shared.Query) ([]*E, error) {
	tx, err := r.where(r.query(ctx), q.Where)
	if err != nil {
		return nil, err
	}
	tx = r.order(tx, q.OrderBy, q.OrderDir)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []M
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.fail("find all", err)
	}
	return r.mapRows(rows), nil
}

// FindFirst returns the newest row matching where, or nil
func (r *GormRepository[E, P, M]) FindFirst(ctx context.Context, where map[string]any) (*E, error) {
	q := shared.DefaultQuery()
	q.Where = where
	q.Limit = 1
	found, err := r.FindAll(ctx, q)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// FindByIDs returns the rows whose id is in ids, newest first
func (r *GormRepository[E, P, M]) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*E, error) {
	if len(ids) == 0 {
		return []*E{}, nil
	}
	var rows []M
	err := r.order(r.query(ctx).Where("id IN ?", ids), "created_at", "desc").Find(&rows).Error
	if err != nil {
		return nil, r.fail("find by ids", err, zap.Int("count", len(ids)))
	}
	return r.mapRows(rows), nil
}

// Exists reports whether a row with id is stored
func (r *GormRepository[E, P, M]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.query(ctx).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, r.fail("exists", err, zap.String("id", id.String()))
	}
	return count > 0, nil
}

// Count returns the number of rows matching where
func (r *GormRepository[E, P, M]) Count(ctx context.Context, where map[string]any) (int64, error) {
	tx, err := r.where(r.query(ctx), where)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, r.fail("count", err)
	}
	return count, nil
}

// Search matches term case-insensitively as a substring of any of fields
func (r *GormRepository[E, P, M]) Search(ctx context.Context, term string, fields []string) ([]*E, error) {
	if len(fields) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidColumn.Code, "At least one search field is required")
	}
	pattern := "%" + strings.ToLower(term) + "%"
	exprs := make([]clause.Expression, 0, len(fields))
	for _, field := range fields {
		if !r.columns[field] {
			return nil, shared.NewDomainError(shared.ErrInvalidColumn.Code,
				fmt.Sprintf("Unknown column %q for %s", field, r.table))
		}
		exprs = append(exprs, clause.Expr{
			SQL:  "LOWER(?) LIKE ?",
			Vars: []any{clause.Column{Name: field}, pattern},
		})
	}

	var rows []M
	tx := r.order(r.query(ctx).Where(clause.Or(exprs...)), "created_at", "desc")
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.fail("search", err, zap.Strings("fields", fields))
	}
	return r.mapRows(rows), nil
}

// Create inserts a copy of entity stamped with a fresh identity and returns
// that copy. The caller's entity is left untouched, so a failed or rolled
// back insert never leaves it holding an id that was not stored.
func (r *GormRepository[E, P, M]) Create(ctx context.Context, entity *E) (*E, error) {
	stamped := *entity
	entity = &stamped
	P(entity).Envelope().Stamp(shared.Now())
	row := r.fromDomain(entity)

	result := r.db.WithContext(ctx).Create(row)
	if result.Error != nil {
		return nil, r.fail("create", result.Error, zap.String("id", P(entity).GetID().String()))
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("insert affected no rows", zap.String("id", P(entity).GetID().String()))
		return nil, shared.ErrNotCreated
	}
	return entity, nil
}

// Update loads the entity, applies the mutation, bumps updated_at and version
// and writes every column except id and created_at. The mutation cannot
// rewrite id, created_at or version. The stored row is read
// back and returned.
func (r *GormRepository[E, P, M]) Update(ctx context.Context, id uuid.UUID, apply func(*E) error) (*E, error) {
	entity, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, shared.ErrNotFound
	}

	env := P(entity).Envelope()
	createdAt, version := env.CreatedAt, env.Version
	if err := apply(entity); err != nil {
		return nil, err
	}
	env = P(entity).Envelope()
	env.ID = id
	env.CreatedAt = createdAt
	env.Version = version
	env.Touch(shared.Now())

	result := r.query(ctx).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(r.fromDomain(entity))
	if result.Error != nil {
		return nil, r.fail("update", result.Error, zap.String("id", id.String()))
	}
	if result.RowsAffected == 0 {
		r.logger.Warn("update affected no rows", zap.String("id", id.String()))
		return nil, shared.ErrUpdateFailed
	}

	fresh, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, shared.ErrNotFound
	}
	return fresh, nil
}

// Delete removes the row permanently and reports whether one was removed
func (r *GormRepository[E, P, M]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		return false, r.fail("delete", result.Error, zap.String("id", id.String()))
	}
	return result.RowsAffected > 0, nil
}

// SoftDelete marks the entity inactive. A missing id reports false.
func (r *GormRepository[E, P, M]) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.setActive(ctx, id, false)
}

// Restore marks the entity active again. A missing id reports false.
func (r *GormRepository[E, P, M]) Restore(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.setActive(ctx, id, true)
}

func (r *GormRepository[E, P, M]) setActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	var probe E
	if _, ok := any(P(&probe)).(shared.SoftDeletable); !ok {
		return false, shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("%s records have no active/inactive lifecycle", r.table))
	}

	_, err := r.Update(ctx, id, func(e *E) error {
		lifecycle := any(P(e)).(shared.SoftDeletable)
		if active {
			lifecycle.Activate()
		} else {
			lifecycle.Deactivate()
		}
		return nil
	})
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateBatch inserts entities in order inside one transaction. Any failure
// rolls back every insert of the batch. Like Create, the stamped copies are
// returned and the input slice is not modified.
func (r *GormRepository[E, P, M]) CreateBatch(ctx context.Context, entities []*E) ([]*E, error) {
	created := make([]*E, 0, len(entities))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.withDB(tx)
		for _, entity := range entities {
			saved, err := txRepo.Create(ctx, entity)
			if err != nil {
				return err
			}
			created = append(created, saved)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("batch create rolled back", zap.Int("size", len(entities)), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// UpdateBatch applies updates in order inside one transaction. Any failure,
// including a missing id, rolls back every update of the batch.
func (r *GormRepository[E, P, M]) UpdateBatch(ctx context.Context, updates []shared.BatchUpdate[E]) ([]*E, error) {
	updated := make([]*E, 0, len(updates))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.withDB(tx)
		for _, u := range updates {
			saved, err := txRepo.Update(ctx, u.ID, u.Apply)
			if err != nil {
				return err
			}
			updated = append(updated, saved)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("batch update rolled back", zap.Int("size", len(updates)), zap.Error(err))
		return nil, err
	}
	return updated, nil
}
