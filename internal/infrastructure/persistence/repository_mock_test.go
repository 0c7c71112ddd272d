package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPartRepository creates a GormPartRepository with a mocked SQL connection
func newMockPartRepository(t *testing.T) (*GormPartRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPartRepository(gormDB, zap.NewNop()), mock, mockDB
}

var partColumns = []string{
	"id", "created_at", "updated_at", "version", "name", "part_number", "category_id",
	"purchase_price", "selling_price", "mrp", "quantity", "min_stock_level", "supplier_id", "status",
}

func TestGormRepository_Create_NoRowsAffected(t *testing.T) {
	repo, mock, mockDB := newMockPartRepository(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "parts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	part, err := catalog.NewPart(catalog.PartDetails{Name: "Horn", PartNumber: "HN-1"})
	require.NoError(t, err)

	created, err := repo.Create(context.Background(), part)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, shared.ErrNotCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_Update_NoRowsAffected(t *testing.T) {
	repo, mock, mockDB := newMockPartRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(partColumns).
		AddRow(id, stamp, stamp, 1, "Horn", "HN-1", nil, "10.00", "12.00", "15.00", 4, 1, nil, "active")

	mock.ExpectQuery(`SELECT \* FROM "parts" WHERE id = \$1 LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "parts" SET .* WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.Update(context.Background(), id, func(p *catalog.Part) error {
		return p.AdjustStock(1)
	})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, shared.ErrUpdateFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_Update_WriteSet(t *testing.T) {
	repo, mock, mockDB := newMockPartRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(partColumns).
			AddRow(id, stamp, stamp, 1, "Horn", "HN-1", nil, "10.00", "12.00", "15.00", 4, 1, nil, "active")
	}

	mock.ExpectQuery(`SELECT \* FROM "parts"`).WillReturnRows(row())
	// id and created_at are never part of the SET list
	mock.ExpectExec(`UPDATE "parts" SET "updated_at"=\$1,"version"=\$2,"name"=\$3,.*"status"=\$\d+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "parts"`).WillReturnRows(row())

	_, err := repo.Update(context.Background(), id, func(p *catalog.Part) error { return nil })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_StorageErrors(t *testing.T) {
	storageErr := errors.New("connection reset")

	t.Run("find by id wraps the driver error", func(t *testing.T) {
		repo, mock, mockDB := newMockPartRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "parts"`).WillReturnError(storageErr)

		found, err := repo.FindByID(context.Background(), uuid.New())
		assert.Nil(t, found)
		assert.ErrorIs(t, err, storageErr)
		assert.Contains(t, err.Error(), "parts find by id")
	})

	t.Run("count wraps the driver error", func(t *testing.T) {
		repo, mock, mockDB := newMockPartRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "parts" WHERE "status" = \$1`).
			WithArgs("inactive").
			WillReturnError(storageErr)

		_, err := repo.Count(context.Background(), map[string]any{"status": "inactive"})
		assert.ErrorIs(t, err, storageErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soft delete surfaces storage failures", func(t *testing.T) {
		repo, mock, mockDB := newMockPartRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "parts"`).WillReturnError(storageErr)

		ok, err := repo.SoftDelete(context.Background(), uuid.New())
		assert.False(t, ok)
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestGormRepository_Delete_Statement(t *testing.T) {
	repo, mock, mockDB := newMockPartRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM "parts" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
