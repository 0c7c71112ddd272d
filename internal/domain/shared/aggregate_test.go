package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBaseAggregateRoot_Stamp(t *testing.T) {
	var agg BaseAggregateRoot
	now := time.Date(2026, 10, 19, 8, 30, 0, 123456789, time.UTC)

	agg.Stamp(now)

	assert.NotEqual(t, uuid.Nil, agg.ID)
	assert.Equal(t, 1, agg.Version)
	assert.Equal(t, agg.CreatedAt, agg.UpdatedAt)
	assert.Equal(t, 123456000, agg.CreatedAt.Nanosecond())
}

func TestBaseAggregateRoot_Touch(t *testing.T) {
	t.Run("moves updated_at forward and bumps version", func(t *testing.T) {
		var agg BaseAggregateRoot
		created := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		agg.Stamp(created)

		agg.Touch(created.Add(time.Minute))

		assert.Equal(t, 2, agg.Version)
		assert.Equal(t, created, agg.CreatedAt)
		assert.Equal(t, created.Add(time.Minute), agg.UpdatedAt)
	})

	t.Run("never goes backwards when the clock stalls", func(t *testing.T) {
		var agg BaseAggregateRoot
		created := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
		agg.Stamp(created)

		agg.Touch(created)
		assert.True(t, agg.UpdatedAt.After(created))

		previous := agg.UpdatedAt
		agg.Touch(created.Add(-time.Hour))
		assert.True(t, agg.UpdatedAt.After(previous))
		assert.Equal(t, 3, agg.Version)
	})
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("update parts: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, errors.Is(NewDomainError("NOT_FOUND", "Part not found"), ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrUpdateFailed))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(NewDomainError("INVALID_PHONE", "bad phone")))
	assert.True(t, IsValidationError(fmt.Errorf("wrap: %w", NewDomainError("REQUIRED_NAME", "name"))))
	assert.False(t, IsValidationError(ErrInvalidState))
	assert.False(t, IsValidationError(ErrNotFound))
	assert.False(t, IsValidationError(errors.New("disk full")))
}

func TestLifecycle(t *testing.T) {
	l := Lifecycle{Status: StatusActive}
	l.Deactivate()
	assert.False(t, l.IsActive())
	l.Deactivate()
	assert.Equal(t, StatusInactive, l.Status)
	l.Activate()
	assert.True(t, l.IsActive())
	assert.False(t, ActiveStatus("archived").IsValid())
}
