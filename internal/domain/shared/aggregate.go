package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all persisted aggregates.
// Envelope exposes the identity/audit fields so the generic repository can
// stamp them without knowing the concrete type.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	Envelope() *BaseAggregateRoot
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	// Version counts writes. It is an audit counter and is not compared
	// against the stored value on update.
	Version int
}

// GetVersion returns the aggregate version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Envelope returns the aggregate's identity and audit fields
func (a *BaseAggregateRoot) Envelope() *BaseAggregateRoot {
	return a
}

// Stamp assigns a fresh identity for insertion
func (a *BaseAggregateRoot) Stamp(now time.Time) {
	now = now.Truncate(TimestampPrecision)
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Version = 1
}

// Touch marks the aggregate as modified at now. UpdatedAt always moves
// forward, even when the clock has not advanced past the previous write.
func (a *BaseAggregateRoot) Touch(now time.Time) {
	now = now.Truncate(TimestampPrecision)
	if !now.After(a.UpdatedAt) {
		now = a.UpdatedAt.Add(TimestampPrecision)
	}
	a.UpdatedAt = now
	a.IncrementVersion()
}
