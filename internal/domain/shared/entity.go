package shared

import (
	"time"

	"github.com/google/uuid"
)

// TimestampPrecision is the resolution every envelope timestamp is truncated to.
// Both the embedded store and postgres keep microseconds.
const TimestampPrecision = time.Microsecond

// Entity is anything with a stable identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity holds the identity and UTC audit timestamps of a stored record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Now returns the current UTC time at envelope precision
func Now() time.Time {
	return time.Now().UTC().Truncate(TimestampPrecision)
}
