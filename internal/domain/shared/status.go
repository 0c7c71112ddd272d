package shared

// ActiveStatus is the two-state lifecycle of catalog and partner records
type ActiveStatus string

const (
	StatusActive   ActiveStatus = "active"
	StatusInactive ActiveStatus = "inactive"
)

// IsValid reports whether s is a known lifecycle status
func (s ActiveStatus) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Lifecycle can be embedded by aggregates to satisfy SoftDeletable
type Lifecycle struct {
	Status ActiveStatus
}

// Deactivate marks the record inactive
func (l *Lifecycle) Deactivate() {
	l.Status = StatusInactive
}

// Activate marks the record active
func (l *Lifecycle) Activate() {
	l.Status = StatusActive
}

// IsActive returns true when the record is active
func (l *Lifecycle) IsActive() bool {
	return l.Status == StatusActive
}
