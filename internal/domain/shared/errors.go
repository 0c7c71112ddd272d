package shared

import (
	"errors"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels work with errors.Is
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrNotCreated        = NewDomainError("NOT_CREATED", "Record was not created")
	ErrUpdateFailed      = NewDomainError("UPDATE_FAILED", "Record was not updated")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidColumn     = NewDomainError("INVALID_COLUMN", "Unknown column")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrBackupUnavailable = NewDomainError("BACKUP_UNAVAILABLE", "Backup is not available")
)

// IsValidationError reports whether err is a domain validation failure.
// Validation codes are INVALID_* or REQUIRED_*, except INVALID_STATE.
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	if domainErr.Code == ErrInvalidState.Code {
		return false
	}
	return strings.HasPrefix(domainErr.Code, "INVALID_") || strings.HasPrefix(domainErr.Code, "REQUIRED_")
}
