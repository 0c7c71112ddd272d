package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopledger/backend/internal/domain/shared"
)

// Codes produced by the HTTP layer itself. Domain errors keep their own code.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes that are not validation failures to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	shared.ErrNotFound.Code:          http.StatusNotFound,
	shared.ErrAlreadyExists.Code:     http.StatusConflict,
	shared.ErrInvalidState.Code:      http.StatusUnprocessableEntity,
	shared.ErrInsufficientStock.Code: http.StatusUnprocessableEntity,
	shared.ErrBackupUnavailable.Code: http.StatusServiceUnavailable,
	shared.ErrNotCreated.Code:        http.StatusInternalServerError,
	shared.ErrUpdateFailed.Code:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// INVALID_* and REQUIRED_* codes are validation failures (400); unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "REQUIRED_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ErrorStatus resolves err to a status, code and client-safe message.
// Errors that are not domain errors never leak their text.
func ErrorStatus(err error) (int, string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message
	}
	return http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred"
}
