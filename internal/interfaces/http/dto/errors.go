package dto

import (
	"net/http"

	"github.com/stockroute/backend/internal/domain/shared"
)

// Error codes returned in the response envelope
const (
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeValidation            = shared.CodeValidation
	ErrCodeUnauthorized          = shared.CodeUnauthorized
	ErrCodeTokenExpired          = "TOKEN_EXPIRED"
	ErrCodeForbidden             = shared.CodeForbidden
	ErrCodeNotFound              = shared.CodeNotFound
	ErrCodeAlreadyExists         = shared.CodeAlreadyExists
	ErrCodeConcurrencyConflict   = shared.CodeConcurrencyConflict
	ErrCodeConcurrentStockChange = shared.CodeConcurrentStockChange
	ErrCodeInvalidState          = shared.CodeInvalidState
	ErrCodeInsufficientStock     = shared.CodeInsufficientStock
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeRequestTooLarge       = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeConcurrentStockChange: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// errorCodeAliases folds domain codes that share a wire code
var errorCodeAliases = map[string]string{
	shared.CodeInvalidInput: ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to its wire code
func NormalizeErrorCode(code string) string {
	if wire, ok := errorCodeAliases[code]; ok {
		return wire
	}
	return code
}
