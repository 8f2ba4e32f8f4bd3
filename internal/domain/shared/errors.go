package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes shared by every bounded context
const (
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeInvalidState          = "INVALID_STATE"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeConcurrentStockChange = "CONCURRENT_STOCK_CHANGE"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
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

// Is matches any DomainError carrying the same code, so wrapped
// variants compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
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
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrConcurrentStock     = NewDomainError(CodeConcurrentStockChange, "Stock changed concurrently, retry the operation")
)

// NewNotFoundError reports a missing (or not owned) entity by kind and id.
func NewNotFoundError(entity string, id uuid.UUID) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}

// NewValidationError reports malformed business input.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError reports an operation attempted in a forbidding state.
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// InsufficientStockError identifies the product whose stock could not
// cover a requested quantity.
type InsufficientStockError struct {
	*DomainError
	ProductID uuid.UUID
	Requested int64
	Available int64
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, requested, available int64) *InsufficientStockError {
	return &InsufficientStockError{
		DomainError: NewDomainError(CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", productID, requested, available)),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// Unwrap exposes the embedded DomainError to errors.As
func (e *InsufficientStockError) Unwrap() error {
	return e.DomainError
}

// ConcurrentStockChangeError is returned when a conditional stock update
// lost a race. The whole operation may be retried.
type ConcurrentStockChangeError struct {
	*DomainError
	ProductID uuid.UUID
	BatchID   uuid.UUID
}

// NewConcurrentStockChangeError creates a ConcurrentStockChangeError.
// batchID is uuid.Nil when the product counter itself lost the race.
func NewConcurrentStockChangeError(productID, batchID uuid.UUID) *ConcurrentStockChangeError {
	msg := fmt.Sprintf("stock of product %s changed concurrently", productID)
	if batchID != uuid.Nil {
		msg = fmt.Sprintf("batch %s of product %s changed concurrently", batchID, productID)
	}
	return &ConcurrentStockChangeError{
		DomainError: NewDomainError(CodeConcurrentStockChange, msg),
		ProductID:   productID,
		BatchID:     batchID,
	}
}

// Unwrap exposes the embedded DomainError to errors.As
func (e *ConcurrentStockChangeError) Unwrap() error {
	return e.DomainError
}

// IsRetryable reports whether err is a lost race that the caller may retry.
func IsRetryable(err error) bool {
	var c *ConcurrentStockChangeError
	return errors.As(err, &c)
}
