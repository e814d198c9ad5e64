package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
)

// Validation errors
var (
	ErrEmptyMessage    = NewDomainError(ErrCodeValidation, "message is required")
	ErrInvalidChatRole = NewDomainError(ErrCodeValidation, "conversation role must be user or assistant")
)

// Upstream provider errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstream, "embedding provider failed")
	ErrGenerationFailed = NewDomainError(ErrCodeUpstream, "generation provider failed")
	ErrIndexQueryFailed = NewDomainError(ErrCodeUpstream, "vector index query failed")
)

// Configuration errors
var (
	ErrProviderNotConfigured = NewDomainError(ErrCodeInternalError, "language model provider not configured")
	ErrUnsupportedFilter     = NewDomainError(ErrCodeInvalidOperation, "unsupported metadata filter field")
)
