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
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyChunk        = NewDomainError(ErrCodeValidation, "chunk content cannot be empty")
	ErrInvalidBatchSize  = NewDomainError(ErrCodeValidation, "batch size must be positive")
	ErrEmptyEmbedding    = NewDomainError(ErrCodeValidation, "embedding cannot be empty")
	ErrDimensionMismatch = NewDomainError(ErrCodeValidation, "embedding dimension mismatch")
	ErrInvalidPolicy     = NewDomainError(ErrCodeValidation, "invalid collection policy")
)

// Collection errors. ErrCollectionNotFound signals a configuration error
// (the writer's collection-resolution policy was violated), distinct from a
// query that simply returns no relevant documents.
var (
	ErrCollectionNotFound      = NewDomainError(ErrCodeNotFound, "vector collection not found")
	ErrCollectionAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "vector collection already exists")
)

// Ingestion errors
var (
	ErrNoDocuments = NewDomainError(ErrCodeInvalidOperation, "no documents loaded from source")
	ErrIngestBusy  = NewDomainError(ErrCodeInvalidOperation, "an ingestion run is already queued")
)
