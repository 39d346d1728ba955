package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for the pipeline failure taxonomy. Content-fetch and
// total-parse failures are fatal for the document that hit them; the
// validation, identity and conflict errors are scoped to one candidate
// record and never abort a batch.
var (
	ErrContentFetch        = errors.New("content fetch failed")
	ErrExtractionTransient = errors.New("transient extraction failure")
	ErrExtractionFatal     = errors.New("fatal extraction failure")
	ErrParse               = errors.New("no objects recoverable from response")
	ErrValidation          = errors.New("schema validation failed")
	ErrIdentity            = errors.New("no derivable natural key")
	ErrStorageConflict     = errors.New("item already exists")
	ErrStorage             = errors.New("storage backend error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsTransient reports whether err should be retried by the extraction
// client. Parsing and validation failures are never transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrExtractionTransient)
}
