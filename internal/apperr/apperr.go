// Package apperr defines the error taxonomy shared across Anna's
// pipeline stages. Every stage-boundary error is wrapped in an *Error
// so the HTTP layer and the transcript renderer can classify it
// without parsing strings.
package apperr

import (
	"errors"
	"fmt"
)

// Category is the closed set of failure domains a pipeline stage can
// report.
type Category string

const (
	CategoryConfig       Category = "config"
	CategoryTransport    Category = "transport"
	CategoryProbe        Category = "probe"
	CategoryBudget       Category = "budget"
	CategoryVerification Category = "verification"
	CategoryStorage      Category = "storage"
	CategoryPolicy       Category = "policy"
)

// Error is the wrapped form of a pipeline failure.
type Error struct {
	Category  Category
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a non-retryable Error with no wrapped cause.
func New(cat Category, message string) *Error {
	return &Error{Category: cat, Message: message}
}

// Wrap builds an Error around an existing error, preserving it for
// errors.Is/errors.As.
func Wrap(cat Category, message string, err error) *Error {
	return &Error{Category: cat, Message: message, Err: err}
}

// WrapRetryable is Wrap for failures the caller should retry (transient
// transport errors, budget-allowed fallbacks).
func WrapRetryable(cat Category, message string, err error) *Error {
	return &Error{Category: cat, Message: message, Err: err, Retryable: true}
}

// CategoryOf extracts the Category of err if it is, or wraps, an
// *Error, and ok=false otherwise.
func CategoryOf(err error) (Category, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Category, true
	}
	return "", false
}

// IsRetryable reports whether err is an *Error marked Retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

var (
	ErrBudgetExhausted   = New(CategoryBudget, "budget exhausted")
	ErrCoverageInsufficient = New(CategoryVerification, "evidence coverage insufficient")
	ErrProbeUnknown      = New(CategoryProbe, "unknown probe")
	ErrProbeTimeout      = New(CategoryProbe, "probe timed out")
	ErrClarificationExpired = New(CategoryPolicy, "clarification token expired")
	ErrRollbackUnavailable = New(CategoryPolicy, "rollback not available for this episode")
	ErrChecksumMismatch  = New(CategoryStorage, "backup checksum mismatch")
)
