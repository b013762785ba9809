package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for service construction.
var (
	// ErrNilGenerator indicates Config.Generator is nil.
	ErrNilGenerator = errors.New("gateway: generator is nil")

	// ErrNilLedger indicates Config.Ledger is nil.
	ErrNilLedger = errors.New("gateway: ledger is nil")
)

// ValidationError rejects a request before any cache, upstream or ledger
// work. Field names the offending input using its JSON name.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("gateway: invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
