package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("record not found")
	ErrNotConfirmed  = errors.New("operation not confirmed")
	// ErrStaleView marks a result that arrived after its consumer went away. Callers
	// drop it without surfacing anything to the user.
	ErrStaleView = errors.New("stale view")
)

// Field names reported by ValidationError.
const (
	FieldKind             = "kind"
	FieldMode             = "mode"
	FieldCategoryID       = "categoryId"
	FieldDate             = "date"
	FieldNote             = "note"
	FieldAmount           = "amount"
	FieldTotalAmount      = "totalAmount"
	FieldInstallmentCount = "installmentCount"
	FieldPerMonthAmount   = "perMonthAmount"
	FieldMonthCount       = "monthCount"
)

// ValidationError reports the first field of an intent or patch that fails a
// precondition. It is raised before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps a failure of the ledger store. The caller must not assume any
// part of the operation succeeded.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore returns nil for a nil err, otherwise a StoreError for op.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
