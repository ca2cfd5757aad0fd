package balance

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a required transfer field is absent or empty.
var ErrMissingField = errors.New("missing field")

// Causes carried by MalformedTransferError for the value field.
var (
	ErrNotInteger    = errors.New("not an integer")
	ErrNegativeValue = errors.New("negative value")
)

// MalformedTransferError reports a transfer record that could not be normalized.
// A single malformed record aborts the whole run: a partial aggregation would
// under-report the balance.
type MalformedTransferError struct {
	Position int
	Field    string
	Value    interface{}
	Err      error
}

func (e *MalformedTransferError) Error() string {
	return fmt.Sprintf("malformed transfer #%d: %s=%v: %v", e.Position, e.Field, e.Value, e.Err)
}

func (e *MalformedTransferError) Unwrap() error {
	return e.Err
}
