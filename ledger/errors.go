package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrLedgerAccess   = errors.New("unable to open ledger")
	ErrValidation     = errors.New("invalid ledger entry")
	ErrStoreOperation = errors.New("ledger store operation failed")
	ErrConflict       = errors.New("ledger has been modified since it was last retrieved")
)

// ValidationError describes an entry (or edited row) rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failed Sheet Store call with the name of the operation.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{
		Op:  op,
		Err: err,
	}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%v failed (%v)", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreOperation
}
