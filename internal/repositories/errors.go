package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when no row matches the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductExists is returned when creating a product whose id is taken.
	ErrProductExists = errors.New("product already exists")
)

// StoreError wraps a connection or query failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeError wraps err unless it is already classified.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrProductExists) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
