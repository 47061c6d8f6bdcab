package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the race and state outcomes the workflows distinguish.
var (
	ErrNotFound = errors.New("not found")

	// ErrTillClosed: the till was already closed when the operation started.
	ErrTillClosed = errors.New("till is not open")

	// ErrTillNoLongerOpen: the till closed between validation and the guarded
	// write. The commit workflow compensates fully before returning this.
	ErrTillNoLongerOpen = errors.New("till is no longer open")

	ErrAlreadyVoided = errors.New("sale is already voided")
)

// ValidationError is a caller mistake; it is raised before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundf wraps ErrNotFound with the entity that was missing.
func NotFoundf(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// ProductUnavailableError covers "does not exist", "inactive" and "not enough
// units" at reservation time; the guarded decrement cannot tell them apart.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("insufficient stock or product inactive/missing: %s", e.ProductID)
}

func ProductUnavailable(productID string) error {
	return &ProductUnavailableError{ProductID: productID}
}

// IsProductUnavailable reports whether err is a ProductUnavailableError.
func IsProductUnavailable(err error) bool {
	var pe *ProductUnavailableError
	return errors.As(err, &pe)
}

// InternalError marks unexpected store failures. The original cause stays
// reachable through Unwrap.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal: %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func Internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
