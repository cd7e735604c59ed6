package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrNotAuthorized indicates a policy violation, e.g. a deposit deduction the
// driver has not consented to.
var ErrNotAuthorized = errors.New("operation not authorized")

// ErrForbidden indicates the acting user lacks permission for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyExited guards the one-time driver exit computation.
var ErrAlreadyExited = errors.New("driver has already exited")

// ErrAlreadyArchived guards mutations against archived (read-only) drivers.
var ErrAlreadyArchived = errors.New("driver is already archived")

// ErrConflict indicates a lost update or an invalid state transition.
// Callers may retry the operation against fresh state.
var ErrConflict = errors.New("conflicting concurrent update")

// ErrExternalDispatch indicates an outbound payout dispatch failed. The
// transaction is recorded as FAILED; the core does not retry automatically.
var ErrExternalDispatch = errors.New("external payment dispatch failed")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries a status code alongside a wrapped cause. Used by the
// repository layer for infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
