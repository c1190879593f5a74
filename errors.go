package acceptor

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit
// code 2. Examples include configuration errors, file not found, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// NotReadyError represents a not-ready verdict (exit code 1)
type NotReadyError struct {
	Message string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("not ready: %s", e.Message)
}

// NewNotReadyError creates a new NotReadyError
func NewNotReadyError(message string) *NotReadyError {
	return &NotReadyError{Message: message}
}

// IsNotReadyError checks if the error is or wraps a NotReadyError
func IsNotReadyError(err error) bool {
	var notReadyErr *NotReadyError
	return err != nil && errors.As(err, &notReadyErr)
}
