package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error created from a recovered panic. It keeps the
// original panic value and the stack at the time of the panic.
type PanicError struct {
	PanicValue interface{}
	StackTrace string
	Operation  string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned to *err. It must be
// deferred directly by the function whose named error result is passed in.
//
// Usage:
//
//	func (p *Predictor) Predict(in map[string]float64) (out *Prediction, err error) {
//	    defer errors.Recover(&err, "Predictor.Predict")
//	    ...
//	}
//
// If *err is already set, the panic information wraps it.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
			return
		}
		*err = NewPanicError(operation, r)
	}
}

// SafeExecute runs fn and converts any panic into a PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
