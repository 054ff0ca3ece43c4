// Package recovery converts panics raised by transports and engines into errors.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrPanic is matched by every error produced from a recovered panic.
var ErrPanic = errors.New("panic recovered")

// PanicError carries the recovered value of a panicking operation.
type PanicError struct {
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

func (e *PanicError) Unwrap() error { return ErrPanic }

// GRPCStatus lets status.FromError report panics as Internal.
func (e *PanicError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Error())
}

// Call runs fn and returns its value. If fn panics, the panic is logged with
// its stack and returned as a *PanicError with the zero value.
//
// Example:
//
//	resp, err := recovery.Call(logger, "Select", func() (*wire.Response, error) {
//	    return transport.Select(ctx, req)
//	})
func Call[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			var zero T
			result = zero
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// Run wraps a void function with panic recovery.
// Logs the panic but doesn't return an error.
// Use for cleanup where errors can't be returned.
func Run(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in cleanup",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn()
}
