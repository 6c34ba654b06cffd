package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Common sentinel errors for quick checks
var (
	// ErrNotInitialized is returned when the client is used before construction completed.
	ErrNotInitialized = errors.New("client not initialized")

	// ErrInvalidInput is returned when caller input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable is returned when the node cannot be reached.
	ErrUnavailable = errors.New("node unavailable")

	// ErrInternal is returned when an internal error occurs.
	ErrInternal = errors.New("internal error")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// TransportError is returned when no response could be obtained from the node
// (connection refused, DNS failure, broken stream).
type TransportError struct {
	*BaseError
	Op string
}

// NewTransportError creates a new transport error for the given operation.
func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{
		BaseError: &BaseError{
			code:    CodeUnavailable,
			message: fmt.Sprintf("%s request failed", op),
			cause:   cause,
			stack:   captureStack(1),
		},
		Op: op,
	}
}

// NodeError is the common shape of a non-success response from the node.
type NodeError struct {
	*BaseError
	StatusCode int
}

func newNodeError(statusCode int, message string) *NodeError {
	return &NodeError{
		BaseError: &BaseError{
			code:    HTTPStatusToCode(statusCode),
			message: message,
			stack:   captureStack(2),
		},
		StatusCode: statusCode,
	}
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.message)
}

// ViewCallError is returned when a view call is answered with a non-200 status.
type ViewCallError struct {
	*NodeError
}

// NewViewCallError creates a new view call error.
func NewViewCallError(statusCode int, message string) *ViewCallError {
	return &ViewCallError{NodeError: newNodeError(statusCode, message)}
}

// Error implements the error interface.
func (e *ViewCallError) Error() string {
	return "view call failed: " + e.NodeError.Error()
}

// PostRequestError is returned when the node rejects an off-ledger request.
type PostRequestError struct {
	*NodeError
}

// NewPostRequestError creates a new post request error.
func NewPostRequestError(statusCode int, message string) *PostRequestError {
	return &PostRequestError{NodeError: newNodeError(statusCode, message)}
}

// Error implements the error interface.
func (e *PostRequestError) Error() string {
	return "post request failed: " + e.NodeError.Error()
}

// WaitError is returned when the node answers a wait with a non-200 status.
type WaitError struct {
	*NodeError
}

// NewWaitError creates a new wait error.
func NewWaitError(statusCode int, message string) *WaitError {
	return &WaitError{NodeError: newNodeError(statusCode, message)}
}

// Error implements the error interface.
func (e *WaitError) Error() string {
	return "wait for request failed: " + e.NodeError.Error()
}

// TimeoutError represents a client-side deadline that elapsed.
type TimeoutError struct {
	*BaseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation string, duration time.Duration, cause error) *TimeoutError {
	message := "operation timeout"
	if operation != "" {
		message = fmt.Sprintf("%s timeout after %s", operation, duration)
	}
	return &TimeoutError{
		BaseError: &BaseError{
			code:    CodeTimeout,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Operation: operation,
		Duration:  duration,
	}
}

// NonceResolutionError is returned when the on-chain nonce for an identity
// could not be fetched. The nonce cache is left untouched, so it is safe to retry.
type NonceResolutionError struct {
	*BaseError
	Identity string
}

// NewNonceResolutionError creates a new nonce resolution error.
func NewNonceResolutionError(identity string, cause error) *NonceResolutionError {
	return &NonceResolutionError{
		BaseError: &BaseError{
			code:    CodeNonceResolution,
			message: fmt.Sprintf("failed to resolve nonce for %s", identity),
			cause:   cause,
			stack:   captureStack(1),
		},
		Identity: identity,
	}
}

// SigningError represents a key or signature failure.
type SigningError struct {
	*BaseError
}

// NewSigningError creates a new signing error.
func NewSigningError(message string, cause error) *SigningError {
	if message == "" {
		message = "signing failed"
	}
	return &SigningError{
		BaseError: &BaseError{
			code:    CodeCryptoError,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// InternalError represents an unexpected client-side failure.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}
