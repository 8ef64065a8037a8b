// Package apperrors defines structured application error types, separating
// configuration problems, store I/O failures, messaging failures and
// strategy failures while carrying the underlying cause.
//
// All error types implement Unwrap where they wrap a cause so that
// errors.Is and errors.As see through them.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error (I/O, messaging).
	ExitErrorTimeout  = 2   // Indicates the run timed out.
	ExitErrorMismatch = 3   // Indicates a strategy result differs from the sequential result.
	ExitErrorConfig   = 4   // Indicates a configuration or usage error.
	ExitErrorCanceled = 130 // Indicates the run was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It is raised before any messaging takes place.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
//
// Returns:
//   - string: The error message string.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// IOError reports a failure to read or write a number in the store. The
// operation that hit it is aborted.
type IOError struct {
	// Op is the store operation ("read", "write", "generate").
	Op string
	// Path names the file or record that failed.
	Path string
	// Cause is the underlying error.
	Cause error
}

// Error returns a message naming the operation and the path.
//
// Returns:
//   - string: The complete error message.
func (e IOError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Path)
}

// Unwrap returns the underlying error.
func (e IOError) Unwrap() error { return e.Cause }

// NewIOError creates a new IOError.
//
// Parameters:
//   - op: The store operation that failed.
//   - path: The file or record involved.
//   - cause: The underlying error (can be nil).
//
// Returns:
//   - error: A new IOError instance.
func NewIOError(op, path string, cause error) error {
	return IOError{Op: op, Path: path, Cause: cause}
}

// MessagingError reports a fatal failure of the message-passing runtime:
// a size mismatch, a closed transport or a peer that went away. A run that
// hits one is aborted on every rank.
type MessagingError struct {
	// Rank is the rank that observed the failure.
	Rank int
	// Peer is the remote rank involved, or -1 when not applicable.
	Peer int
	// Tag is the message tag involved.
	Tag int
	// Expected and Actual are payload lengths for size mismatches.
	Expected int
	Actual   int
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a message describing the failed exchange.
//
// Returns:
//   - string: The complete error message.
func (e MessagingError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("messaging failure on rank %d (peer %d, tag %d): %v", e.Rank, e.Peer, e.Tag, e.Cause)
	case e.Expected != e.Actual:
		return fmt.Sprintf("messaging failure on rank %d (peer %d, tag %d): expected %d values, received %d",
			e.Rank, e.Peer, e.Tag, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("messaging failure on rank %d (peer %d, tag %d)", e.Rank, e.Peer, e.Tag)
	}
}

// Unwrap returns the underlying error.
func (e MessagingError) Unwrap() error { return e.Cause }

// StrategyError attaches the strategy name to a failure raised while it ran.
type StrategyError struct {
	// Strategy is the name of the strategy that failed.
	Strategy string
	// Cause is the underlying error that triggered this strategy error.
	Cause error
}

// Error returns the error message prefixed by the strategy name.
//
// Returns:
//   - string: The error message string.
func (e StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Cause)
}

// Unwrap returns the original wrapped error.
//
// Returns:
//   - error: The underlying cause of the StrategyError.
func (e StrategyError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message for a ServerError.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
//
// Parameters:
//   - message: A description of the error context.
//   - cause: The underlying error that occurred (can be nil).
//
// Returns:
//   - error: A new ServerError instance.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError represents an error due to invalid input validation.
// It is used for API request validation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
