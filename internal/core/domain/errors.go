// Package domain defines the core domain models for replikv.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "RK-CMD-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ReplyText returns the text sent to a client after the "ERR " prefix.
func (e *DomainError) ReplyText() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Protocol Errors (PROTO)
// ============================================================================

var (
	// ErrProtocol indicates malformed or truncated wire data.
	ErrProtocol = NewDomainError("RK-PROTO-4000", "protocol error")
)

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrUnknownCommand indicates the command name is not recognized.
	ErrUnknownCommand = NewDomainError("RK-CMD-4001", "unknown command")

	// ErrWrongArgs indicates a wrong argument count.
	ErrWrongArgs = NewDomainError("RK-CMD-4002", "wrong number of arguments")

	// ErrSyntax indicates an argument of the wrong type or an invalid option.
	ErrSyntax = NewDomainError("RK-CMD-4003", "syntax error")

	// ErrNotInteger indicates a numeric argument could not be parsed.
	ErrNotInteger = NewDomainError("RK-CMD-4004", "value is not an integer or out of range")

	// ErrInfoSection indicates an INFO section that is not supported.
	ErrInfoSection = NewDomainError("RK-CMD-4005", "unsupported INFO section")
)

// ============================================================================
// Replication Errors (REPL)
// ============================================================================

var (
	// ErrHandshake indicates the replica handshake with the primary failed.
	ErrHandshake = NewDomainError("RK-REPL-5020", "replication handshake failed")

	// ErrReplicaOf indicates a malformed primary address.
	ErrReplicaOf = NewDomainError("RK-REPL-4001", "invalid replicaof address")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("RK-SYS-5000", "internal error")
)

// IsCommandError reports whether err is a client-caused command error.
func IsCommandError(err error) bool {
	return errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrWrongArgs) ||
		errors.Is(err, ErrSyntax) ||
		errors.Is(err, ErrNotInteger) ||
		errors.Is(err, ErrInfoSection)
}
