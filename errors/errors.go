// Package errors provides error handling for dugout.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := fetch(); err != nil {
//	    return errors.Wrap(err, "failed to fetch game logs")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check KAGGLE_USERNAME and KAGGLE_KEY")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
	Mark           = crdb.Mark

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// Sentinel errors shared by every dugout package.
// Wrap these with errors.Wrap() to add context while preserving the type,
// or use Mark() to tag an existing error.
var (
	// ErrInvalidArgument indicates a malformed argument (threshold, scorer, identifier, ...)
	ErrInvalidArgument = New("invalid argument")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrTimeout indicates an operation did not finish before its deadline
	ErrTimeout = New("operation timed out")

	// ErrAuthFailure indicates missing or rejected credentials
	ErrAuthFailure = New("authentication failed")

	// ErrConflict indicates a resource conflict (e.g., table already exists)
	ErrConflict = New("resource conflict")

	// ErrServiceUnavailable indicates a remote service refused or throttled the request
	ErrServiceUnavailable = New("service unavailable")
)

// NewInvalidArgumentError creates an invalid-argument error naming the offending argument.
func NewInvalidArgumentError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidArgument)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}

// NewTimeoutError creates a timeout error with a formatted message
func NewTimeoutError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrTimeout)
}

// NewAuthFailureError creates an authentication error with a formatted message
func NewAuthFailureError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrAuthFailure)
}

// NewConflictError creates a conflict error with a formatted message
func NewConflictError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConflict)
}

// NewServiceUnavailableError creates a service-unavailable error with a formatted message
func NewServiceUnavailableError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrServiceUnavailable)
}

// IsInvalidArgument checks if an error is or wraps ErrInvalidArgument
func IsInvalidArgument(err error) bool {
	return err != nil && Is(err, ErrInvalidArgument)
}

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsTimeout checks if an error is or wraps ErrTimeout
func IsTimeout(err error) bool {
	return err != nil && Is(err, ErrTimeout)
}

// IsAuthFailure checks if an error is or wraps ErrAuthFailure
func IsAuthFailure(err error) bool {
	return err != nil && Is(err, ErrAuthFailure)
}

// IsConflict checks if an error is or wraps ErrConflict
func IsConflict(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// IsServiceUnavailable checks if an error is or wraps ErrServiceUnavailable
func IsServiceUnavailable(err error) bool {
	return err != nil && Is(err, ErrServiceUnavailable)
}
