// Package errors consolidates error definitions for the aura application.
//
// This package provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Validation errors - malformed caller input, never retried internally.
	ErrInvalidRetention  = errors.New("retention_seconds must be a finite number greater than 0")
	ErrInvalidLimit      = errors.New("limit must be an integer greater than 0")
	ErrInvalidRange      = errors.New("start_timestamp must be less than or equal to end_timestamp")
	ErrInvalidTimestamp  = errors.New("timestamp must be a finite number")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	ErrInvalidResolution = errors.New("resolution must be an integer of at least 2")
	ErrInvalidTarget     = errors.New("target must be an integer of at least 2")
	ErrInvalidInterval   = errors.New("interval_seconds must be a finite number greater than 0")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrEmptyPath         = errors.New("db_path cannot be empty when persistence is enabled")

	// State errors
	ErrStoreClosed = errors.New("store is closed")
	ErrNotTerminal = errors.New("standard input is not a terminal")

	// Internal errors
	ErrInternal = errors.New("internal error")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// IsValidation returns true if err is a malformed-input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRetention) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidTimestamp) ||
		errors.Is(err, ErrInvalidSnapshot) ||
		errors.Is(err, ErrInvalidResolution) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidCommand) ||
		errors.Is(err, ErrEmptyPath)
}

// IsStateError returns true if err is a state-related error.
func IsStateError(err error) bool {
	return errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, ErrNotTerminal)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewInvalidValue creates a validation error carrying the offending value.
func NewInvalidValue(field string, value interface{}, sentinel error) error {
	return fmt.Errorf("%s '%v': %w", field, value, sentinel)
}

// NewInvalidField creates a validation error for a named snapshot field.
func NewInvalidField(field, reason string) error {
	return fmt.Errorf("%s %s: %w", field, reason, ErrInvalidSnapshot)
}
