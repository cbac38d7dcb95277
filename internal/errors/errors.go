// Package errors provides structured error types for rulekit.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes for rulekit operations.
const (
	// Config errors
	CodeConfigMissingField = "CONFIG_001" // Missing required field
	CodeConfigInvalidValue = "CONFIG_002" // Invalid value
	CodeConfigParseError   = "CONFIG_003" // TOML could not be decoded

	// Source errors
	CodeSourceNotFound   = "SRC_001" // Configured input path does not exist
	CodeSourceDirMissing = "SRC_002" // Assembler source directory is absent

	// Front matter errors
	CodeFrontMatterMissing      = "FM_001" // No opening --- line
	CodeFrontMatterUnterminated = "FM_002" // Opening --- without a closing one

	// IO errors
	CodeIOPermission = "IO_002" // Permission denied
	CodeIOReadError  = "IO_004" // Read error
	CodeIOWriteError = "IO_005" // Write error

	// Build errors
	CodeBuildUnsafeClean = "BUILD_001" // Refused to remove a directory
)

// KitError is the structured error type for rulekit operations.
type KitError struct {
	Code    string         `json:"code"`              // Error code (e.g., "SRC_001")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (path, field, etc.)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *KitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *KitError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *KitError) WithDetail(key string, value any) *KitError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *KitError) WithCause(err error) *KitError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *KitError) MarshalJSON() ([]byte, error) {
	type alias KitError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new KitError.
func New(code, message string) *KitError {
	return &KitError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new KitError with formatted message.
func Newf(code, format string, args ...any) *KitError {
	return &KitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a KitError.
func Wrap(code, message string, err error) *KitError {
	return &KitError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted KitError.
func Wrapf(code string, err error, format string, args ...any) *KitError {
	return &KitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Config Errors ---

// ConfigMissingField creates an error for missing config field.
func ConfigMissingField(field string) *KitError {
	return Newf(CodeConfigMissingField, "missing required config field: %s", field).
		WithDetail("field", field)
}

// ConfigInvalidValue creates an error for invalid config value.
func ConfigInvalidValue(field string, value any, reason string) *KitError {
	return Newf(CodeConfigInvalidValue, "invalid config value for %s: %s", field, reason).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason)
}

// ConfigParseError creates an error for a config file that is not valid TOML.
func ConfigParseError(path string, err error) *KitError {
	return Wrap(CodeConfigParseError, "failed to parse config", err).
		WithDetail("path", path)
}

// --- Source Errors ---

// SourceNotFound creates an error for a configured input that does not exist.
func SourceNotFound(path string) *KitError {
	return Newf(CodeSourceNotFound, "source not found: %s", path).
		WithDetail("path", path)
}

// SourceDirMissing creates an error for an absent source directory.
func SourceDirMissing(dir string) *KitError {
	return Newf(CodeSourceDirMissing, "source directory not found: %s", dir).
		WithDetail("dir", dir)
}

// --- Front Matter Errors ---

// FrontMatterMissing reports a destination without an opening --- line.
func FrontMatterMissing(path string) *KitError {
	return Newf(CodeFrontMatterMissing, "no front matter start ('---') found in %s, overwriting entire file", path).
		WithDetail("path", path)
}

// FrontMatterUnterminated reports a destination whose front matter never closes.
func FrontMatterUnterminated(path string) *KitError {
	return Newf(CodeFrontMatterUnterminated, "end of front matter ('---') not found in %s, keeping first line only", path).
		WithDetail("path", path)
}

// --- IO Errors ---

// IOPermissionDenied creates an error for permission issues.
func IOPermissionDenied(path string, err error) *KitError {
	return Wrap(CodeIOPermission, "permission denied", err).
		WithDetail("path", path)
}

// IOReadError creates an error for read failures.
func IOReadError(path string, err error) *KitError {
	return Wrap(CodeIOReadError, "failed to read file", err).
		WithDetail("path", path)
}

// IOWriteError creates an error for write failures.
func IOWriteError(path string, err error) *KitError {
	return Wrap(CodeIOWriteError, "failed to write file", err).
		WithDetail("path", path)
}

// --- Build Errors ---

// BuildUnsafeClean creates an error for a clean target outside the project.
func BuildUnsafeClean(dir, reason string) *KitError {
	return Newf(CodeBuildUnsafeClean, "refusing to remove %s: %s", dir, reason).
		WithDetail("dir", dir).
		WithDetail("reason", reason)
}

// HasCode checks if an error is a KitError with the given code.
// It handles wrapped errors by unwrapping to find a KitError.
func HasCode(err error, code string) bool {
	var kerr *KitError
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}

// Code returns the error code if err is a KitError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a KitError.
func Code(err error) string {
	var kerr *KitError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return ""
}
