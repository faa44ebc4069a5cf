// Package errors provides structured error handling for tabops.
// Errors carry a code for programmatic handling plus key/value context
// identifying the file and category involved.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors (1xx)
	CodeUnreadableSource  Code = "E101"
	CodeFilePermission    Code = "E102"
	CodeUnsupportedFormat Code = "E103"
	CodeMissingColumn     Code = "E104"
	CodeEncodingError     Code = "E105"
	CodeBadArchive        Code = "E106"

	// Processing errors (2xx)
	CodeCollectFailed Code = "E201"
	CodeHashMismatch  Code = "E202"

	// Output errors (3xx)
	CodePartitionWrite Code = "E301"
	CodeWriteFailed    Code = "E302"
	CodePathCollision  Code = "E303"

	// Unknown
	CodeUnknown Code = "E999"
)

// Error is the base error type for all tabops errors.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// --- Convenience constructors ---

// UnreadableSource reports a file that cannot be opened or parsed.
func UnreadableSource(path string, cause error) *Error {
	return Wrap(cause, CodeUnreadableSource, "source cannot be read").
		WithContext("path", path)
}

// MissingColumn reports an absent category column. Recoverable per file.
func MissingColumn(column, file string, available []string) *Error {
	return New(CodeMissingColumn, "category column not found").
		WithContext("column", column).
		WithContext("file", file).
		WithContext("available", available)
}

// UnsupportedFormat reports an unknown format identifier. Fatal to the run.
func UnsupportedFormat(format string) *Error {
	return New(CodeUnsupportedFormat, "unsupported output format").
		WithContext("format", format)
}

// PartitionWrite reports the failure of one category's write.
func PartitionWrite(file, category string, cause error) *Error {
	return Wrap(cause, CodePartitionWrite, "partition write failed").
		WithContext("file", file).
		WithContext("category", category)
}

// PathCollision reports two categories resolving to the same output path.
func PathCollision(file, path string, categories []string) *Error {
	return New(CodePathCollision, "categories resolve to the same output path").
		WithContext("file", file).
		WithContext("path", path).
		WithContext("categories", categories)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil if no errors, the single error if one, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
