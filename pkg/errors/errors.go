// Package errors provides structured error handling for tabula
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/tabula/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeShapeMismatch represents label counts that disagree with array dimensions
	ErrorTypeShapeMismatch ErrorType = "shape_mismatch"
	// ErrorTypeDuplicateLabel represents non-unique labels where uniqueness is required
	ErrorTypeDuplicateLabel ErrorType = "duplicate_label"
	// ErrorTypeMissingColumn represents lookup or deletion of an absent column
	ErrorTypeMissingColumn ErrorType = "missing_column"
	// ErrorTypeMissingLabel represents lookup of an absent row label
	ErrorTypeMissingLabel ErrorType = "missing_label"
	// ErrorTypeInvalidAssignment represents writes to derived, read-only views
	ErrorTypeInvalidAssignment ErrorType = "invalid_assignment"
	// ErrorTypeCoercionFailure represents values that cannot be cast to a block's dtype
	ErrorTypeCoercionFailure ErrorType = "coercion_failure"
	// ErrorTypeValidation represents invalid arguments
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal represents broken internal invariants
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: stringpool.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// Keep the stack of the innermost structured error
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsLookupFailure reports whether err is a missing row or column lookup
func IsLookupFailure(err error) bool {
	return IsType(err, ErrorTypeMissingColumn) || IsType(err, ErrorTypeMissingLabel)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for foreign errors
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
