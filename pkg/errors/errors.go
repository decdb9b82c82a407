// Package errors provides structured error handling for tabprep.
//
// Every failure raised by the data preparation core is an *Error carrying an
// ErrorType, so callers can branch on the category with IsType or errors.As
// instead of matching message text:
//
//	out, err := scale.Apply(ds, scale.Options{Strategy: "bogus"})
//	if errors.IsType(err, errors.ErrorTypeUnknownStrategy) {
//	    // err.Error() lists the valid strategy names
//	}
//
// Errors are raised at the point of detection and are never retried.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeUnknownColumn is raised when a referenced column is absent
	ErrorTypeUnknownColumn ErrorType = "unknown_column"
	// ErrorTypeTypeMismatch is raised when an operation meets a column of the wrong kind
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeUnknownStrategy is raised when a strategy name is not in a component registry
	ErrorTypeUnknownStrategy ErrorType = "unknown_strategy"
	// ErrorTypeShapeMismatch is raised when the row-count invariant would be violated
	ErrorTypeShapeMismatch ErrorType = "shape_mismatch"
	// ErrorTypeUnknownStep is raised when a pipeline step kind is not recognized
	ErrorTypeUnknownStep ErrorType = "unknown_step"
	// ErrorTypeValidation represents invalid caller input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeData represents malformed input data
	ErrorTypeData ErrorType = "data"
	// ErrorTypeInternal represents internal errors
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
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
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
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
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

// IsType reports whether any error in err's chain is an *Error of the given type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// UnknownColumn reports a reference to a column the dataset does not have
func UnknownColumn(name string) *Error {
	return &Error{
		Type:    ErrorTypeUnknownColumn,
		Message: fmt.Sprintf("column %q not found", name),
		Details: map[string]interface{}{"column": name},
		Stack:   captureStack(2),
	}
}

// TypeMismatch reports an operation applied to a column of the wrong kind
func TypeMismatch(column, want, got string) *Error {
	return &Error{
		Type:    ErrorTypeTypeMismatch,
		Message: fmt.Sprintf("column %q is %s, expected %s", column, got, want),
		Details: map[string]interface{}{"column": column, "want": want, "got": got},
		Stack:   captureStack(2),
	}
}

// UnknownStrategy reports a strategy name outside a component's registry.
// The message enumerates the valid names in registry order.
func UnknownStrategy(component, name string, valid []string) *Error {
	return &Error{
		Type: ErrorTypeUnknownStrategy,
		Message: fmt.Sprintf("unknown %s strategy %q, valid strategies: [%s]",
			component, name, strings.Join(valid, ", ")),
		Details: map[string]interface{}{"component": component, "strategy": name, "valid": valid},
		Stack:   captureStack(2),
	}
}

// ShapeMismatch reports a column whose length differs from the dataset row count
func ShapeMismatch(column string, want, got int) *Error {
	return &Error{
		Type:    ErrorTypeShapeMismatch,
		Message: fmt.Sprintf("column %q has %d rows, expected %d", column, got, want),
		Details: map[string]interface{}{"column": column, "want": want, "got": got},
		Stack:   captureStack(2),
	}
}

// UnknownStep reports a pipeline step kind that is not recognized
func UnknownStep(kind string, valid []string) *Error {
	return &Error{
		Type: ErrorTypeUnknownStep,
		Message: fmt.Sprintf("unknown step kind %q, valid kinds: [%s]",
			kind, strings.Join(valid, ", ")),
		Details: map[string]interface{}{"kind": kind, "valid": valid},
		Stack:   captureStack(2),
	}
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

// WarningCode identifies a non-fatal condition
type WarningCode string

const (
	// WarningNoFillValue is reported when a column has no value to derive a fill from
	WarningNoFillValue WarningCode = "no_fill_value_available"
	// WarningNoCandidates is reported when a step had no column to operate on
	WarningNoCandidates WarningCode = "no_candidate_columns"
)

// Warning is a non-fatal condition reported alongside a successful result.
// Warnings are never returned as errors.
type Warning struct {
	Code    WarningCode `json:"code"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}

// String formats the warning for logs
func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s: %s: %s", w.Code, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
