// Package errors provides the typed errors shared by the converter, the
// validator and the batch driver.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates an input path does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates malformed input or a rejected option
	ErrInvalidInput = errors.New("invalid input")
	// ErrIO indicates a read or write failure
	ErrIO = errors.New("i/o failure")
)

// Error kinds as they appear in batch error reports.
const (
	KindParse    = "XMLSyntaxError"
	KindNotFound = "NotFound"
	KindIO       = "IOError"
	KindInvalid  = "InvalidInput"
	KindInternal = "InternalError"
)

// NotFoundError reports a missing input file or directory.
type NotFoundError struct {
	Resource string // "file", "directory", "input"
	Path     string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Path)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Unwrap exposes both ErrNotFound and the underlying cause.
func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotFound, e.Err}
	}
	return []error{ErrNotFound}
}

// ValidationError represents a rejected option or argument.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap exposes both ErrInvalidInput and the underlying cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // "read", "write", "mkdir", ...
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

// Unwrap exposes both ErrIO and the underlying cause.
func (e *IOError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrIO, e.Err}
	}
	return []error{ErrIO}
}

// ParseError reports malformed input. Line and Column are 1-based and zero
// when the parser could not tell.
type ParseError struct {
	Format  string // "XML"
	Path    string
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		if e.Column > 0 {
			msg = fmt.Sprintf("%s (line %d, column %d)", msg, e.Line, e.Column)
		} else {
			msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, msg)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, msg)
}

// Unwrap exposes both ErrInvalidInput and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// HasPosition reports whether a line number is known.
func (e *ParseError) HasPosition() bool {
	return e.Line > 0
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, path string) *NotFoundError {
	return &NotFoundError{Resource: resource, Path: path}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// Kind classifies err for reports. Unknown errors are KindInternal.
func Kind(err error) string {
	var (
		pe *ParseError
		nf *NotFoundError
		ie *IOError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &ie):
		return KindIO
	case errors.As(err, &ve):
		return KindInvalid
	default:
		return KindInternal
	}
}

// Position extracts the line and column carried by a ParseError in err's chain.
func Position(err error) (line, column int, ok bool) {
	var pe *ParseError
	if errors.As(err, &pe) && pe.HasPosition() {
		return pe.Line, pe.Column, true
	}
	return 0, 0, false
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
