// Package errz defines the structured error type raised while evaluating
// compiled expressions.
package errz

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jcormont/expression-runner/errors"
)

// SourceLocation and StackFrame are shared with the parser error types.
type (
	SourceLocation = errors.SourceLocation
	StackFrame     = errors.StackFrame
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrRuntime indicates a general runtime error.
	ErrRuntime ErrorKind = iota
	// ErrName indicates an undefined variable.
	ErrName
	// ErrType indicates an operation on a value of the wrong type, such as
	// calling something that is not a function or reading a property of
	// undefined or null.
	ErrType
	// ErrAccess indicates a write blocked by the sandbox.
	ErrAccess
	// ErrHost indicates an error returned by a host provided function.
	ErrHost
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrName:
		return "name error"
	case ErrType:
		return "type error"
	case ErrAccess:
		return "access error"
	case ErrHost:
		return "host error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// StructuredError is an evaluation error with an error code, the source
// location of the offending expression where known, and the arrow function
// calls in progress.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Code     errors.ErrorCode
	Location SourceLocation
	Stack    []StackFrame
	Hint     string
	Cause    error
}

// Error implements the error interface. Only the message is returned so that
// callers see the same text regardless of how the error was classified.
func (e *StructuredError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns a message including the error kind, the
// source line and caret where known, and the stack.
func (e *StructuredError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	if e.Location.IsZero() {
		msg.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
	} else {
		msg.WriteString(fmt.Sprintf("%s: %s (%d:%d)\n", e.Kind, e.Message, e.Location.Line, e.Location.Column))
	}
	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}
	if e.Hint != "" {
		msg.WriteString(e.Hint)
		msg.WriteString("\n")
	}
	if len(e.Stack) > 0 {
		msg.WriteString("\n")
		msg.WriteString(errors.FormatStackTrace(e.Stack))
	}
	return msg.String()
}

// ToFormatted converts the error for display by errors.Formatter.
func (e *StructuredError) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:     e.Code,
		Kind:     e.Kind.String(),
		Message:  e.Message,
		Filename: e.Location.Filename,
		Line:     e.Location.Line,
		Column:   e.Location.Column,
		Stack:    e.Stack,
		Hint:     e.Hint,
	}
	if e.Location.Source != "" {
		fe.SourceLines = []errors.SourceLineEntry{
			{Number: e.Location.Line, Text: e.Location.Source, IsMain: true},
		}
	}
	return fe
}

// New creates a StructuredError with the given kind, code and message.
func New(kind ErrorKind, code errors.ErrorCode, message string) *StructuredError {
	return &StructuredError{Message: message, Kind: kind, Code: code}
}

// Newf creates a StructuredError with a formatted message.
func Newf(kind ErrorKind, code errors.ErrorCode, format string, args ...any) *StructuredError {
	return New(kind, code, fmt.Sprintf(format, args...))
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// WithHint sets a suggestion shown after the message.
func (e *StructuredError) WithHint(hint string) *StructuredError {
	e.Hint = hint
	return e
}

// WithLocation sets the source location, unless one was already recorded
// closer to where the error happened.
func (e *StructuredError) WithLocation(loc SourceLocation) *StructuredError {
	if e.Location.IsZero() {
		e.Location = loc
	}
	return e
}

// WithStack sets the call stack, unless one was already recorded.
func (e *StructuredError) WithStack(stack []StackFrame) *StructuredError {
	if e.Stack == nil && len(stack) > 0 {
		e.Stack = append([]StackFrame(nil), stack...)
	}
	return e
}

// GetStack returns the stack frames of the error.
func (e *StructuredError) GetStack() []StackFrame {
	return e.Stack
}

// GetLocation returns the source location of the error.
func (e *StructuredError) GetLocation() SourceLocation {
	return e.Location
}

// As returns the StructuredError in err's chain, if any.
func As(err error) (*StructuredError, bool) {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err is a StructuredError with the given code.
func HasCode(err error, code errors.ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}
