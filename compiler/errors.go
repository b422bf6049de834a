package compiler

import (
	"fmt"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/internal/token"
)

// Error is returned for syntax trees that have no IR form. Trees produced
// by the parser never cause one.
type Error struct {
	Message  string
	Filename string
	Pos      token.Position
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return "compile error: " + e.Message
	}
	filename := e.Filename
	if filename == "" {
		filename = "unknown"
	}
	return fmt.Sprintf("compile error: %s\n\nlocation: %s:%d:%d (line %d, column %d)",
		e.Message, filename, e.Pos.LineNumber(), e.Pos.ColumnNumber(),
		e.Pos.LineNumber(), e.Pos.ColumnNumber())
}

// ToFormatted converts the error for display by errors.Formatter.
func (e *Error) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Kind:     "compile error",
		Message:  e.Message,
		Filename: e.Filename,
	}
	if e.Pos.IsValid() {
		fe.Line = e.Pos.LineNumber()
		fe.Column = e.Pos.ColumnNumber()
	}
	return fe
}
