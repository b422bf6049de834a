// Package syntax checks and rewrites parsed expressions before they are
// compiled. Hosts use it to restrict the language available to a particular
// kind of expression, or to require that every name is known in advance.
package syntax

import (
	"fmt"
	"strings"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/internal/token"
)

// ValidationError represents a syntax restriction violation.
type ValidationError struct {
	Code     errors.ErrorCode
	Message  string         // description of the violation
	Node     ast.Node       // the offending node
	Position token.Position // source location
	Hint     string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// ToFormatted converts the error for display by errors.Formatter.
func (e *ValidationError) ToFormatted() *errors.FormattedError {
	return &errors.FormattedError{
		Code:     e.Code,
		Kind:     "syntax error",
		Message:  e.Message,
		Filename: e.Position.File,
		Line:     e.Position.LineNumber(),
		Column:   e.Position.ColumnNumber(),
		Hint:     e.Hint,
	}
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns the first error for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}
	return nil
}

// ToFormattedMultiple converts all errors for display.
func (e *ValidationErrors) ToFormattedMultiple() []*errors.FormattedError {
	out := make([]*errors.FormattedError, len(e.Errors))
	for i := range e.Errors {
		out[i] = e.Errors[i].ToFormatted()
	}
	return out
}

// Validator inspects an AST and returns validation errors.
// Validators should not modify the AST.
type Validator interface {
	// Validate checks the AST and returns any validation errors.
	// Multiple errors may be returned to show all violations at once.
	Validate(program *ast.Program) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Program) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(p *ast.Program) []ValidationError {
	return f(p)
}

// Check runs all validators and returns their errors combined, or nil.
func Check(program *ast.Program, validators ...Validator) error {
	var errs []ValidationError
	for _, v := range validators {
		errs = append(errs, v.Validate(program)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationErrors{Errors: errs}
}

// Transformer modifies an AST before compilation.
// Transformers receive ownership of the AST and return a (possibly new) AST.
type Transformer interface {
	Transform(program *ast.Program) (*ast.Program, error)
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(*ast.Program) (*ast.Program, error)

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(p *ast.Program) (*ast.Program, error) {
	return f(p)
}
