package syntax

import (
	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
)

// SyntaxConfig selects language features to reject. The zero value allows
// everything the parser accepts; assignment and statements are controlled
// by the parser itself.
type SyntaxConfig struct {
	DisallowArrowFunctions   bool
	DisallowCalls            bool
	DisallowConditionals     bool // ternaries and if statements
	DisallowOptionalChaining bool
	DisallowSpread           bool
	DisallowBitwise          bool
}

// SyntaxValidator validates an AST against a SyntaxConfig.
type SyntaxValidator struct {
	config SyntaxConfig
}

// NewSyntaxValidator creates a validator for the given configuration.
func NewSyntaxValidator(config SyntaxConfig) *SyntaxValidator {
	return &SyntaxValidator{config: config}
}

// Validate checks the AST against the syntax configuration.
func (v *SyntaxValidator) Validate(program *ast.Program) []ValidationError {
	var errs []ValidationError
	for node := range ast.Preorder(program) {
		if msg := v.check(node); msg != "" {
			errs = append(errs, ValidationError{
				Code:     errors.E1010,
				Message:  msg,
				Node:     node,
				Position: node.Pos(),
			})
		}
	}
	return errs
}

var bitwiseOps = map[string]bool{
	"&": true, "|": true, "^": true, "<<": true, ">>": true, ">>>": true, "~": true,
}

func (v *SyntaxValidator) check(node ast.Node) string {
	c := v.config
	switch n := node.(type) {
	case *ast.Arrow:
		if c.DisallowArrowFunctions {
			return "arrow functions are not allowed"
		}
	case *ast.Call:
		if c.DisallowCalls {
			return "function calls are not allowed"
		}
	case *ast.Ternary, *ast.If:
		if c.DisallowConditionals {
			return "conditional expressions are not allowed"
		}
	case *ast.Member:
		if n.Optional && c.DisallowOptionalChaining {
			return "optional chaining is not allowed"
		}
	case *ast.Spread:
		if c.DisallowSpread {
			return "spread syntax is not allowed"
		}
	case *ast.Binary:
		if c.DisallowBitwise && bitwiseOps[n.Op] {
			return "bitwise operators are not allowed"
		}
	case *ast.Unary:
		if c.DisallowBitwise && bitwiseOps[n.Op] {
			return "bitwise operators are not allowed"
		}
	}
	return ""
}
