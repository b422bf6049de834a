package syntax

import (
	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
)

// NameValidator reports references to names that are not known: neither
// given in Known, nor assigned by the expression itself, nor arrow function
// parameters. It lets a host reject a misspelled variable when an
// expression is saved rather than when it is first evaluated.
type NameValidator struct {
	Known []string
}

// NewNameValidator creates a validator accepting the given names.
func NewNameValidator(known ...string) *NameValidator {
	return &NameValidator{Known: known}
}

// Validate implements the Validator interface.
func (v *NameValidator) Validate(program *ast.Program) []ValidationError {
	known := make(map[string]bool, len(v.Known))
	for _, name := range v.Known {
		known[name] = true
	}
	for node := range ast.Preorder(program) {
		if assign, ok := node.(*ast.Assign); ok {
			if ident, ok := assign.Target.(*ast.Ident); ok {
				known[ident.Name] = true
			}
		}
	}

	var errs []ValidationError
	reported := map[string]bool{}
	candidates := append([]string{"$_"}, v.Known...)
	visitFree(program, map[string]bool{}, func(ident *ast.Ident) {
		if known[ident.Name] || ident.Name == "$_" || reported[ident.Name] {
			return
		}
		reported[ident.Name] = true
		errs = append(errs, ValidationError{
			Code:     errors.E1011,
			Message:  "Unknown name: " + ident.Name,
			Node:     ident,
			Position: ident.Pos(),
			Hint:     errors.FormatSuggestions(errors.SuggestSimilar(ident.Name, candidates)),
		})
	})
	return errs
}

// visitFree calls f for each identifier that is not an arrow function
// parameter in scope.
func visitFree(n ast.Node, bound map[string]bool, f func(*ast.Ident)) {
	switch node := n.(type) {
	case *ast.Ident:
		if !bound[node.Name] {
			f(node)
		}
		return
	case *ast.Property:
		visitFree(node.Value, bound, f)
		return
	case *ast.Arrow:
		inner := make(map[string]bool, len(bound)+len(node.Params))
		for k := range bound {
			inner[k] = true
		}
		for _, p := range node.Params {
			inner[p.Name] = true
		}
		visitFree(node.Body, inner, f)
		return
	}
	for _, child := range ast.Children(n) {
		visitFree(child, bound, f)
	}
}
