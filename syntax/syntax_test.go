package syntax

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/parser"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), source,
		parser.WithAssignment(true), parser.WithStatements(true))
	require.NoError(t, err)
	return program
}

func messages(errs []ValidationError) []string {
	var out []string
	for _, err := range errs {
		out = append(out, err.Message)
	}
	return out
}

func TestSyntaxValidator(t *testing.T) {
	tests := []struct {
		config SyntaxConfig
		input  string
		want   []string
	}{
		{SyntaxConfig{}, "a?.b([...c], x => ~x ? 1 : 2)", nil},
		{SyntaxConfig{DisallowArrowFunctions: true}, "items.map(i => i.price)", []string{"arrow functions are not allowed"}},
		{SyntaxConfig{DisallowCalls: true}, "f(1) + g()", []string{"function calls are not allowed", "function calls are not allowed"}},
		{SyntaxConfig{DisallowConditionals: true}, "a ? 1 : 2", []string{"conditional expressions are not allowed"}},
		{SyntaxConfig{DisallowConditionals: true}, "if (a) b = 1", []string{"conditional expressions are not allowed"}},
		{SyntaxConfig{DisallowOptionalChaining: true}, "a.b", nil},
		{SyntaxConfig{DisallowOptionalChaining: true}, "a?.b", []string{"optional chaining is not allowed"}},
		{SyntaxConfig{DisallowSpread: true}, "[...a]", []string{"spread syntax is not allowed"}},
		{SyntaxConfig{DisallowBitwise: true}, "a | b", []string{"bitwise operators are not allowed"}},
		{SyntaxConfig{DisallowBitwise: true}, "~a", []string{"bitwise operators are not allowed"}},
		{SyntaxConfig{DisallowBitwise: true}, "a || b", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			errs := NewSyntaxValidator(tt.config).Validate(parse(t, tt.input))
			require.Equal(t, tt.want, messages(errs))
			for _, err := range errs {
				require.Equal(t, errors.E1010, err.Code)
			}
		})
	}
}

func TestValidationErrorPosition(t *testing.T) {
	errs := NewSyntaxValidator(SyntaxConfig{DisallowCalls: true}).Validate(parse(t, "1 +\n  f()"))
	require.Len(t, errs, 1)
	require.Equal(t, "function calls are not allowed at line 2, column 3", errs[0].Error())
	f := errs[0].ToFormatted()
	require.Equal(t, 2, f.Line)
	require.Equal(t, 3, f.Column)
	require.Equal(t, "syntax error", f.Kind)
}

func TestNameValidator(t *testing.T) {
	tests := []struct {
		known []string
		input string
		want  []string
	}{
		{[]string{"price", "qty"}, "price * qty", nil},
		{[]string{"price"}, "price * qty", []string{"Unknown name: qty"}},
		{[]string{"items"}, "items.map(i => i.price)", nil},
		{nil, "total = 1; total + 1", nil},
		{nil, "$_ + 1", nil},
		{nil, "{a: 1, b}", []string{"Unknown name: b"}},
		{nil, "x + x + y", []string{"Unknown name: x", "Unknown name: y"}},
		{[]string{"f"}, "f(x => x, x)", []string{"Unknown name: x"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			errs := NewNameValidator(tt.known...).Validate(parse(t, tt.input))
			require.Equal(t, tt.want, messages(errs))
		})
	}
}

func TestNameValidatorHint(t *testing.T) {
	errs := NewNameValidator("quantity", "price").Validate(parse(t, "quantiy * price"))
	require.Len(t, errs, 1)
	require.Equal(t, "Did you mean 'quantity'?", errs[0].Hint)
	require.Equal(t, errors.E1011, errs[0].Code)
}

func TestCheck(t *testing.T) {
	program := parse(t, "f(a)")
	require.NoError(t, Check(program))
	require.NoError(t, Check(program, NewNameValidator("f", "a")))

	err := Check(program,
		NewSyntaxValidator(SyntaxConfig{DisallowCalls: true}),
		NewNameValidator(),
	)
	var verrs *ValidationErrors
	require.True(t, stderrors.As(err, &verrs))
	require.Len(t, verrs.Errors, 3)
	require.Contains(t, err.Error(), "3 validation errors:")
	require.Len(t, verrs.ToFormattedMultiple(), 3)

	var first *ValidationError
	require.True(t, stderrors.As(err, &first))
	require.Equal(t, "function calls are not allowed", first.Message)
}

func TestValidatorFunc(t *testing.T) {
	called := false
	v := ValidatorFunc(func(p *ast.Program) []ValidationError {
		called = true
		return []ValidationError{{Message: "custom", Node: p, Position: p.Pos()}}
	})
	err := Check(parse(t, "1"), v)
	require.True(t, called)
	require.EqualError(t, err, "custom at line 1, column 1")
}

func TestTransformerFunc(t *testing.T) {
	// Rename every reference to "old" so that older expressions keep working.
	rename := TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		for node := range ast.Preorder(p) {
			if ident, ok := node.(*ast.Ident); ok && ident.Name == "old" {
				ident.Name = "current"
			}
		}
		return p, nil
	})
	program, err := rename.Transform(parse(t, "old + 1"))
	require.NoError(t, err)
	require.Equal(t, "(current + 1)", program.String())

	failing := TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		return nil, stderrors.New("transform failed")
	})
	_, err = failing.Transform(program)
	require.EqualError(t, err, "transform failed")
}
