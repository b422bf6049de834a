package ast

import (
	"testing"

	"github.com/jcormont/expression-runner/internal/token"
	"github.com/stretchr/testify/require"
)

func ident(name string) *Ident {
	return &Ident{Name: name}
}

func TestString(t *testing.T) {
	tests := []struct {
		node     Node
		expected string
	}{
		{&Binary{X: ident("a"), Op: "+", Y: &Binary{X: ident("b"), Op: "*", Y: &Number{Value: 2}}}, "(a + (b * 2))"},
		{&Unary{Op: "typeof", X: ident("x")}, "(typeof x)"},
		{&Unary{Op: "!", X: ident("x")}, "(!x)"},
		{&Member{X: ident("a"), Steps: []Step{{Name: "b"}, {Index: &Number{Literal: "0"}}}}, "a.b[0]"},
		{&Member{X: &Member{X: ident("a"), Steps: []Step{{Name: "b"}}}, Steps: []Step{{Name: "c"}, {Name: "d"}}, Optional: true}, "a.b?.c.d"},
		{&Call{Fun: ident("f"), Args: []Expr{&Number{Literal: "1"}, &String{Literal: "'x'"}}}, "f(1, 'x')"},
		{&Arrow{Params: []*Ident{ident("x"), ident("y")}, Body: ident("x")}, "(x, y) => x"},
		{&Array{Items: []Expr{&Number{Literal: "1"}, &Hole{}, &Spread{X: ident("a")}}}, "[1, , ...a]"},
		{&Object{Items: []Expr{&Property{Key: ident("a"), Value: ident("a"), Shorthand: true}, &Property{Key: &String{Literal: `"b"`}, Value: &Null{}}, &Spread{X: ident("c")}}}, `{ a, "b": null, ...c }`},
		{&Object{}, "{}"},
		{&Ternary{Cond: ident("a"), Consequence: &Bool{Value: true}, Alternative: &Undefined{}}, "(a ? true : undefined)"},
		{&Assign{Target: ident("a"), Op: "+=", Value: &Number{Value: 1.5}}, "a += 1.5"},
		{&Sequence{Exprs: []Expr{ident("a"), ident("b")}, Parens: true}, "(a, b)"},
		{&If{Cond: ident("a"), Consequence: &Block{Stmts: []Stmt{&ExprStmt{X: ident("b")}, &ExprStmt{X: ident("c")}}}, Alternative: &ExprStmt{X: ident("d")}}, "if (a) { b; c } else d"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.node.String())
	}
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "literal", Describe(&Number{}))
	require.Equal(t, "literal", Describe(&Undefined{}))
	require.Equal(t, "variable or object", Describe(ident("a")))
	require.Equal(t, "call expression", Describe(&Call{}))
	require.Equal(t, "dual operand expression", Describe(&Binary{}))
	require.Equal(t, "expression", Describe(&Sequence{}))
}

func TestPositions(t *testing.T) {
	x := &Ident{NamePos: token.Position{Char: 4, Column: 4}, Name: "abc"}
	require.Equal(t, 7, x.End().Char)
	m := &Member{X: x, Steps: []Step{{Name: "d", EndPos: token.Position{Char: 9}}}}
	require.Equal(t, 4, m.Pos().Char)
	require.Equal(t, 9, m.End().Char)
}
