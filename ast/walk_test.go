package ast

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleProgram() *Program {
	// f = (x) => x + y; g(f, {a}).b
	return &Program{
		Stmts: []Stmt{
			&ExprStmt{X: &Assign{
				Target: ident("f"),
				Op:     "=",
				Value: &Arrow{
					Params: []*Ident{ident("x")},
					Body:   &Binary{X: ident("x"), Op: "+", Y: ident("y")},
				},
			}},
			&ExprStmt{X: &Member{
				X: &Call{Fun: ident("g"), Args: []Expr{
					ident("f"),
					&Object{Items: []Expr{&Property{Key: ident("a"), Value: ident("a"), Shorthand: true}}},
				}},
				Steps: []Step{{Name: "b"}},
			}},
		},
	}
}

func TestInspect(t *testing.T) {
	var visited []string
	Inspect(sampleProgram(), func(n Node) bool {
		switch node := n.(type) {
		case *Program:
			visited = append(visited, "Program")
		case *Assign:
			visited = append(visited, "Assign")
		case *Arrow:
			visited = append(visited, "Arrow")
			return false
		case *Call:
			visited = append(visited, "Call")
		case *Ident:
			visited = append(visited, "Ident:"+node.Name)
		}
		return true
	})
	expected := []string{"Program", "Assign", "Ident:f", "Arrow", "Call", "Ident:g", "Ident:f", "Ident:a", "Ident:a"}
	require.Equal(t, expected, visited)
}

func TestPreorderStopsEarly(t *testing.T) {
	count := 0
	for n := range Preorder(sampleProgram()) {
		count++
		if _, ok := n.(*Arrow); ok {
			break
		}
	}
	require.Equal(t, 5, count)
}

func TestFreeVariables(t *testing.T) {
	names := FreeVariables(sampleProgram())
	require.Equal(t, []string{"f", "y", "g", "a"}, names)
	require.False(t, slices.Contains(names, "x"))
}
