package errz

import (
	"fmt"
	"testing"

	"github.com/jcormont/expression-runner/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorReturnsMessageOnly(t *testing.T) {
	err := Newf(ErrName, errors.E3001, "Variable is not defined: %s", "x")
	require.Equal(t, "Variable is not defined: x", err.Error())
	require.Equal(t, ErrName, err.Kind)
	require.Equal(t, errors.E3001, err.Code)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "runtime error", ErrRuntime.String())
	require.Equal(t, "name error", ErrName.String())
	require.Equal(t, "type error", ErrType.String())
	require.Equal(t, "access error", ErrAccess.String())
	require.Equal(t, "host error", ErrHost.String())
	require.Equal(t, "error", ErrorKind(99).String())
}

func TestWithLocationKeepsFirst(t *testing.T) {
	err := New(ErrType, errors.E3004, "Not a function")
	err.WithLocation(SourceLocation{Line: 1, Column: 3, Source: "a()"})
	err.WithLocation(SourceLocation{Line: 9, Column: 9})
	require.Equal(t, 1, err.Location.Line)
	require.Equal(t, 3, err.Location.Column)

	friendly := err.FriendlyErrorMessage()
	require.Equal(t, "type error: Not a function (1:3)\n | a()\n |   ^\n", friendly)
}

func TestWithStack(t *testing.T) {
	stack := []StackFrame{{Function: "f"}}
	err := New(ErrRuntime, errors.E3007, "too deep").WithStack(stack)
	stack[0].Function = "g"
	require.Equal(t, "f", err.Stack[0].Function)
	err.WithStack([]StackFrame{{Function: "h"}})
	require.Equal(t, "f", err.GetStack()[0].Function)
	require.Contains(t, err.FriendlyErrorMessage(), "Stack trace:\n  at f\n")
}

func TestAsAndHasCode(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(ErrHost, errors.E3006, "boom").WithCause(cause)
	wrapped := fmt.Errorf("evaluating: %w", err)

	se, ok := As(wrapped)
	require.True(t, ok)
	require.Same(t, err, se)
	require.ErrorIs(t, wrapped, cause)
	require.True(t, HasCode(wrapped, errors.E3006))
	require.False(t, HasCode(wrapped, errors.E3001))
	require.False(t, HasCode(cause, errors.E3006))
}

func TestToFormatted(t *testing.T) {
	err := New(ErrAccess, errors.E3003, "Cannot assign to a.__proto__").
		WithLocation(SourceLocation{Filename: "rules.yaml", Line: 2, Column: 1, Source: "a.__proto__ = 1"})
	fe := err.ToFormatted()
	require.Equal(t, "access error", fe.Kind)
	require.Equal(t, errors.E3003, fe.Code)
	require.Len(t, fe.SourceLines, 1)
	out := errors.Format(err, false)
	require.Contains(t, out, "access error[E3003]: Cannot assign to a.__proto__")
	require.Contains(t, out, "--> rules.yaml:2:1")
}
