package object

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringIndexAndLength(t *testing.T) {
	s := NewString("héllo😀")
	length, ok := s.GetAttr("length")
	require.True(t, ok)
	require.Equal(t, NewNumber(7), length)

	c, ok := s.GetAttr("1")
	require.True(t, ok)
	require.Equal(t, NewString("é"), c)

	c, ok = s.GetAttr("10")
	require.True(t, ok)
	require.Equal(t, Undefined, c)

	_, ok = s.GetAttr("constructor")
	require.False(t, ok)

	require.EqualError(t, s.SetAttr("length", NewNumber(1)), "Cannot set property length of string")
}

func TestStringMethods(t *testing.T) {
	s := NewString("Hello, World")
	tests := []struct {
		method string
		args   []Object
		want   Object
	}{
		{"charAt", []Object{NewNumber(4)}, NewString("o")},
		{"charAt", []Object{NewNumber(40)}, NewString("")},
		{"charCodeAt", []Object{NewNumber(0)}, NewNumber(72)},
		{"endsWith", []Object{NewString("World")}, True},
		{"endsWith", []Object{NewString("Hello"), NewNumber(5)}, True},
		{"startsWith", []Object{NewString("Hello")}, True},
		{"startsWith", []Object{NewString("World"), NewNumber(7)}, True},
		{"indexOf", []Object{NewString("o")}, NewNumber(4)},
		{"indexOf", []Object{NewString("o"), NewNumber(5)}, NewNumber(8)},
		{"indexOf", []Object{NewString("x")}, NewNumber(-1)},
		{"lastIndexOf", []Object{NewString("o")}, NewNumber(8)},
		{"slice", []Object{NewNumber(-5)}, NewString("World")},
		{"slice", []Object{NewNumber(0), NewNumber(5)}, NewString("Hello")},
		{"toLowerCase", nil, NewString("hello, world")},
		{"toUpperCase", nil, NewString("HELLO, WORLD")},
		{"replace", []Object{NewString("o"), NewString("0")}, NewString("Hell0, World")},
	}
	for _, tt := range tests {
		got := callMethod(t, s, tt.method, tt.args...)
		require.Equal(t, tt.want, got, tt.method)
	}
	require.Equal(t, NewString("a b"), callMethod(t, NewString("  a b \n"), "trim"))
}

func TestStringSplit(t *testing.T) {
	parts := callMethod(t, NewString("a,b,c"), "split", NewString(","))
	require.Equal(t, []any{"a", "b", "c"}, parts.Interface())

	parts = callMethod(t, NewString("abc"), "split", NewString(""))
	require.Equal(t, []any{"a", "b", "c"}, parts.Interface())

	parts = callMethod(t, NewString("a,b,c"), "split", NewString(","), NewNumber(2))
	require.Equal(t, []any{"a", "b"}, parts.Interface())

	parts = callMethod(t, NewString("abc"), "split")
	require.Equal(t, []any{"abc"}, parts.Interface())

	re, err := NewRegexp(`\s*;\s*`, "")
	require.NoError(t, err)
	parts = callMethod(t, NewString("a ; b;c"), "split", re)
	require.Equal(t, []any{"a", "b", "c"}, parts.Interface())
}

func TestRegexp(t *testing.T) {
	re, err := NewRegexp("h(i)?", "gi")
	require.NoError(t, err)
	require.Equal(t, "/h(i)?/gi", re.Inspect())
	require.Equal(t, True, callMethod(t, re, "test", NewString("HI")))

	matches := callMethod(t, NewString("Hi there"), "match", re)
	require.Equal(t, []any{"Hi", "h"}, matches.Interface())

	once, err := NewRegexp(`(\d)(x)?`, "")
	require.NoError(t, err)
	matches = callMethod(t, NewString("a1b2"), "match", once)
	require.Equal(t, []any{"1", "1", nil}, matches.Interface())
	require.Equal(t, Undefined, matches.(*List).Get(2))

	require.Equal(t, Null, callMethod(t, NewString("abc"), "match", once))

	_, err = NewRegexp("a", "x")
	require.Error(t, err)
	_, err = NewRegexp("a", "ii")
	require.Error(t, err)
	_, err = NewRegexp("(", "")
	require.Error(t, err)
}

func TestStringReplace(t *testing.T) {
	email, err := NewRegexp(`(\w+)@(\w+)`, "")
	require.NoError(t, err)
	got := callMethod(t, NewString("me@host!"), "replace", email, NewString("$2 at $1 [$&] $$"))
	require.Equal(t, NewString("host at me [me@host] $!"), got)

	all, err := NewRegexp("o", "g")
	require.NoError(t, err)
	got = callMethod(t, NewString("foo boo"), "replace", all, NewString("0"))
	require.Equal(t, NewString("f00 b00"), got)

	upper := NewBuiltin("upper", func(ctx context.Context, args ...Object) (Object, error) {
		return callMethod(t, args[0], "toUpperCase"), nil
	})
	got = callMethod(t, NewString("foo boo"), "replace", all, upper)
	require.Equal(t, NewString("fOO bOO"), got)

	got = callMethod(t, NewString("a.b.c"), "replace", NewString("."), NewString("-"))
	require.Equal(t, NewString("a-b.c"), got)

	attr, _ := NewString("abc").GetAttr("replace")
	_, err = attr.(Callable).Call(context.Background())
	require.EqualError(t, err, "string.replace: expected 2 arguments, got 0")
}
