package object

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }

func TestFromGo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var nilPtr *int
	tests := []struct {
		name  string
		input any
		want  Object
	}{
		{"nil", nil, Null},
		{"bool", true, True},
		{"int8", int8(-3), NewNumber(-3)},
		{"uint64", uint64(7), NewNumber(7)},
		{"float32", float32(0.5), NewNumber(0.5)},
		{"string", "x", NewString("x")},
		{"bytes", []byte("hi"), NewString("hi")},
		{"nil pointer", nilPtr, Null},
		{"func", func() {}, Undefined},
		{"time", now, NewTime(now)},
		{"object", NewNumber(1), NewNumber(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FromGo(tt.input))
		})
	}
}

func TestFromGoContainers(t *testing.T) {
	obj := FromGo(map[string]any{
		"b": []any{1, "two", nil},
		"a": map[string]int{"y": 2, "x": 1},
		"c": []string{"s"},
	})
	m, ok := obj.(*Map)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, m.Keys())

	a, _ := m.Get("a")
	require.Equal(t, []string{"x", "y"}, a.(*Map).Keys())

	require.Equal(t, map[string]any{
		"a": map[string]any{"x": 1.0, "y": 2.0},
		"b": []any{1.0, "two", nil},
		"c": []any{"s"},
	}, m.Interface())

	keyed := FromGo(map[int]string{2: "b", 1: "a"}).(*Map)
	require.Equal(t, []string{"1", "2"}, keyed.Keys())

	re := FromGo(regexp.MustCompile("a+"))
	require.Equal(t, REGEXP, re.Type())

	p := &point{1, 2}
	opaque := FromGo(p)
	require.Equal(t, OPAQUE, opaque.Type())
	require.Same(t, p, opaque.Interface())
	_, ok = opaque.GetAttr("X")
	require.False(t, ok)
	require.Equal(t, OPAQUE, FromGo(point{}).Type())
}

func TestToGo(t *testing.T) {
	v, err := ToGo(NewNumber(3), reflect.TypeOf(0))
	require.NoError(t, err)
	require.Equal(t, 3, v.Interface())

	v, err = ToGo(NewList([]Object{NewString("a"), NewString("b")}), reflect.TypeOf([]string{}))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, v.Interface())

	m := NewMap()
	m.Set("k", NewNumber(1.5))
	v, err = ToGo(m, reflect.TypeOf(map[string]float64{}))
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"k": 1.5}, v.Interface())

	v, err = ToGo(m, reflect.TypeOf((*any)(nil)).Elem())
	require.NoError(t, err)
	require.Equal(t, map[string]any{"k": 1.5}, v.Interface())

	v, err = ToGo(Undefined, reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "", v.Interface())

	v, err = ToGo(NewNumber(2), reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "2", v.Interface())

	v, err = ToGo(m, reflect.TypeOf((*Map)(nil)))
	require.NoError(t, err)
	require.Same(t, m, v.Interface())

	p := &point{1, 2}
	v, err = ToGo(NewOpaque(p), reflect.TypeOf(p))
	require.NoError(t, err)
	require.Same(t, p, v.Interface())

	_, err = ToGo(NewString("x"), reflect.TypeOf(0))
	require.EqualError(t, err, "cannot convert string to int")

	_, err = ToGo(NewList([]Object{True}), reflect.TypeOf([]int{}))
	require.EqualError(t, err, "item 0: cannot convert boolean true to int")
}

func TestGoFunc(t *testing.T) {
	ctx := context.Background()

	add := MustGoFunc("add", func(a, b int) int { return a + b })
	result, err := add.Call(ctx, NewNumber(1), NewNumber(2))
	require.NoError(t, err)
	require.Equal(t, NewNumber(3), result)

	result, err = add.Call(ctx, NewNumber(1))
	require.NoError(t, err)
	require.Equal(t, NewNumber(1), result)

	result, err = add.Call(ctx, NewNumber(1), NewNumber(2), NewNumber(3))
	require.NoError(t, err)
	require.Equal(t, NewNumber(3), result)

	sum := MustGoFunc("sum", func(prefix string, xs ...float64) string {
		total := 0.0
		for _, x := range xs {
			total += x
		}
		return prefix + FormatNumber(total)
	})
	result, err = sum.Call(ctx, NewString("="), NewNumber(1), NewNumber(2.5))
	require.NoError(t, err)
	require.Equal(t, NewString("=3.5"), result)

	type key struct{}
	withCtx := MustGoFunc("get", func(ctx context.Context, name string) string {
		return ctx.Value(key{}).(string) + name
	})
	result, err = withCtx.Call(context.WithValue(ctx, key{}, "hello "), NewString("you"))
	require.NoError(t, err)
	require.Equal(t, NewString("hello you"), result)

	failing := MustGoFunc("fail", func() (int, error) { return 0, errors.New("boom") })
	_, err = failing.Call(ctx)
	require.EqualError(t, err, "boom")

	nothing := MustGoFunc("nothing", func() error { return nil })
	result, err = nothing.Call(ctx)
	require.NoError(t, err)
	require.Equal(t, Undefined, result)

	pair := MustGoFunc("pair", func() (string, bool) { return "a", true })
	result, err = pair.Call(ctx)
	require.NoError(t, err)
	require.Equal(t, []any{"a", true}, result.Interface())

	panics := MustGoFunc("panics", func() int { panic("bad") })
	_, err = panics.Call(ctx)
	require.EqualError(t, err, "panic in panics: bad")

	_, err = add.Call(ctx, NewString("x"))
	require.EqualError(t, err, "add: argument 1: cannot convert string to int")

	_, err = NewGoFunc("nope", 42)
	require.EqualError(t, err, "nope: expected a function, got int")
}

func TestJSON(t *testing.T) {
	m := NewMap()
	m.Set("b", NewList([]Object{NewNumber(1), Undefined, NewString("<x>"), NewClosure(nil, nil, nil)}))
	m.Set("a", NewNumber(0.5))
	m.Set("skip", Undefined)
	m.Set("nan", NewNumber(nan))
	m.Set("when", TimeFromMillis(0, time.UTC))

	out, ok, err := ToJSON(m, "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"b":[1,null,"<x>",null],"a":0.5,"nan":null,"when":"1970-01-01T00:00:00.000Z"}`, out)

	small := NewMap()
	small.Set("a", NewNumber(1))
	small.Set("b", NewList([]Object{True}))
	small.Set("c", NewMap())
	out, _, err = ToJSON(small, "  ")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ],\n  \"c\": {}\n}", out)

	_, ok, err = ToJSON(Undefined, "")
	require.NoError(t, err)
	require.False(t, ok)

	cycle := NewList(nil)
	cycle.Append(cycle)
	_, _, err = ToJSON(cycle, "")
	require.EqualError(t, err, "Converting circular structure to JSON")
}

func TestInterfaceCircular(t *testing.T) {
	shared := NewList([]Object{NewNumber(1)})
	m := NewMap()
	m.Set("self", m)
	m.Set("a", shared)
	m.Set("b", shared)
	list := NewList([]Object{m})
	list.Append(list)

	require.Equal(t, map[string]any{
		"self": nil,
		"a":    []any{1.0},
		"b":    []any{1.0},
	}, m.Interface())
	require.Equal(t, []any{
		map[string]any{"self": nil, "a": []any{1.0}, "b": []any{1.0}},
		nil,
	}, list.Interface())
}

func TestFromJSON(t *testing.T) {
	obj, err := FromJSON(`{"b": 1, "a": [true, null, "x", 1.5e2], "c": {}}`)
	require.NoError(t, err)
	m := obj.(*Map)
	require.Equal(t, []string{"b", "a", "c"}, m.Keys())
	require.Equal(t, map[string]any{
		"b": 1.0,
		"a": []any{true, nil, "x", 150.0},
		"c": map[string]any{},
	}, m.Interface())

	for _, input := range []string{"", "1 2", "{", `{"a" 1}`, "[1,]"} {
		_, err := FromJSON(input)
		require.Error(t, err, input)
	}
}
