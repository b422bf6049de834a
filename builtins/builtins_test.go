package builtins

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jcormont/expression-runner/object"
)

func call(t *testing.T, name string, args ...object.Object) (object.Object, error) {
	t.Helper()
	fn, ok := Builtins()[name]
	require.True(t, ok, "no builtin named %s", name)
	return fn.(*object.Builtin).Call(context.Background(), args...)
}

func mustCall(t *testing.T, name string, args ...object.Object) object.Object {
	t.Helper()
	result, err := call(t, name, args...)
	require.NoError(t, err)
	return result
}

func num(f float64) object.Object { return object.NewNumber(f) }
func str(s string) object.Object  { return object.NewString(s) }

func list(items ...object.Object) *object.List {
	return object.NewList(items)
}

func toJSON(t *testing.T, obj object.Object) string {
	t.Helper()
	s, _, err := object.ToJSON(obj, "")
	require.NoError(t, err)
	return s
}

func TestBuiltins(t *testing.T) {
	m := Builtins()
	require.Len(t, m, len(Docs()))
	for _, spec := range Docs() {
		fn, ok := m[spec.Name]
		require.True(t, ok, spec.Name)
		require.Equal(t, spec.Name, fn.(*object.Builtin).Name())
	}
	_, ok := Doc("sortBy")
	require.True(t, ok)
	_, ok = Doc("eval")
	require.False(t, ok)
}

func TestMath(t *testing.T) {
	tests := []struct {
		name string
		args []object.Object
		want float64
	}{
		{"abs", []object.Object{num(-3)}, 3},
		{"floor", []object.Object{num(1.7)}, 1},
		{"ceil", []object.Object{num(1.2)}, 2},
		{"round", []object.Object{num(2.5)}, 3},
		{"round", []object.Object{num(-2.5)}, -2},
		{"round", []object.Object{str("1.4")}, 1},
		{"min", []object.Object{num(3), num(1), num(2)}, 1},
		{"max", []object.Object{num(3), num(1), num(2)}, 3},
		{"min", nil, math.Inf(1)},
		{"max", nil, math.Inf(-1)},
		{"pow", []object.Object{num(2), num(10)}, 1024},
		{"sqrt", []object.Object{num(16)}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustCall(t, tt.name, tt.args...)
			require.Equal(t, tt.want, result.(*object.Number).Value())
		})
	}
	result := mustCall(t, "max", num(1), object.Undefined)
	require.True(t, math.IsNaN(result.(*object.Number).Value()))
}

func TestRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		x := mustCall(t, "random").(*object.Number).Value()
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 1.0)
	}
}

func TestTypes(t *testing.T) {
	require.Equal(t, "object", mustCall(t, "typeof", list()).Inspect())
	require.Equal(t, "undefined", mustCall(t, "typeof").Inspect())
	require.Equal(t, "function", mustCall(t, "typeof", Builtins()["str"]).Inspect())
	require.Equal(t, "null", mustCall(t, "str", object.Null).Inspect())
	require.Equal(t, "1,2", mustCall(t, "str", list(num(1), num(2))).Inspect())
	require.Equal(t, "AB", mustCall(t, "chr", num(65), num(66)).Inspect())

	require.False(t, mustCall(t, "isDefined", object.Null).IsTruthy())
	require.True(t, mustCall(t, "isDefined", num(0)).IsTruthy())
	require.True(t, mustCall(t, "isArray", list()).IsTruthy())
	require.False(t, mustCall(t, "isArray", str("[]")).IsTruthy())
	require.True(t, mustCall(t, "isObject", object.NewMap()).IsTruthy())
	require.False(t, mustCall(t, "isObject", list()).IsTruthy())
	require.False(t, mustCall(t, "isObject", object.Null).IsTruthy())
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		name  string
		args  []object.Object
		want  float64
		isNaN bool
	}{
		{"parseFloat", []object.Object{str("  3.5kg")}, 3.5, false},
		{"parseFloat", []object.Object{str("-.5e2x")}, -50, false},
		{"parseFloat", []object.Object{str("1e")}, 1, false},
		{"parseFloat", []object.Object{str("-Infinity")}, math.Inf(-1), false},
		{"parseFloat", []object.Object{str("abc")}, 0, true},
		{"parseInt", []object.Object{str("42px")}, 42, false},
		{"parseInt", []object.Object{str("-0x1F")}, -31, false},
		{"parseInt", []object.Object{str("ff"), num(16)}, 255, false},
		{"parseInt", []object.Object{str("12"), num(1)}, 0, true},
		{"parseInt", []object.Object{str("3.9")}, 3, false},
		{"parseInt", []object.Object{str("")}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.args[0].Inspect(), func(t *testing.T) {
			got := mustCall(t, tt.name, tt.args...).(*object.Number).Value()
			if tt.isNaN {
				require.True(t, math.IsNaN(got))
				return
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestKeys(t *testing.T) {
	m := object.NewMap()
	m.Set("b", num(1))
	m.Set("a", num(2))
	require.Equal(t, `["b","a"]`, toJSON(t, mustCall(t, "keys", m)))
	require.Equal(t, `["0","1","length"]`, toJSON(t, mustCall(t, "keys", list(num(1), num(2)))))
	require.Equal(t, `[]`, toJSON(t, mustCall(t, "keys", num(1))))
	_, err := call(t, "keys", object.Undefined)
	require.EqualError(t, err, "Cannot convert undefined or null to object")
}

func TestMergeAndConcat(t *testing.T) {
	a := object.NewMap()
	a.Set("x", num(1))
	a.Set("y", num(2))
	b := object.NewMap()
	b.Set("y", num(3))
	merged := mustCall(t, "merge", a, object.Null, b, object.Undefined)
	require.Equal(t, `{"x":1,"y":3}`, toJSON(t, merged))
	require.Equal(t, `{"x":1,"y":2}`, toJSON(t, a))

	result := mustCall(t, "concat", list(num(1)), list(num(2), list(num(3))), num(4))
	require.Equal(t, `[1,2,[3],4]`, toJSON(t, result))
}

func TestSort(t *testing.T) {
	input := list(num(10), num(9), num(1), object.Undefined, num(2))
	result := mustCall(t, "sort", input)
	require.Equal(t, "1,2,9,10,", result.Inspect())
	require.Equal(t, "10,9,1,,2", input.Inspect())

	result = mustCall(t, "sort", list(str("b"), str("B"), str("a"), object.Null))
	require.Equal(t, ",a,b,B", result.Inspect())

	desc := object.NewBuiltin("desc", func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return num(object.ToNumber(args[1]) - object.ToNumber(args[0])), nil
	})
	result = mustCall(t, "sort", list(num(1), num(3), num(2)), desc)
	require.Equal(t, "3,2,1", result.Inspect())

	require.Equal(t, object.Null, mustCall(t, "sort", object.Null))
	_, err := call(t, "sort", str("abc"))
	require.EqualError(t, err, "Sort input is not an array")
	_, err = call(t, "sort", list(), num(1))
	require.Error(t, err)
}

func TestSortBy(t *testing.T) {
	person := func(name string, age float64) object.Object {
		m := object.NewMap()
		m.Set("name", str(name))
		m.Set("age", num(age))
		return m
	}
	people := list(person("Carol", 40), person("alice", 30), person("Bob", 25))
	byAge := mustCall(t, "sortBy", people, str("age"))
	require.Equal(t, `[{"name":"Bob","age":25},{"name":"alice","age":30},{"name":"Carol","age":40}]`, toJSON(t, byAge))
	byName := mustCall(t, "sortBy", people, str("name"))
	require.Equal(t, `[{"name":"alice","age":30},{"name":"Bob","age":25},{"name":"Carol","age":40}]`, toJSON(t, byName))

	_, err := call(t, "sortBy", num(1), str("age"))
	require.EqualError(t, err, "Sort input is not an array")
	_, err = call(t, "sortBy", list(object.Null), str("age"))
	require.Error(t, err)
}

func TestReverse(t *testing.T) {
	input := list(num(1), num(2), num(3))
	require.Equal(t, "3,2,1", mustCall(t, "reverse", input).Inspect())
	require.Equal(t, "1,2,3", input.Inspect())
	require.Equal(t, "cba", mustCall(t, "reverse", str("abc")).Inspect())
	require.Equal(t, "321", mustCall(t, "reverse", num(123)).Inspect())
	require.Equal(t, object.Undefined, mustCall(t, "reverse", object.Undefined))
}

func TestRange(t *testing.T) {
	require.Equal(t, "-1,0,1", mustCall(t, "range", num(-1), num(3)).Inspect())
	require.Equal(t, "5,6", mustCall(t, "range", num(5), num(1.5)).Inspect())

	tests := []struct {
		args []object.Object
		err  string
	}{
		{[]object.Object{num(1.5), num(2)}, "Invalid range start value: 1.5"},
		{[]object.Object{str("1"), num(2)}, "Invalid range start value: 1"},
		{[]object.Object{num(1), num(0)}, "Invalid range length value: 0"},
		{[]object.Object{num(1)}, "Invalid range length value: undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			_, err := call(t, "range", tt.args...)
			require.EqualError(t, err, tt.err)
		})
	}
}

func TestJSON(t *testing.T) {
	value := mustCall(t, "parseJSON", str(`{"a":[1,"two",null,true]}`))
	require.Equal(t, `{"a":[1,"two",null,true]}`, mustCall(t, "toJSON", value).Inspect())
	require.Equal(t, object.Undefined, mustCall(t, "toJSON", object.Undefined))
	require.Equal(t, `"x"`, mustCall(t, "toJSON", str("x")).Inspect())
	require.Equal(t, `1`, mustCall(t, "toJSON", num(1)).Inspect())
	require.Equal(t, object.Undefined, mustCall(t, "toJSON", Builtins()["abs"]))
	_, err := call(t, "parseJSON", str("{"))
	require.Error(t, err)

	cycle := list(num(1))
	cycle.Append(cycle)
	_, err = call(t, "toJSON", cycle)
	require.EqualError(t, err, "Converting circular structure to JSON")
}

func TestRegexpAndMatch(t *testing.T) {
	re := mustCall(t, "regexp", str("^a"), str("i"))
	require.Equal(t, "/^a/i", re.Inspect())
	test, ok := re.GetAttr("test")
	require.True(t, ok)
	result, err := test.(object.Callable).Call(context.Background(), str("Abc"))
	require.NoError(t, err)
	require.True(t, result.IsTruthy())

	require.Equal(t, "1,2", mustCall(t, "match", str("a1b2"), str(`\d`), str("g")).Inspect())
	require.Equal(t, object.Null, mustCall(t, "match", str("abc"), str(`\d`)))
	_, err = call(t, "regexp", str("("))
	require.Error(t, err)
}

func TestDates(t *testing.T) {
	d := mustCall(t, "dateUTC", num(2024), num(0), num(31), num(12)).(*object.Time)
	require.Equal(t, "2024-01-31T12:00:00.000Z", d.ISOString())

	d = mustCall(t, "date", str("2024-02-29")).(*object.Time)
	require.Equal(t, "2024-02-29T00:00:00.000Z", d.ISOString())

	d = mustCall(t, "date", str("2024-02-29T10:30:00+02:00")).(*object.Time)
	require.Equal(t, "2024-02-29T08:30:00.000Z", d.ISOString())

	d = mustCall(t, "date", num(0)).(*object.Time)
	require.Equal(t, "1970-01-01T00:00:00.000Z", d.ISOString())

	d = mustCall(t, "date", num(2024), num(12), num(1)).(*object.Time)
	require.Equal(t, 2025, d.Value().Year())
	require.Equal(t, time.January, d.Value().Month())

	d = mustCall(t, "dateUTC", num(99), num(0)).(*object.Time)
	require.Equal(t, "1999-01-01T00:00:00.000Z", d.ISOString())

	_, err := call(t, "date", str("not a date"))
	require.EqualError(t, err, "Invalid time value")
	_, err = call(t, "dateUTC", num(2024), str("x"))
	require.EqualError(t, err, "Invalid time value")

	before := float64(time.Now().UnixMilli())
	now := mustCall(t, "now").(*object.Number).Value()
	require.GreaterOrEqual(t, now, before)
}

func TestEncodeURI(t *testing.T) {
	require.Equal(t, "/a%20b?q=1&r=%C3%A9#x",
		mustCall(t, "encodeURI", str("/a b?q=1&r=é#x")).Inspect())
	require.Equal(t, "a%26b%3Dc%2Fd~(e)",
		mustCall(t, "encodeURIComponent", str("a&b=c/d~(e)")).Inspect())
}

func TestUUID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	a := mustCall(t, "uuid").Inspect()
	b := mustCall(t, "uuid").Inspect()
	require.Regexp(t, pattern, a)
	require.NotEqual(t, a, b)
}

func TestJMESPath(t *testing.T) {
	data := mustCall(t, "parseJSON", str(`{"items":[{"name":"a","active":true},{"name":"b","active":false}]}`))
	result := mustCall(t, "jmespath", data, str("items[?active].name"))
	require.Equal(t, `["a"]`, toJSON(t, result))

	result = mustCall(t, "jmespath", data, str("length(items)"))
	require.Equal(t, float64(2), result.(*object.Number).Value())

	_, err := call(t, "jmespath", data, str("items[?"))
	require.Error(t, err)
	_, err = call(t, "jmespath", data, num(1))
	require.EqualError(t, err, "jmespath: expression must be a string (got number 1)")
}
