package vm

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcormont/expression-runner/compiler"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
	"github.com/jcormont/expression-runner/parser"
)

func compile(t *testing.T, source string) ir.Node {
	t.Helper()
	program, err := parser.Parse(context.Background(), source,
		parser.WithAssignment(true), parser.WithStatements(true))
	require.NoError(t, err, source)
	code, err := compiler.Compile(program)
	require.NoError(t, err, source)
	return code
}

func run(t *testing.T, source string, scope *object.Map, options ...Option) (object.Object, error) {
	t.Helper()
	return New(compile(t, source), options...).Run(context.Background(), scope)
}

func testFunctions() map[string]object.Object {
	return map[string]object.Object{
		"str": object.NewBuiltin("str", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			if len(args) == 0 {
				return object.NewString(""), nil
			}
			return object.NewString(object.ToString(args[0])), nil
		}),
		"abc": object.NewBuiltin("abc", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			return object.NewNumber(123), nil
		}),
	}
}

func scopeOf(vars map[string]any) *object.Map {
	return object.FromGoMap(vars)
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"-1", -1.0},
		{"0x01", 1.0},
		{"1_000", 1000.0},
		{".5e1", 5.0},
		{"'a'", "a"},
		{`"a\tb"`, "a\tb"},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"undefined", nil},
		{"[]", []any{}},
		{"[1, 'x']", []any{1.0, "x"}},
		{"[3,,1]", []any{3.0, nil, 1.0}},
		{"{a: 1, 'b c': 2, 3: 3}", map[string]any{"a": 1.0, "b c": 2.0, "3": 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, nil)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
	result, err := run(t, "undefined", nil)
	require.NoError(t, err)
	require.Equal(t, object.Undefined, result)
}

func TestExpressions(t *testing.T) {
	scope := func() *object.Map {
		return scopeOf(map[string]any{
			"a":   1,
			"b":   2,
			"s":   "abc",
			"arr": []any{3, 2, 1},
			"o":   map[string]any{"x": map[string]any{"y": "z"}},
		})
	}
	tests := []struct {
		input    string
		expected any
	}{
		{"a + b * 2", 5.0},
		{"b * a + 8", 10.0},
		{"(a + b) * 2", 6.0},
		{"a - b - 3", -4.0},
		{"12 / b / 3", 2.0},
		{"a + 'x'", "1x"},
		{"a < b && b < 3", true},
		{"a == '1'", true},
		{"a === '1'", false},
		{"!a", false},
		{"-s", nil},
		{"typeof s", "string"},
		{"typeof str", "function"},
		{"typeof o.x", "object"},
		{"a ? 'yes' : 'no'", "yes"},
		{"a > 1 ? 'yes' : b > 1 ? 'maybe' : 'no'", "maybe"},
		{"[].length", 0.0},
		{"[3,2,1][2]", 1.0},
		{"arr.length", 3.0},
		{"arr[0] + arr[1]", 5.0},
		{"s.length", 3.0},
		{"s[1]", "b"},
		{"s.toUpperCase()", "ABC"},
		{"o.x.y", "z"},
		{"o['x']['y']", "z"},
		{"o.x['y' + '']", "z"},
		{"'x' in o", true},
		{"'y' in o", false},
		{"(1, 2, 3)", 3.0},
		{"str(a)", "1"},
		{"abc()", 123.0},
		{"[1, 2, 3].map(x => x * b)", []any{2.0, 4.0, 6.0}},
		{"[1, 2, 3].filter(x => x > a).length", 2.0},
		{"((a) => 41 + a)(1)", 42.0},
		{"(() => 42)()", 42.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scope(), WithFunctions(testFunctions()))
			require.NoError(t, err)
			if tt.input == "-s" {
				require.Equal(t, "NaN", result.Inspect())
				return
			}
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestNullishCoalescing(t *testing.T) {
	scope := scopeOf(map[string]any{"v": 1, "a": nil, "b": object.Undefined, "z": 0})
	tests := []struct {
		input    string
		expected any
	}{
		{"v ?? 2", 1.0},
		{"a ?? 2", 2.0},
		{"b ?? 2", 2.0},
		{"z ?? 2", 0.0},
		{"z || 2", 2.0},
		{"a ?? b ?? 3", 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scope)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestShortCircuit(t *testing.T) {
	calls := 0
	functions := map[string]object.Object{
		"f": object.NewBuiltin("f", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			calls++
			return object.True, nil
		}),
	}
	scope := scopeOf(map[string]any{"v": 1, "n": nil})
	for _, input := range []string{"v ?? f()", "n && f()", "v || f()", "n?.x.y(f())", "n?.[f()]"} {
		_, err := run(t, input, scope, WithFunctions(functions))
		require.NoError(t, err, input)
	}
	require.Equal(t, 0, calls)

	_, err := run(t, "n ?? f()", scope, WithFunctions(functions))
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestOptionalChain(t *testing.T) {
	scope := scopeOf(map[string]any{
		"a": nil,
		"b": object.Undefined,
		"o": map[string]any{"x": map[string]any{"y": 1}},
	})
	tests := []struct {
		input    string
		expected object.Object
	}{
		{"a?.x", object.Null},
		{"b?.x", object.Undefined},
		{"a?.x.y.z", object.Null},
		{"o?.x.y", object.NewNumber(1)},
		{"o.x?.y", object.NewNumber(1)},
		{"o.q?.y", object.Undefined},
		{"o?.['x']?.y", object.NewNumber(1)},
		{"a?.f()", object.Null},
		{"b?.f(1)", object.Undefined},
		{"o.q?.f()", object.Undefined},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scope)
			require.NoError(t, err)
			require.True(t, tt.expected.Equals(result), "got %s", result.Inspect())
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	native := object.NewBuiltin("f", func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return object.Undefined, nil
	})
	scope := func() *object.Map {
		return scopeOf(map[string]any{
			"a":   nil,
			"n":   1,
			"s":   "abc",
			"arr": []any{1},
			"o":   map[string]any{"f": native, "x": map[string]any{}},
		})
	}
	tests := []struct {
		input string
		code  errors.ErrorCode
		kind  errz.ErrorKind
		msg   string
	}{
		{"a.x", errors.E3002, errz.ErrType, "Cannot read property a.x of undefined value null"},
		{"o.q.r", errors.E3002, errz.ErrType, "Cannot read property o.q.r of undefined value undefined"},
		{"o.x[a].y", errors.E3002, errz.ErrType, "Cannot read property o.x.null.y of undefined value undefined"},
		{"[a][0].x", errors.E3002, errz.ErrType, "Cannot read property (object).0.x of undefined value null"},
		{"nope", errors.E3001, errz.ErrName, "Variable is not defined: nope"},
		{"nope()", errors.E3001, errz.ErrName, "Variable is not defined: nope"},
		{"nope.x = 1", errors.E3001, errz.ErrName, "Variable is not defined: nope"},
		{"n()", errors.E3004, errz.ErrType, "Not a function"},
		{"o.x()", errors.E3004, errz.ErrType, "Not a function"},
		{"o.missing()", errors.E3004, errz.ErrType, "Not a function"},
		{"o?.missing()", errors.E3004, errz.ErrType, "Not a function"},
		{"o?.x.missing()", errors.E3004, errz.ErrType, "Not a function"},
		{"s.length = 1", errors.E3003, errz.ErrAccess, "Cannot assign to s.length"},
		{"n.x = 1", errors.E3003, errz.ErrAccess, "Cannot assign to n.x"},
		{"arr.push = 1", errors.E3003, errz.ErrAccess, "Cannot assign to arr.push"},
		{"o.y.z = 1", errors.E3003, errz.ErrAccess, "Cannot assign to o.y.z"},
		{"a.x = 1", errors.E3002, errz.ErrType, "Cannot access property of undefined value a"},
		{"o.f = 1", errors.E3005, errz.ErrAccess, "Cannot overwrite native function o.f"},
		{"[...n]", errors.E3010, errz.ErrRuntime, "number 1 is not iterable"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := run(t, tt.input, scope())
			require.Error(t, err)
			require.Equal(t, tt.msg, err.Error())
			se, ok := errz.As(err)
			require.True(t, ok)
			require.Equal(t, tt.code, se.Code)
			require.Equal(t, tt.kind, se.Kind)
		})
	}
}

func TestUndefinedVariableHint(t *testing.T) {
	_, err := run(t, "valeu + 1", scopeOf(map[string]any{"value": 1}))
	require.Error(t, err)
	se, ok := errz.As(err)
	require.True(t, ok)
	require.Equal(t, "Did you mean 'value'?", se.Hint)
}

func TestAssignment(t *testing.T) {
	scope := scopeOf(map[string]any{"a": 1})
	result, err := run(t, "b = 2", scope)
	require.NoError(t, err)
	require.Equal(t, 2.0, result.Interface())
	b, ok := scope.Get("b")
	require.True(t, ok)
	require.Equal(t, 2.0, b.Interface())

	tests := []struct {
		input    string
		expected any
	}{
		{"a += 1; a", 2.0},
		{"a -= 3", -2.0},
		{"a *= 4", 4.0},
		{"a /= 2", 0.5},
		{"a %= 1", 0.0},
		{"x = y = 3; x + y", 6.0},
		{"o = {}; o.n = 1; o.n += 2; o.n", 3.0},
		{"o = {}; o.s += 'a'", "undefineda"},
		{"o = {}; o['k' + 1] = 1; o.k1", 1.0},
		{"arr = [1]; arr[3] = 4; arr.length", 4.0},
		{"arr = [1, 2, 3]; arr.length = 1; arr", []any{1.0}},
		{"o = {a: {}}; o.a.b = 5; o.a", map[string]any{"b": 5.0}},
		{"f = () => 1; o = {f}; o.f = 2; o.f", 2.0},
		{"str = 1; str", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scopeOf(map[string]any{"a": 1}), WithFunctions(testFunctions()))
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestStatementSeparators(t *testing.T) {
	newline, err := run(t, "a += 1\nstr(a)", scopeOf(map[string]any{"a": 1}), WithFunctions(testFunctions()))
	require.NoError(t, err)
	semicolon, err := run(t, "a += 1;str(a)", scopeOf(map[string]any{"a": 1}), WithFunctions(testFunctions()))
	require.NoError(t, err)
	require.Equal(t, "2", newline.Interface())
	require.Equal(t, newline.Interface(), semicolon.Interface())
}

func TestResultVariable(t *testing.T) {
	scope := object.NewMap()
	result, err := run(t, "1; 2 + 1", scope)
	require.NoError(t, err)
	require.Equal(t, 3.0, result.Interface())
	value, ok := scope.Get(ResultVariable)
	require.True(t, ok)
	require.Equal(t, 3.0, value.Interface())

	result, err = run(t, "x = 1\n$_ + 1", scope)
	require.NoError(t, err)
	require.Equal(t, 2.0, result.Interface())

	result, err = run(t, "if (false) 1", scope)
	require.NoError(t, err)
	require.Equal(t, object.Undefined, result)

	result, err = run(t, "if (x) { y = 1; y + 1 } else 0", scope)
	require.NoError(t, err)
	require.Equal(t, 2.0, result.Interface())
}

func TestSpread(t *testing.T) {
	scope := func() *object.Map {
		return scopeOf(map[string]any{
			"a":   map[string]any{"a": 41},
			"b":   1,
			"arr": []any{1, 2},
		})
	}
	tests := []struct {
		input    string
		expected any
	}{
		{"{ b, ...a, c: 0 }.a", 41.0},
		{"{ ...a, a: 1 }.a", 1.0},
		{"{ a: 1, ...a }.a", 41.0},
		{"{ ...arr }", map[string]any{"0": 1.0, "1": 2.0}},
		{"{ ...null, x: 1 }", map[string]any{"x": 1.0}},
		{"[0, ...arr, 3]", []any{0.0, 1.0, 2.0, 3.0}},
		{"[...'ab']", []any{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scope())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestSpreadKeyOrder(t *testing.T) {
	result, err := run(t, "{ z: 1, ...a, b: 3 }", scopeOf(map[string]any{"a": map[string]any{"y": 2, "b": 0}}))
	require.NoError(t, err)
	m, ok := result.(*object.Map)
	require.True(t, ok)
	require.Equal(t, []string{"z", "b", "y"}, m.Keys())
}

func TestArrowFunctionScope(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"add = x => y => x + y; add(1)(2)", 3.0},
		{"g = (x) => (y) => x + y; h = g(10); x = 1; h(5)", 15.0},
		{"((x) => x * 2)(5) + x", 11.0},
		{"f = (a, b) => b; f(1)", nil},
		{"k = 3; f = () => k; k = 4; f()", 4.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(t, tt.input, scopeOf(map[string]any{"x": 1}))
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestFramesPoppedOnError(t *testing.T) {
	scope := scopeOf(map[string]any{"x": 1})
	machine := New(compile(t, "f = x => x.a.b; f(null)"))
	_, err := machine.Run(context.Background(), scope)
	require.Error(t, err)
	require.Equal(t, "Cannot read property x.a of undefined value null", err.Error())
	x, _ := scope.Get("x")
	require.Equal(t, 1.0, x.Interface())
	require.Equal(t, 0, machine.depth)
	require.Nil(t, machine.frame)
}

func TestMaxFrameDepth(t *testing.T) {
	_, err := run(t, "f = x => f(x + 1); f(0)", nil, WithMaxFrameDepth(10))
	require.Error(t, err)
	require.True(t, errz.HasCode(err, errors.E3007))
	require.Equal(t, "Maximum call depth exceeded (10)", err.Error())
}

func TestHostErrors(t *testing.T) {
	functions := map[string]object.Object{
		"fail": object.NewBuiltin("fail", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			return nil, fmt.Errorf("boom: %w", io.EOF)
		}),
	}
	_, err := run(t, "fail()", nil, WithFunctions(functions))
	require.Error(t, err)
	require.Equal(t, "boom: EOF", err.Error())
	require.False(t, stderrors.Is(err, io.EOF))
	se, ok := errz.As(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrHost, se.Kind)
	require.Equal(t, errors.E3006, se.Code)

	// Errors raised inside callbacks keep their classification.
	_, err = run(t, "[1].map(x => x.a.b)", nil)
	require.Error(t, err)
	require.True(t, errz.HasCode(err, errors.E3002))
}

func TestRegisteredFunctions(t *testing.T) {
	result, err := run(t, "abc()", object.NewMap(), WithFunctions(testFunctions()))
	require.NoError(t, err)
	require.Equal(t, 123.0, result.Interface())

	_, err = run(t, "abc()", object.NewMap())
	require.Error(t, err)
	require.True(t, errz.HasCode(err, errors.E3001))

	// Scope variables shadow registered functions.
	result, err = run(t, "abc", scopeOf(map[string]any{"abc": 1}), WithFunctions(testFunctions()))
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Interface())

	// Registry entries that are not callable are ignored.
	_, err = run(t, "x", nil, WithFunctions(map[string]object.Object{"x": object.NewNumber(1)}))
	require.Error(t, err)
}

func TestPropertyAllowList(t *testing.T) {
	scope := scopeOf(map[string]any{"o": map[string]any{"a": 1}, "s": "abc", "n": 1.5})
	tests := []string{
		"o.constructor",
		"o.toString",
		"o.__proto__",
		"s.constructor",
		"s.concat",
		"[].__proto__",
		"[].constructor",
		"n.toString",
		"n.valueOf",
		"abc.name",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			result, err := run(t, input, scope, WithFunctions(testFunctions()))
			require.NoError(t, err)
			require.Equal(t, object.Undefined, result)
		})
	}
}

func TestIdempotence(t *testing.T) {
	code := compile(t, "x = y + '!'; y = 0; [x, y]")
	machine := New(code)
	for i := 0; i < 2; i++ {
		scope := scopeOf(map[string]any{"y": "same"})
		result, err := machine.Run(context.Background(), scope)
		require.NoError(t, err)
		require.Equal(t, []any{"same!", 0.0}, result.Interface())
	}
}

func TestFlatBinaryChain(t *testing.T) {
	tests := []struct {
		code     ir.Node
		expected any
	}{
		{ir.New(op.Expression, ir.New(op.Calc, 1.0, "+", 2.0, "*", 3.0)), 7.0},
		{ir.New(op.Expression, ir.New(op.Calc, 2.0, "*", 3.0, "+", 1.0)), 7.0},
		{ir.New(op.Expression, ir.New(op.Calc, 10.0, "-", 4.0, "-", 3.0)), 3.0},
		{ir.New(op.Expression, ir.New(op.Calc, 1.0, "<", 2.0, "===", true)), true},
		{ir.New(op.Expression, ir.New(op.Calc, nil, "??", 1.0, "+", 1.0)), 2.0},
		{ir.New(op.Expression, ir.New(op.Calc, 0.0, "||", 1.0, "&&", 2.0)), 2.0},
	}
	for _, tt := range tests {
		t.Run(ir.String(tt.code), func(t *testing.T) {
			result, err := New(tt.code).Run(context.Background(), nil)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result.Interface())
		})
	}
}

func TestExplicitResolve(t *testing.T) {
	scope := scopeOf(map[string]any{"a": map[string]any{"b": 2}})
	code := ir.New(op.Expression,
		ir.New(op.Assign, ir.New(op.Resolve, "a", "c"), "=", ir.New(op.Resolve, "a", "b")),
		ir.New(op.Calc, ir.Node{"a", "c"}, "+", ir.New(op.Resolve, ir.New(op.Array, 5.0), 0.0)),
	)
	result, err := New(code).Run(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 7.0, result.Interface())
}

func TestInvalidCode(t *testing.T) {
	tests := []ir.Node{
		{op.Ternary, true},
		{op.Calc, 1.0, 2.0, 3.0},
		{op.Calc, 1.0, "**", 3.0},
		{op.Unary, "delete", 1.0},
		{op.ArrowFunc, "a b", 1.0},
		{op.Assign, ir.Node{op.Array}, "=", 1.0},
		{op.Assign, ir.Node{"a"}, "&&=", 1.0},
		{op.Nop},
	}
	for _, node := range tests {
		t.Run(ir.String(node), func(t *testing.T) {
			_, err := New(ir.New(op.Expression, node)).Run(context.Background(), nil)
			require.Error(t, err)
			require.True(t, errz.HasCode(err, errors.E3009), err.Error())
		})
	}
	_, err := New(ir.Node{op.Array}).Run(context.Background(), nil)
	require.Error(t, err)

	_, err = New(ir.New(op.Expression, ir.New(op.Spread, 1.0))).Run(context.Background(), nil)
	require.True(t, errz.HasCode(err, errors.E3010))

	functions := map[string]object.Object{"f": object.NewBuiltin("f", func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return object.NewNumber(float64(len(args))), nil
	})}
	spreadArg := ir.New(op.Expression, ir.New(op.Call, ir.Node{"f"}, ir.New(op.Spread, ir.New(op.Array, 1.0, 2.0))))
	_, err = New(spreadArg, WithFunctions(functions)).Run(context.Background(), nil)
	require.EqualError(t, err, "Spread is only allowed in object and array literals")
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(compile(t, "1")).Run(ctx, nil)
	require.True(t, errz.HasCode(err, errors.E3008))

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	functions := map[string]object.Object{
		"stop": object.NewBuiltin("stop", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			cancel()
			return object.Undefined, nil
		}),
	}
	machine := New(compile(t, "stop(); 1 + 2 + 3"), WithFunctions(functions), WithContextCheckInterval(1))
	_, err = machine.Run(ctx, nil)
	require.Error(t, err)
	require.True(t, errz.HasCode(err, errors.E3008))
}

func TestAlreadyRunning(t *testing.T) {
	var machine *VirtualMachine
	functions := map[string]object.Object{
		"again": object.NewBuiltin("again", func(ctx context.Context, args ...object.Object) (object.Object, error) {
			_, err := machine.Run(ctx, nil)
			return nil, err
		}),
	}
	machine = New(compile(t, "again()"), WithFunctions(functions))
	_, err := machine.Run(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, "vm is already running", err.Error())
	require.False(t, machine.running)
}

func TestCall(t *testing.T) {
	machine := New(compile(t, "k = 1; x => x + k"))
	fn, err := machine.Run(context.Background(), nil)
	require.NoError(t, err)
	closure, ok := fn.(*object.Closure)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, closure.Params())

	result, err := machine.Call(context.Background(), closure, []object.Object{object.NewNumber(41)})
	require.NoError(t, err)
	require.Equal(t, 42.0, result.Interface())

	_, err = machine.Call(context.Background(), object.NewNumber(1), nil)
	require.True(t, errz.HasCode(err, errors.E3004))
}

func TestClosureCalledOutsideEvaluation(t *testing.T) {
	fn, err := run(t, "x => x", nil)
	require.NoError(t, err)
	_, err = fn.(*object.Closure).Call(context.Background(), object.NewNumber(1))
	require.True(t, errz.HasCode(err, errors.E3009))
}
