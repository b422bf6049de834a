package ir

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jcormont/expression-runner/op"
)

func sample() Node {
	// a.b = [1, ...c, [10]]; f("x", 2 + 3)
	return New(op.Expression,
		New(op.Assign, Node{"a", "b"}, "=", New(op.Array, 1.0, New(op.Spread, Node{"c"}), New(op.Undef))),
		New(op.Call, Node{"f"}, "x", New(op.Calc, 2.0, "+", 3.0)),
		New(op.Object, "k", true, "n", nil),
		New(op.OptionalChain, Node{"d"}, "e", Node{"i"}),
	)
}

func TestOpcode(t *testing.T) {
	tests := []struct {
		node Node
		code op.Code
		ok   bool
	}{
		{New(op.Calc, 1.0, "+", 2.0), op.Calc, true},
		{New(op.Undef), op.Undef, true},
		{Node{"a", "b"}, op.Resolve, true},
		{Node{New(op.Array), "length"}, op.Resolve, true},
		{New(op.Resolve, "a"), op.Resolve, true},
		{Node{}, op.Nop, false},
		{Node{true}, op.Nop, false},
	}
	for _, tt := range tests {
		code, ok := Opcode(tt.node)
		require.Equal(t, tt.ok, ok, String(tt.node))
		require.Equal(t, tt.code, code, String(tt.node))
	}
	require.True(t, IsResolve(Node{"x"}))
	require.False(t, IsResolve(New(op.Undef)))
	require.Equal(t, []any{"x", "y"}, Operands(Node{"x", "y"}))
	require.Equal(t, []any{"x"}, Operands(New(op.Resolve, "x")))
}

func TestString(t *testing.T) {
	require.Equal(t, `[2,[5,1,"+",2],["a","b"]]`,
		String(New(op.Expression, New(op.Calc, 1.0, "+", 2.0), Node{"a", "b"})))
}

func TestJSONRoundTrip(t *testing.T) {
	n := sample()
	data, err := MarshalJSON(n)
	require.NoError(t, err)
	require.Equal(t,
		`[2,[1,["a","b"],"=",[9,1,[13,["c"]],[10]]],[7,["f"],"x",[5,2,"+",3]],[8,"k",true,"n",null],[11,["d"],"e",["i"]]]`,
		string(data))
	decoded, err := UnmarshalJSON(data)
	require.NoError(t, err)
	if diff := cmp.Diff(n, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	n := New(op.Expression, New(op.Calc, math.Inf(1), "-", 0.5), Node{"a", 3.0})
	data, err := MarshalCBOR(n)
	require.NoError(t, err)
	decoded, err := UnmarshalCBOR(data)
	require.NoError(t, err)
	if diff := cmp.Diff(n, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := MarshalCBOR(decoded)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestMarshalJSONNonFinite(t *testing.T) {
	_, err := MarshalJSON(New(op.Expression, math.NaN()))
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	n, err := Normalize([]any{2, []any{uint64(5), int64(-1), "*", float32(2)}, []any{"x", uint8(0)}})
	require.NoError(t, err)
	require.Equal(t, Node{op.Expression, Node{op.Calc, -1.0, "*", 2.0}, Node{"x", 0.0}}, n)
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		input any
		err   string
	}{
		{"x", "ir: program must be a list, got string"},
		{[]any{}, "ir: empty node"},
		{[]any{5.0, 1.0, "+", 2.0}, "ir: program must start with opcode 2"},
		{[]any{2, []any{0}}, "ir: invalid opcode 0"},
		{[]any{2, []any{14}}, "ir: invalid opcode 14"},
		{[]any{2, []any{1.5}}, "ir: invalid opcode 1.5"},
		{[]any{2, []any{10, 1}}, "ir: UNDEF has 1 operands"},
		{[]any{2, []any{4, 1, 2}}, "ir: TERNARY has 2 operands"},
		{[]any{2, []any{true}}, "ir: invalid node head true"},
		{[]any{2, map[string]any{}}, "ir: unsupported value of type map[string]interface {}"},
	}
	for _, tt := range tests {
		_, err := Normalize(tt.input)
		require.EqualError(t, err, tt.err)
	}
}

func TestNormalizeDepth(t *testing.T) {
	var v any = []any{10}
	for i := 0; i < MaxDepth+5; i++ {
		v = []any{6, "-", v}
	}
	_, err := Normalize([]any{2, v})
	require.EqualError(t, err, "ir: maximum nesting depth exceeded")
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(sample())
	require.NoError(t, err)
	b, err := Fingerprint(sample())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	c, err := Fingerprint(New(op.Expression, 1.0))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestValidate(t *testing.T) {
	valid := []string{
		`[2]`,
		`[2,1,"a",true,null]`,
		`[2,["a","b",0,["i"]]]`,
		`[2,[[9,1],"length"]]`,
		`[2,[[["a","b"],"c"],"d"]]`,
		`[2,[3,"x",[5,["x"],"*",2]]]`,
	}
	for _, input := range valid {
		require.NoError(t, Validate([]byte(input)), input)
	}

	invalid := []string{
		`{}`,
		`[]`,
		`[5,1,"+",2]`,
		`[2,[0]]`,
		`[2,[14]]`,
		`[2,[2.5]]`,
		`[2,{"a":1}]`,
		`[2,[true,1]]`,
		`[2,[]]`,
	}
	for _, input := range invalid {
		err := Validate([]byte(input))
		require.Error(t, err, input)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, input)
		require.Contains(t, ve.Error(), "ir: invalid program")
	}

	require.Error(t, Validate([]byte(`[2,`)))
}

func TestSchemaIsJSON(t *testing.T) {
	require.Contains(t, Schema(), `"$defs"`)
}
