package exprun

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jcormont/expression-runner/object"
)

func TestProgramMetadata(t *testing.T) {
	p, err := Compile("a.b + 1", WithFilename("rule.expr"))
	require.NoError(t, err)
	require.Equal(t, "a.b + 1", p.Source())
	require.Equal(t, "rule.expr", p.Filename())
	require.Len(t, p.Fingerprint(), 64)

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `[2,[5,["a","b"],"+",1]]`, string(data))
}

func TestLoad(t *testing.T) {
	p, err := Load([]byte(`[2,[5,["x"],"*",2]]`))
	require.NoError(t, err)
	require.Equal(t, "", p.Source())
	result, err := p.Run(context.Background(), map[string]any{"x": 21})
	require.NoError(t, err)
	require.Equal(t, 42.0, result)

	compiled, err := Compile("x * 2")
	require.NoError(t, err)
	require.Equal(t, compiled.Fingerprint(), p.Fingerprint())
}

func TestLoadInvalid(t *testing.T) {
	for _, input := range []string{`[0]`, `{"a":1}`, `[2,[99]]`, `[2,`, `"x"`} {
		t.Run(input, func(t *testing.T) {
			_, err := Load([]byte(input))
			require.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	source := "items.filter(i => i.price > min).map(i => i?.name ?? '-')"
	p, err := Compile(source)
	require.NoError(t, err)
	vars := func() map[string]any {
		return map[string]any{
			"min": 10,
			"items": []any{
				map[string]any{"name": "a", "price": 5},
				map[string]any{"name": nil, "price": 15},
				map[string]any{"name": "c", "price": 25},
			},
		}
	}
	want, err := p.Run(context.Background(), vars())
	require.NoError(t, err)
	require.Equal(t, []any{"-", "c"}, want)

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	fromJSON, err := Load(data)
	require.NoError(t, err)
	got, err := fromJSON.Run(context.Background(), vars())
	require.NoError(t, err)
	require.Equal(t, want, got)

	data, err = p.MarshalCBOR()
	require.NoError(t, err)
	fromCBOR, err := LoadCBOR(data)
	require.NoError(t, err)
	got, err = fromCBOR.Run(context.Background(), vars())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, p.Fingerprint(), fromCBOR.Fingerprint())

	_, err = LoadCBOR([]byte{0xff})
	require.Error(t, err)
}

func TestEvaluateScope(t *testing.T) {
	p, err := Compile("total = total + x; count += 1", WithAssignment(), WithStatements())
	require.NoError(t, err)
	scope := object.NewMap()
	scope.Set("total", object.NewNumber(0))
	scope.Set("count", object.NewNumber(0))
	for i := 1; i <= 3; i++ {
		scope.Set("x", object.NewNumber(float64(i)))
		_, err := p.Evaluate(context.Background(), scope)
		require.NoError(t, err)
	}
	total, _ := scope.Get("total")
	count, _ := scope.Get("count")
	require.Equal(t, "6", total.Inspect())
	require.Equal(t, "3", count.Inspect())
}

func TestRunOptionsOverrideCompileOptions(t *testing.T) {
	p, err := Compile("f()", WithFunction("f", func() string { return "compile" }))
	require.NoError(t, err)
	result, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "compile", result)
	result, err = p.Run(context.Background(), nil, WithFunction("f", func() string { return "run" }))
	require.NoError(t, err)
	require.Equal(t, "run", result)
}

func TestWriteBack(t *testing.T) {
	fn := func() {}
	vars := map[string]any{
		"fn":   fn,
		"obj":  map[string]any{"a": 1},
		"list": []any{1},
	}
	p, err := Compile("obj.a = 2; list.push(2); n = 1", WithAssignment(), WithStatements())
	require.NoError(t, err)
	_, err = p.Run(context.Background(), vars)
	require.NoError(t, err)
	require.NotNil(t, vars["fn"])
	require.Equal(t, map[string]any{"a": 2.0}, vars["obj"])
	require.Equal(t, []any{1.0, 2.0}, vars["list"])
	require.Equal(t, 1.0, vars["n"])
}

func TestWriteBackReplacesCallerValues(t *testing.T) {
	inner := map[string]any{"qty": 1}
	items := []any{inner}
	untouched := map[string]any{"k": "v"}
	vars := map[string]any{"items": items, "other": untouched}
	_, err := Eval(context.Background(), "items[0].qty = 5", vars, WithAssignment())
	require.NoError(t, err)

	require.Equal(t, []any{map[string]any{"qty": 5.0}}, vars["items"])
	require.Equal(t, 1, inner["qty"])
	require.Equal(t, map[string]any{"k": "v"}, vars["other"])
	vars["other"].(map[string]any)["k"] = "changed"
	require.Equal(t, "v", untouched["k"])
}

func TestWriteBackCircular(t *testing.T) {
	vars := map[string]any{}
	result, err := Eval(context.Background(), "a = {}; a.self = a; l = [a]; l.push(l); a", vars,
		WithAssignment(), WithStatements())
	require.NoError(t, err)
	require.Equal(t, map[string]any{"self": nil}, result)
	require.Equal(t, map[string]any{"self": nil}, vars["a"])
	require.Equal(t, []any{map[string]any{"self": nil}, nil}, vars["l"])
}

func TestWriteBackOnError(t *testing.T) {
	vars := map[string]any{}
	_, err := Eval(context.Background(), "a = 1; b.c", vars, WithAssignment(), WithStatements())
	require.EqualError(t, err, "Variable is not defined: b")
	require.Equal(t, 1.0, vars["a"])
}

func TestCompileLogging(t *testing.T) {
	var buf syncBuffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	p, err := Compile("1 + 2", WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"message":"compiled expression"`)
	require.Contains(t, buf.String(), fmt.Sprintf(`"fingerprint":"%s"`, p.Fingerprint()))
	require.Contains(t, buf.String(), `"source_length":5`)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
