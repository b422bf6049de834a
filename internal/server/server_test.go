package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	exprun "github.com/jcormont/expression-runner"
	"github.com/jcormont/expression-runner/object"
)

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHealth(t *testing.T) {
	h := New().Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
	require.Contains(t, rec.Body.String(), exprun.Version)
}

func TestFunctions(t *testing.T) {
	h := New().Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/functions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Functions []struct {
			Name string `json:"Name"`
		} `json:"functions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	var names []string
	for _, f := range out.Functions {
		names = append(names, f.Name)
	}
	require.Contains(t, names, "sortBy")
	require.Contains(t, names, "jmespath")
}

func TestCompile(t *testing.T) {
	h := New().Handler()
	rec, out := post(t, h, "/v1/compile", `{"expression": "x * 2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ir, err := json.Marshal(out["ir"])
	require.NoError(t, err)
	require.JSONEq(t, `[2,[5,["x"],"*",2]]`, string(ir))
	require.Len(t, out["fingerprint"], 64)
}

func TestCompileErrors(t *testing.T) {
	h := New().Handler()
	tests := []struct {
		body string
		code string
	}{
		{`{"expression": "a = 1"}`, "E1005"},
		{`{"expression": "1 +"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec, out := post(t, h, "/v1/compile", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := out["error"].(map[string]any)
			require.NotEmpty(t, body["message"])
			if tt.code != "" {
				require.Equal(t, tt.code, body["code"])
			}
		})
	}

	rec, _ := post(t, h, "/v1/compile", `{"expression": "a = 1", "allowAssignment": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEval(t *testing.T) {
	h := New().Handler()
	rec, out := post(t, h, "/v1/eval", `{
		"expression": "items.filter(i => i.price > min).map(i => i.name)",
		"vars": {"min": 10, "items": [{"name": "a", "price": 5}, {"name": "b", "price": 15}]}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, []any{"b"}, out["result"])
}

func TestEvalAssignment(t *testing.T) {
	h := New().Handler()
	rec, out := post(t, h, "/v1/eval", `{
		"expression": "total = a + b; fn = x => x",
		"allowAssignment": true,
		"allowStatements": true,
		"vars": {"a": 1, "b": 2}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	vars := out["vars"].(map[string]any)
	require.Equal(t, 3.0, vars["total"])
	require.Equal(t, 1.0, vars["a"])
	require.Nil(t, vars["fn"])
}

func TestEvalIR(t *testing.T) {
	h := New().Handler()
	rec, out := post(t, h, "/v1/eval", `{"ir": [2,[5,["x"],"*",2]], "vars": {"x": 21}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 42.0, out["result"])

	rec, _ = post(t, h, "/v1/eval", `{"ir": [2,[99]]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvalRuntimeError(t *testing.T) {
	h := New().Handler()
	rec, out := post(t, h, "/v1/eval", `{"expression": "a.b.c", "vars": {"a": {}}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := out["error"].(map[string]any)
	require.Equal(t, "Cannot read property a.b.c of undefined value undefined", body["message"])
	require.Equal(t, "type error", body["kind"])
	require.Equal(t, "E3002", body["code"])
}

func TestEvalHostFunctions(t *testing.T) {
	h := New(WithEvalOptions(exprun.WithFunction("double", func(x float64) float64 { return x * 2 }))).Handler()
	rec, out := post(t, h, "/v1/eval", `{"expression": "double(n)", "vars": {"n": 4}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 8.0, out["result"])
}

func TestEvalTimeout(t *testing.T) {
	h := New(
		WithTimeout(10*time.Millisecond),
		WithEvalOptions(exprun.WithContextCheckInterval(100)),
	).Handler()
	rec, out := post(t, h, "/v1/eval", `{
		"expression": "f = n => n > 0 ? f(n - 1) + f(n - 1) : 0; f(40)",
		"allowAssignment": true,
		"allowStatements": true
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, out["error"].(map[string]any)["message"], "evaluation cancelled")
}

func TestBadRequests(t *testing.T) {
	h := New(WithMaxBodyBytes(32)).Handler()
	rec, _ := post(t, h, "/v1/eval", `{"expression": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, h, "/v1/eval", `{"expression": "1 + 1", "vars": {"padding": "xxxxxxxxxxxxxxxxxxxx"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	h := New(WithLogger(zerolog.New(&buf))).Handler()
	post(t, h, "/v1/eval", `{"expression": "1"}`)
	require.Contains(t, buf.String(), `"path":"/v1/eval"`)
	require.Contains(t, buf.String(), `"status":200`)
	require.Contains(t, buf.String(), `"request_id"`)
}

func TestCacheReuse(t *testing.T) {
	s := New()
	h := s.Handler()
	for i := 0; i < 3; i++ {
		rec, _ := post(t, h, "/v1/eval", `{"expression": "x + 1", "vars": {"x": 1}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	stats := s.cache.Stats()
	require.Equal(t, 1, stats.Entries)
	require.Equal(t, 2, stats.Hits)
}

func TestEncodeValue(t *testing.T) {
	cycle := object.NewList([]object.Object{object.NewNumber(1)})
	cycle.Append(cycle)
	tests := []struct {
		value object.Object
		want  string
	}{
		{object.NewNumber(1.5), `1.5`},
		{object.NewString("x"), `"x"`},
		{object.Undefined, `null`},
		{object.NewBuiltin("f", nil), `null`},
		{cycle, `null`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, string(encodeValue(tt.value)))
	}
}
