package parser

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"
)

// FuzzParse tests that the parser doesn't panic on arbitrary input.
// The parser should either return a valid AST or an error, never crash.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"1 + 2",
		"x",
		"true",
		"null",
		"undefined",
		"'hello'",
		"\"a\\u0041\"",
		"[]",
		"{}",
		"[1, 2, 3]",
		"[3,,1][2]",
		"{a: 1, 'b': 2, 3: c}",
		"{ a, ...b }",
		"a + b - c * d / e % f",
		"-x",
		"!flag",
		"typeof x",
		"a && b || c",
		"a ?? b",
		"a === b !== c",
		"a < b <= c > d >= e",
		"a >>> 2 << 1",
		"a in b",
		"a ? b : c",
		"x = 10",
		"x += 1",
		"a.b.c = 1",
		"a.b[c]",
		"a?.b",
		"a?.[0]",
		"f(1, 2)",
		"x => x * 2",
		"(x, y) => x + y",
		"() => 42",
		"((a)=>41 + a)(1)",
		"if (a) { b; c } else d",
		"a; b\nc",
		"0x1F",
		".5e3",
		"1_000",
		// Malformed input
		"(",
		")",
		"[",
		"{",
		"=>",
		"a ?",
		"(a b) => c",
		"x => { }",
		"...",
		"a ::",
		"'unterminated",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		program, err := Parse(ctx, input, WithAssignment(true), WithStatements(true))
		if err == nil && program == nil {
			t.Fatalf("nil program without error for %q", input)
		}
		if err == nil {
			// The printed form of a program must be printable again.
			_ = program.String()
		}
	})
}
