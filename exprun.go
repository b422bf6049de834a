// Package exprun compiles and evaluates JavaScript-like expressions.
//
// Source text is compiled once into a Program, which holds the nested list
// IR of the expression. A Program is immutable and may be run any number of
// times, concurrently, against different variables:
//
//	program, err := exprun.Compile("price * (1 + vat)")
//	if err != nil {
//		return err
//	}
//	total, err := program.Run(ctx, map[string]any{"price": 10, "vat": 0.2})
//
// Expressions can only read the variables they are given and call the
// functions that were registered. Assignments and multiple statements are
// rejected unless enabled with WithAssignment and WithStatements.
package exprun

import (
	"context"
	"maps"

	"github.com/jcormont/expression-runner/builtins"
	"github.com/jcormont/expression-runner/compiler"
	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/parser"
	"github.com/jcormont/expression-runner/syntax"
)

var defaultFunctions = builtins.Builtins()

// Functions returns the default function registry. The map is a copy and
// may be changed by the caller.
func Functions() map[string]object.Object {
	return maps.Clone(defaultFunctions)
}

// Compile parses and compiles source code into a Program. Options that
// control evaluation are kept by the Program and used by each run.
func Compile(source string, opts ...Option) (*Program, error) {
	cfg := newConfig(opts...)
	if cfg.err != nil {
		return nil, cfg.err
	}
	tree, err := parser.Parse(context.Background(), source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	for _, t := range cfg.transformers {
		if tree, err = t.Transform(tree); err != nil {
			return nil, err
		}
	}
	if err := syntax.Check(tree, cfg.validators...); err != nil {
		return nil, err
	}
	code, err := compiler.Compile(tree, cfg.compilerOpts()...)
	if err != nil {
		return nil, err
	}
	p, err := newProgram(code, source, cfg.filename, opts)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug().
		Int("source_length", len(source)).
		Str("fingerprint", p.fingerprint).
		Msg("compiled expression")
	return p, nil
}

// Load creates a Program from IR in JSON form, as returned by
// Program.MarshalJSON. The input is checked against the IR schema first.
func Load(data []byte, opts ...Option) (*Program, error) {
	if err := ir.Validate(data); err != nil {
		return nil, err
	}
	code, err := ir.UnmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	return newProgram(code, "", "", opts)
}

// LoadCBOR creates a Program from IR in CBOR form, as returned by
// Program.MarshalCBOR.
func LoadCBOR(data []byte, opts ...Option) (*Program, error) {
	code, err := ir.UnmarshalCBOR(data)
	if err != nil {
		return nil, err
	}
	return newProgram(code, "", "", opts)
}

// Eval compiles and runs source code. It is equivalent to Compile followed
// by Program.Run.
func Eval(ctx context.Context, source string, vars map[string]any, opts ...Option) (any, error) {
	p, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, vars)
}

// toGo converts a result to a Go value. Values without a Go equivalent,
// such as functions, are returned as their string representation.
func toGo(result object.Object) any {
	value := result.Interface()
	if value == nil && !object.IsNullish(result) {
		return result.Inspect()
	}
	return value
}
