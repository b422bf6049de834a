package exprun

import (
	"context"
	"slices"
	"sort"

	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/vm"
)

// Program is a compiled expression. It is immutable after creation and safe
// for concurrent use: each run uses its own evaluator.
type Program struct {
	code ir.Node

	// Metadata
	source      string
	filename    string
	fingerprint string

	opts []Option
}

func newProgram(code ir.Node, source, filename string, opts []Option) (*Program, error) {
	fingerprint, err := ir.Fingerprint(code)
	if err != nil {
		return nil, err
	}
	return &Program{
		code:        code,
		source:      source,
		filename:    filename,
		fingerprint: fingerprint,
		opts:        slices.Clone(opts),
	}, nil
}

// Source returns the source code that was compiled, or an empty string if
// the program was loaded from IR.
func (p *Program) Source() string {
	return p.source
}

// Filename returns the filename associated with this program, if any.
func (p *Program) Filename() string {
	return p.filename
}

// IR returns the compiled code. It must not be modified.
func (p *Program) IR() ir.Node {
	return p.code
}

// Fingerprint returns a hash of the IR. Programs with the same IR have the
// same fingerprint.
func (p *Program) Fingerprint() string {
	return p.fingerprint
}

// MarshalJSON returns the IR in JSON form.
func (p *Program) MarshalJSON() ([]byte, error) {
	return ir.MarshalJSON(p.code)
}

// MarshalCBOR returns the IR in canonical CBOR form.
func (p *Program) MarshalCBOR() ([]byte, error) {
	return ir.MarshalCBOR(p.code)
}

func (p *Program) config(opts []Option) *config {
	return newConfig(append(slices.Clone(p.opts), opts...)...)
}

// Evaluate runs the program against a scope and returns the value of the
// last statement. Variables assigned by the expression are written to
// scope, along with the result variable $_.
func (p *Program) Evaluate(ctx context.Context, scope *object.Map, opts ...Option) (object.Object, error) {
	cfg := p.config(opts)
	if cfg.err != nil {
		return nil, cfg.err
	}
	machine := vm.New(p.code, cfg.vmOpts()...)
	return machine.Run(ctx, scope)
}

// Run converts vars to a scope, runs the program, and returns the result as
// a Go value. Variables that the expression assigned or may have changed
// are written back to vars.
//
// Go maps and slices in vars are copied on the way in, so the program never
// mutates them in place. Every top-level variable holding a map or list is
// replaced in vars by a fresh copy after the run, even if the program did
// not touch it; references the caller kept to the old nested values are
// not updated. Written-back values use the same Go types as the result,
// such as map[string]any, []any and float64. Use Evaluate with an
// object.Map scope to share values with the program by reference.
func (p *Program) Run(ctx context.Context, vars map[string]any, opts ...Option) (any, error) {
	scope := object.NewMap()
	initial := make(map[string]object.Object, len(vars))
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := object.FromGo(vars[name])
		initial[name] = value
		scope.Set(name, value)
	}
	result, err := p.Evaluate(ctx, scope, opts...)
	if vars != nil {
		writeBack(vars, scope, initial)
	}
	if err != nil {
		return nil, err
	}
	return toGo(result), nil
}

// writeBack copies the variables of scope into vars, except for values that
// are unchanged and cannot have been modified in place.
func writeBack(vars map[string]any, scope *object.Map, initial map[string]object.Object) {
	for name, value := range scope.Entries() {
		if old, ok := initial[name]; ok && old == value {
			switch value.(type) {
			case *object.Map, *object.List:
			default:
				continue
			}
		}
		vars[name] = value.Interface()
	}
}
