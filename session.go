package exprun

import (
	"context"
	"fmt"
	"slices"

	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
	"github.com/jcormont/expression-runner/vm"
)

// Session provides stateful evaluation for a REPL. Unlike Eval and
// Program.Run, which start from the variables they are given, a Session
// keeps one scope across evaluations, so that variables and arrow functions
// assigned by one expression can be used by the next.
type Session struct {
	scope *object.Map
	opts  []Option
}

// NewSession creates a session with an empty scope. Assignments and
// statements are always allowed.
func NewSession(opts ...Option) *Session {
	return &Session{
		scope: object.NewMap(),
		opts:  append([]Option{WithAssignment(), WithStatements()}, opts...),
	}
}

// Eval compiles and evaluates source within the session scope.
func (s *Session) Eval(ctx context.Context, source string) (object.Object, error) {
	p, err := Compile(source, s.opts...)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(ctx, s.scope)
}

// Call invokes an arrow function or function stored in a session variable.
// Arguments are converted from Go values.
func (s *Session) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := s.scope.Get(name)
	if !ok {
		return nil, fmt.Errorf("Variable is not defined: %s", name)
	}
	if _, ok := fn.(object.Callable); !ok {
		return nil, fmt.Errorf("%s is not a function (got %s)", name, object.Describe(fn))
	}
	callArgs := make([]object.Object, len(args))
	for i, arg := range args {
		callArgs[i] = object.FromGo(arg)
	}
	cfg := newConfig(s.opts...)
	machine := vm.New(ir.New(op.Expression), cfg.vmOpts()...)
	result, err := machine.Call(ctx, fn, callArgs)
	if err != nil {
		return nil, err
	}
	return toGo(result), nil
}

// Get returns a session variable as a Go value.
func (s *Session) Get(name string) (any, bool) {
	value, ok := s.scope.Get(name)
	if !ok {
		return nil, false
	}
	return value.Interface(), true
}

// GetObject returns a session variable.
func (s *Session) GetObject(name string) (object.Object, bool) {
	return s.scope.Get(name)
}

// Set assigns a session variable.
func (s *Session) Set(name string, value any) {
	s.scope.Set(name, object.FromGo(value))
}

// Names returns the names of the session variables, sorted, followed by the
// names of the registered functions that are not shadowed by a variable.
func (s *Session) Names() []string {
	names := s.scope.Keys()
	slices.Sort(names)
	cfg := newConfig(s.opts...)
	var functions []string
	for name := range cfg.registry() {
		if !s.scope.Has(name) {
			functions = append(functions, name)
		}
	}
	slices.Sort(functions)
	return append(names, functions...)
}

// Reset removes all session variables.
func (s *Session) Reset() {
	s.scope = object.NewMap()
}
