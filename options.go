package exprun

import (
	"context"
	"fmt"
	"maps"

	"github.com/rs/zerolog"

	"github.com/jcormont/expression-runner/compiler"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/parser"
	"github.com/jcormont/expression-runner/syntax"
	"github.com/jcormont/expression-runner/vm"
)

// Option configures compilation or evaluation. Options given to Compile are
// kept by the Program and apply to each of its runs, before the options
// given to Run.
type Option func(*config)

type config struct {
	allowAssignment bool
	allowStatements bool
	filename        string
	validators      []syntax.Validator
	transformers    []syntax.Transformer

	functions       map[string]object.Object
	withoutBuiltins bool

	logger               zerolog.Logger
	maxFrameDepth        int
	contextCheckInterval int
	observer             vm.Observer

	err error
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		functions:            map[string]object.Object{},
		logger:               zerolog.Nop(),
		maxFrameDepth:        vm.MaxFrameDepth,
		contextCheckInterval: vm.DefaultContextCheckInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) parserOpts() []parser.Option {
	opts := []parser.Option{
		parser.WithAssignment(cfg.allowAssignment),
		parser.WithStatements(cfg.allowStatements),
	}
	if cfg.filename != "" {
		opts = append(opts, parser.WithFilename(cfg.filename))
	}
	return opts
}

func (cfg *config) compilerOpts() []compiler.Option {
	var opts []compiler.Option
	if cfg.filename != "" {
		opts = append(opts, compiler.WithFilename(cfg.filename))
	}
	return opts
}

// registry returns the functions visible to expressions: the builtins,
// unless disabled, overridden by the functions given with WithFunctions.
func (cfg *config) registry() map[string]object.Object {
	registry := map[string]object.Object{}
	if !cfg.withoutBuiltins {
		maps.Copy(registry, defaultFunctions)
	}
	maps.Copy(registry, cfg.functions)
	return registry
}

func (cfg *config) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithFunctions(cfg.registry()),
		vm.WithLogger(cfg.logger),
		vm.WithMaxFrameDepth(cfg.maxFrameDepth),
		vm.WithContextCheckInterval(cfg.contextCheckInterval),
	}
	if cfg.observer != nil {
		opts = append(opts, vm.WithObserver(cfg.observer))
	}
	return opts
}

// WithAssignment allows assignments (=, +=, etc.), which are rejected by
// the parser otherwise.
func WithAssignment() Option {
	return func(cfg *config) {
		cfg.allowAssignment = true
	}
}

// WithStatements allows several statements separated by semicolons or
// newlines, and if statements.
func WithStatements() Option {
	return func(cfg *config) {
		cfg.allowStatements = true
	}
}

// WithFilename sets the file name reported in syntax errors.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithFunctions makes host functions available to expressions. Values may
// be *object.Builtin values, or Go functions, which are wrapped with
// object.NewGoFunc. Functions with the name of a builtin replace it. This
// option is additive.
func WithFunctions(functions map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range functions {
			cfg.addFunction(name, fn)
		}
	}
}

// WithFunction makes a single host function available to expressions.
func WithFunction(name string, fn any) Option {
	return func(cfg *config) {
		cfg.addFunction(name, fn)
	}
}

func (cfg *config) addFunction(name string, fn any) {
	switch fn := fn.(type) {
	case object.Callable:
		cfg.functions[name] = fn
	case object.BuiltinFunction:
		cfg.functions[name] = object.NewBuiltin(name, fn)
	case func(context.Context, ...object.Object) (object.Object, error):
		cfg.functions[name] = object.NewBuiltin(name, fn)
	default:
		b, err := object.NewGoFunc(name, fn)
		if err != nil {
			cfg.err = fmt.Errorf("function %q: %w", name, err)
			return
		}
		cfg.functions[name] = b
	}
}

// WithoutBuiltins removes the default functions, leaving only the ones given
// with WithFunctions.
func WithoutBuiltins() Option {
	return func(cfg *config) {
		cfg.withoutBuiltins = true
	}
}

// WithValidators adds checks run on the parsed expression before it is
// compiled. Compilation fails with a *syntax.ValidationErrors when any
// validator reports a problem.
func WithValidators(validators ...syntax.Validator) Option {
	return func(cfg *config) {
		cfg.validators = append(cfg.validators, validators...)
	}
}

// WithTransformers adds rewrites applied to the parsed expression, in
// order, before validation and compilation.
func WithTransformers(transformers ...syntax.Transformer) Option {
	return func(cfg *config) {
		cfg.transformers = append(cfg.transformers, transformers...)
	}
}

// WithLogger sets the logger used for debug events. Nothing is logged by
// default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMaxFrameDepth limits the depth of nested arrow function calls.
func WithMaxFrameDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxFrameDepth = depth
	}
}

// WithContextCheckInterval sets the number of evaluated nodes between checks
// for cancellation of the context. Use 0 to disable checking.
func WithContextCheckInterval(interval int) Option {
	return func(cfg *config) {
		cfg.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for evaluation events.
func WithObserver(observer vm.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}
