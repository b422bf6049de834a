// Package vm provides a VirtualMachine that evaluates compiled expression
// IR.
//
// Evaluation is a recursive walk over the IR. Every variable lookup,
// property read, property write and function call goes through the checks
// in resolve.go, so that an expression can only reach the values it was
// given and the functions that were registered.
package vm

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
)

const (
	MaxArgs       = 256
	MaxFrameDepth = 1024

	// DefaultContextCheckInterval is the number of evaluated nodes between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000

	// ResultVariable receives the value of each top level statement.
	ResultVariable = "$_"
)

type VirtualMachine struct {
	code      ir.Node
	functions map[string]object.Object
	logger    zerolog.Logger

	maxFrameDepth int

	// contextCheckInterval is the number of evaluated nodes between checks
	// of ctx.Done(). A value of 0 disables checking.
	contextCheckInterval int

	// observer receives callbacks for evaluation events (steps, calls,
	// returns). If nil, no callbacks are made.
	observer       Observer
	observerConfig ObserverConfig

	running  bool
	runMutex sync.Mutex

	// state of the evaluation in progress
	frame *frame
	depth int
	steps int
}

// New creates a new Virtual Machine for the given program. The program
// must be an expression list, as produced by the compiler or returned by
// ir.Normalize.
func New(code ir.Node, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		code:                 code,
		functions:            map[string]object.Object{},
		logger:               zerolog.Nop(),
		maxFrameDepth:        MaxFrameDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Functions returns the names of the registered functions.
func (vm *VirtualMachine) Functions() []string {
	names := make([]string, 0, len(vm.functions))
	for name := range vm.functions {
		names = append(names, name)
	}
	return names
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	if err := ctx.Err(); err != nil {
		return cancelledError(err)
	}
	vm.running = true
	vm.depth = 0
	vm.steps = 0
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
	vm.frame = nil
}

// Run evaluates the program against the given scope and returns the value
// of the last statement. Assignments to variables that are not parameters
// of an arrow function are written to scope, and the value of each top
// level statement is stored in scope as $_.
func (vm *VirtualMachine) Run(ctx context.Context, scope *object.Map) (result object.Object, err error) {
	if err := vm.start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()
	if scope == nil {
		scope = object.NewMap()
	}
	vm.frame = newRootFrame(scope)
	return vm.runTop(vm.initContext(ctx), vm.code)
}

// Call an arrow function or builtin with the given arguments, outside of
// Run. An arrow function sees the variables of the scope it was created
// in. If this VM is already running, an error is returned.
func (vm *VirtualMachine) Call(ctx context.Context, fn object.Object, args []object.Object) (result object.Object, err error) {
	if err := vm.start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()
	vm.frame = newRootFrame(object.NewMap())
	return vm.callObject(vm.initContext(ctx), fn, args)
}

func (vm *VirtualMachine) initContext(ctx context.Context) context.Context {
	return object.WithCallFunc(ctx, vm.callClosure)
}

// runTop evaluates the statements of the program, recording the value of
// each in the result variable. A program holding a single statement list
// is unwrapped, so that each statement of the inner list is recorded.
func (vm *VirtualMachine) runTop(ctx context.Context, code ir.Node) (object.Object, error) {
	if c, ok := ir.Opcode(code); !ok || c != op.Expression {
		return nil, invalidCode("program must be an expression list")
	}
	stmts := ir.Operands(code)
	if len(stmts) == 1 {
		if inner, ok := stmts[0].([]any); ok && len(inner) > 0 {
			if c, ok := inner[0].(op.Code); ok && c == op.Expression {
				return vm.runTop(ctx, inner)
			}
		}
	}
	root := vm.frame.root()
	var result object.Object = object.Undefined
	for _, stmt := range stmts {
		value, err := vm.eval(ctx, stmt)
		if err != nil {
			return nil, err
		}
		root.vars.Set(ResultVariable, value)
		result = value
	}
	return result, nil
}

// callObject calls fn, which must be an arrow function or a builtin.
func (vm *VirtualMachine) callObject(ctx context.Context, fn object.Object, args []object.Object) (object.Object, error) {
	if len(args) > MaxArgs {
		return nil, errz.Newf(errz.ErrRuntime, errors.E3009,
			"max args limit of %d exceeded (got %d)", MaxArgs, len(args))
	}
	switch fn := fn.(type) {
	case *object.Closure:
		return vm.callClosure(ctx, fn, args)
	case *object.Builtin:
		return vm.callBuiltin(ctx, fn, args)
	default:
		return nil, errz.New(errz.ErrType, errors.E3004, "Not a function")
	}
}

func (vm *VirtualMachine) callBuiltin(ctx context.Context, fn *object.Builtin, args []object.Object) (object.Object, error) {
	if !vm.notifyCall(fn.Name(), len(args)) {
		return nil, haltedError()
	}
	result, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, vm.hostError(fn.Name(), err)
	}
	if !vm.notifyReturn(fn.Name()) {
		return nil, haltedError()
	}
	if result == nil {
		return object.Undefined, nil
	}
	return result, nil
}

// callClosure calls an arrow function. A frame holding the parameters is
// pushed for the duration of the call, and is popped again whether or not
// the call succeeds. It is installed in the context as the object.CallFunc
// used by builtins that call back into the expression.
func (vm *VirtualMachine) callClosure(ctx context.Context, fn *object.Closure, args []object.Object) (object.Object, error) {
	if vm.frame == nil {
		return nil, invalidCode("arrow function called outside of an evaluation")
	}
	if vm.depth >= vm.maxFrameDepth {
		vm.logger.Debug().Int("depth", vm.depth).Msg("maximum call depth exceeded")
		return nil, errz.Newf(errz.ErrRuntime, errors.E3007,
			"Maximum call depth exceeded (%d)", vm.maxFrameDepth)
	}
	parent, ok := fn.Scope().(*frame)
	if !ok || parent == nil {
		parent = vm.frame.root()
	}
	saved := vm.frame
	vm.depth++
	vm.frame = newCallFrame(fn, parent, args, vm.depth)
	defer func() {
		vm.frame = saved
		vm.depth--
	}()
	if !vm.notifyCall("", len(args)) {
		return nil, haltedError()
	}
	result, err := vm.eval(ctx, fn.Body())
	if err != nil {
		return nil, err
	}
	if !vm.notifyReturn("") {
		return nil, haltedError()
	}
	return result, nil
}

// hostError converts an error returned by a builtin. Errors raised by the
// evaluator itself, for example inside an arrow function passed to a
// builtin, are passed through. Anything else is re-raised with its message
// only.
func (vm *VirtualMachine) hostError(name string, err error) error {
	if se, ok := errz.As(err); ok {
		return se
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return cancelledError(err)
	}
	vm.logger.Debug().Str("function", name).Err(err).Msg("host function failed")
	return errz.New(errz.ErrHost, errors.E3006, err.Error())
}

// tick counts an evaluated node, checking for cancellation and notifying
// the observer.
func (vm *VirtualMachine) tick(ctx context.Context, code op.Code) error {
	vm.steps++
	if vm.contextCheckInterval > 0 && vm.steps%vm.contextCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return cancelledError(err)
		}
	}
	if vm.observer == nil {
		return nil
	}
	cfg := vm.observerConfig
	switch cfg.StepMode {
	case StepNone:
		return nil
	case StepSampled:
		if vm.steps%cfg.SampleInterval != 0 {
			return nil
		}
	}
	event := StepEvent{
		Step:       vm.steps,
		Opcode:     code,
		OpcodeName: code.String(),
		FrameDepth: vm.depth,
	}
	if !vm.observer.OnStep(event) {
		return haltedError()
	}
	return nil
}

func (vm *VirtualMachine) notifyCall(name string, argc int) bool {
	if vm.observer == nil || !vm.observerConfig.ObserveCalls {
		return true
	}
	return vm.observer.OnCall(CallEvent{FunctionName: name, ArgCount: argc, FrameDepth: vm.depth})
}

func (vm *VirtualMachine) notifyReturn(name string) bool {
	if vm.observer == nil || !vm.observerConfig.ObserveReturns {
		return true
	}
	return vm.observer.OnReturn(ReturnEvent{FunctionName: name, FrameDepth: vm.depth})
}

func invalidCode(format string, args ...any) *errz.StructuredError {
	return errz.Newf(errz.ErrRuntime, errors.E3009, "invalid code: "+format, args...)
}

func cancelledError(err error) *errz.StructuredError {
	return errz.Newf(errz.ErrRuntime, errors.E3008, "evaluation cancelled: %v", err).WithCause(err)
}

func haltedError() *errz.StructuredError {
	return errz.New(errz.ErrRuntime, errors.E3008, "execution halted by observer")
}
