package vm

import (
	"github.com/rs/zerolog"

	"github.com/jcormont/expression-runner/object"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithFunctions provides the function registry. A variable name that is
// not found in the scope resolves to the registry entry of the same name.
// Entries that are not callable are ignored.
func WithFunctions(functions map[string]object.Object) Option {
	return func(vm *VirtualMachine) {
		for name, fn := range functions {
			if _, ok := fn.(object.Callable); ok {
				vm.functions[name] = fn
			}
		}
	}
}

// WithMaxFrameDepth sets the maximum number of nested arrow function calls.
// The default is MaxFrameDepth.
func WithMaxFrameDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		vm.maxFrameDepth = depth
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// evaluation. The interval is specified in number of evaluated nodes. A
// value of 0 disables checking. The default is DefaultContextCheckInterval.
//
// Lower values provide more responsive cancellation at a small cost per
// node.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for evaluation events.
// Returning false from any observer method halts evaluation immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithLogger sets the logger used for debug events. The default logger
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}
