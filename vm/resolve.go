package vm

import (
	"context"
	"sort"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
)

// Property access rules:
//
//   - A variable is looked up in the current frame and its parents, then in
//     the function registry.
//   - A property is read with GetAttr, which only exposes the allow-listed
//     methods of each type, array and string indexes, and the own keys of
//     plain objects. Any other name reads as undefined.
//   - Reading a property of undefined or null is an error, except in an
//     optional chain, which stops at that value instead.
//   - Only plain objects, and the indexes and length of arrays, can be
//     written. Builtins stored in an object cannot be overwritten.

// resolve reads a path. The base is a variable name, or a node whose value
// the steps are applied to.
func (vm *VirtualMachine) resolve(ctx context.Context, base any, steps []any) (object.Object, error) {
	if name, ok := base.(string); ok {
		value, err := vm.lookup(name)
		if err != nil {
			return nil, err
		}
		value, _, err = vm.walk(ctx, value, name, steps, false)
		return value, err
	}
	value, err := vm.eval(ctx, base)
	if err != nil {
		return nil, err
	}
	value, _, err = vm.walk(ctx, value, "("+object.TypeOf(value)+")", steps, false)
	return value, err
}

// optionalChain evaluates [base, steps...] of an optional chain. stopped
// reports whether the chain ended early at an undefined or null value.
func (vm *VirtualMachine) optionalChain(ctx context.Context, operands []any) (value object.Object, stopped bool, err error) {
	if len(operands) == 0 {
		return nil, false, invalidCode("empty optional chain")
	}
	base, err := vm.eval(ctx, operands[0])
	if err != nil {
		return nil, false, err
	}
	return vm.walk(ctx, base, "("+object.TypeOf(base)+")", operands[1:], true)
}

// walk applies property steps to cur. The path names cur in error messages.
// In an optional chain, a nullish value stops the walk and is returned with
// stopped set.
func (vm *VirtualMachine) walk(ctx context.Context, cur object.Object, path string, steps []any, optional bool) (value object.Object, stopped bool, err error) {
	for _, step := range steps {
		if optional && object.IsNullish(cur) {
			return cur, true, nil
		}
		key, err := vm.stepKey(ctx, step)
		if err != nil {
			return nil, false, err
		}
		path += "." + key
		if object.IsNullish(cur) {
			return nil, false, errz.Newf(errz.ErrType, errors.E3002,
				"Cannot read property %s of undefined value %s", path, cur.Inspect())
		}
		next, ok := cur.GetAttr(key)
		if !ok || next == nil {
			next = object.Undefined
		}
		cur = next
	}
	return cur, false, nil
}

// stepKey returns the property name of a path step: a name, an index
// literal, or a node that evaluates to the key.
func (vm *VirtualMachine) stepKey(ctx context.Context, step any) (string, error) {
	switch step := step.(type) {
	case string:
		return step, nil
	case float64:
		return object.FormatNumber(step), nil
	}
	value, err := vm.eval(ctx, step)
	if err != nil {
		return "", err
	}
	return object.PropertyKey(value), nil
}

// lookup returns the value of a variable, or the registered function of
// that name.
func (vm *VirtualMachine) lookup(name string) (object.Object, error) {
	if value, ok := vm.frame.lookup(name); ok {
		return value, nil
	}
	if fn, ok := vm.functions[name]; ok {
		return fn, nil
	}
	return nil, vm.undefinedVariable(name, true)
}

func (vm *VirtualMachine) undefinedVariable(name string, withFunctions bool) error {
	err := errz.Newf(errz.ErrName, errors.E3001, "Variable is not defined: %s", name)
	candidates := vm.frame.names()
	if withFunctions {
		candidates = append(candidates, vm.Functions()...)
	}
	sort.Strings(candidates)
	if hint := errors.FormatSuggestions(errors.SuggestSimilar(name, candidates)); hint != "" {
		err = err.WithHint(hint)
	}
	return err
}

// evalAssign evaluates [target, operator, value]. The target is a resolve
// node: a variable, or a path ending in the property to write.
func (vm *VirtualMachine) evalAssign(ctx context.Context, operands []any) (object.Object, error) {
	target, ok := operands[0].([]any)
	if !ok || len(target) == 0 {
		return nil, invalidCode("assignment target %v", operands[0])
	}
	if code, isCode := target[0].(op.Code); isCode {
		if code != op.Resolve || len(target) < 2 {
			return nil, invalidCode("assignment target must be a resolve node")
		}
		target = target[1:]
	}
	operator, _ := operands[1].(string)
	binary, ok := op.AssignOperator(operator)
	if !ok {
		return nil, invalidCode("assignment operator %v", operands[1])
	}
	value, err := vm.eval(ctx, operands[2])
	if err != nil {
		return nil, err
	}
	base, steps := target[0], target[1:]
	name, isVar := base.(string)
	if isVar && len(steps) == 0 {
		return vm.assignVariable(name, binary, value)
	}

	var container object.Object
	var path string
	if isVar {
		v, ok := vm.frame.lookup(name)
		if !ok {
			return nil, vm.undefinedVariable(name, false)
		}
		container, path = v, name
	} else {
		if container, err = vm.eval(ctx, base); err != nil {
			return nil, err
		}
		path = "(" + object.TypeOf(container) + ")"
	}
	if len(steps) == 0 {
		return nil, errz.Newf(errz.ErrAccess, errors.E3003, "Cannot assign to %s", path)
	}

	// Find the container of the last step. Every container along the way
	// must be writable.
	var key string
	for i, step := range steps {
		if object.IsNullish(container) {
			break
		}
		if i > 0 {
			if container, ok = container.GetAttr(key); !ok {
				container = object.Undefined
			}
		}
		if key, err = vm.stepKey(ctx, step); err != nil {
			return nil, err
		}
		path += "." + key
		if !assignable(container, key) {
			return nil, errz.Newf(errz.ErrAccess, errors.E3003, "Cannot assign to %s", path)
		}
	}
	if object.IsNullish(container) {
		return nil, errz.Newf(errz.ErrType, errors.E3002, "Cannot access property of undefined value %s", path)
	}
	old, exists := container.GetAttr(key)
	if _, native := old.(*object.Builtin); exists && native {
		return nil, errz.Newf(errz.ErrAccess, errors.E3005, "Cannot overwrite native function %s", path)
	}
	if !exists || old == nil {
		old = object.Undefined
	}
	result, err := combine(binary, old, value)
	if err != nil {
		return nil, err
	}
	if err := container.SetAttr(key, result); err != nil {
		return nil, err
	}
	return result, nil
}

// assignVariable writes a variable in the frame that defines it, or in the
// root scope if no frame does.
func (vm *VirtualMachine) assignVariable(name, binary string, value object.Object) (object.Object, error) {
	f := vm.frame.owner(name)
	if f == nil {
		f = vm.frame.root()
	}
	old, ok := f.vars.Get(name)
	if !ok {
		old = object.Undefined
	}
	result, err := combine(binary, old, value)
	if err != nil {
		return nil, err
	}
	f.vars.Set(name, result)
	return result, nil
}

func combine(binary string, old, value object.Object) (object.Object, error) {
	if binary == "" {
		return value, nil
	}
	return object.BinaryOp(binary, old, value)
}

// assignable returns true if the named property of obj may be written.
func assignable(obj object.Object, name string) bool {
	switch obj.(type) {
	case *object.Map:
		return true
	case *object.List:
		if name == "length" {
			return true
		}
		_, ok := object.IsArrayIndex(name)
		return ok
	}
	return false
}
