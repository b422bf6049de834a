package vm

import (
	"context"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
)

// eval returns the value of an IR element: a literal scalar or a node.
func (vm *VirtualMachine) eval(ctx context.Context, v any) (object.Object, error) {
	switch v := v.(type) {
	case []any:
		return vm.evalNode(ctx, v)
	case nil:
		return object.Null, nil
	case bool:
		return object.NewBool(v), nil
	case string:
		return object.NewString(v), nil
	case float64:
		return object.NewNumber(v), nil
	case int:
		return object.NewNumber(float64(v)), nil
	case int64:
		return object.NewNumber(float64(v)), nil
	}
	return nil, invalidCode("unexpected %T value", v)
}

func (vm *VirtualMachine) evalNode(ctx context.Context, node ir.Node) (object.Object, error) {
	code, ok := ir.Opcode(node)
	if !ok {
		return nil, invalidCode("%s", ir.String(node))
	}
	if err := vm.tick(ctx, code); err != nil {
		return nil, err
	}
	operands := ir.Operands(node)
	if code != op.Resolve {
		info := op.GetInfo(code)
		if len(operands) < info.MinOperands || (info.MaxOperands >= 0 && len(operands) > info.MaxOperands) {
			return nil, invalidCode("%s node with %d operands", code, len(operands))
		}
	}
	switch code {
	case op.Assign:
		return vm.evalAssign(ctx, operands)
	case op.Expression:
		return vm.evalSequence(ctx, operands)
	case op.ArrowFunc:
		return vm.evalArrow(operands)
	case op.Ternary:
		cond, err := vm.eval(ctx, operands[0])
		if err != nil {
			return nil, err
		}
		if cond.IsTruthy() {
			return vm.eval(ctx, operands[1])
		}
		return vm.eval(ctx, operands[2])
	case op.Calc:
		return vm.evalCalc(ctx, operands)
	case op.Unary:
		return vm.evalUnary(ctx, operands)
	case op.Call:
		return vm.evalCall(ctx, operands)
	case op.Object:
		return vm.evalObject(ctx, operands)
	case op.Array:
		return vm.evalArray(ctx, operands)
	case op.Undef:
		return object.Undefined, nil
	case op.OptionalChain:
		value, _, err := vm.optionalChain(ctx, operands)
		return value, err
	case op.Resolve:
		if len(operands) == 0 {
			return nil, invalidCode("empty resolve node")
		}
		return vm.resolve(ctx, operands[0], operands[1:])
	case op.Spread:
		return nil, errz.New(errz.ErrRuntime, errors.E3010, "Spread is only allowed in object and array literals")
	}
	return nil, invalidCode("unknown opcode %d", code)
}

func (vm *VirtualMachine) evalSequence(ctx context.Context, items []any) (object.Object, error) {
	var result object.Object = object.Undefined
	for _, item := range items {
		value, err := vm.eval(ctx, item)
		if err != nil {
			return nil, err
		}
		result = value
	}
	return result, nil
}

// evalArrow creates an arrow function that captures the current frame.
func (vm *VirtualMachine) evalArrow(operands []any) (object.Object, error) {
	last := len(operands) - 1
	params := make([]string, 0, last)
	for _, p := range operands[:last] {
		name, ok := p.(string)
		if !ok || !isIdentifier(name) {
			return nil, invalidCode("invalid parameter %v", p)
		}
		params = append(params, name)
	}
	body, ok := operands[last].([]any)
	if !ok {
		body = ir.New(op.Expression, operands[last])
	}
	return object.NewClosure(params, body, vm.frame), nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		case i == 0 && c == '@':
		default:
			return false
		}
	}
	return true
}

// evalCalc evaluates a binary chain [x, op, y, op, z, ...]. Chains longer
// than a single operator are grouped by operator precedence first; all
// operators are left associative.
func (vm *VirtualMachine) evalCalc(ctx context.Context, operands []any) (object.Object, error) {
	if len(operands)%2 == 0 {
		return nil, invalidCode("binary chain with %d operands", len(operands))
	}
	if len(operands) == 3 {
		operator, ok := operands[1].(string)
		if !ok {
			return nil, invalidCode("operator %v", operands[1])
		}
		return vm.evalBinary(ctx, operands[0], operator, operands[2])
	}
	grouped, err := groupChain(operands)
	if err != nil {
		return nil, err
	}
	return vm.eval(ctx, grouped)
}

// groupChain converts a flat binary chain into nested Calc nodes with one
// operator each.
func groupChain(items []any) (any, error) {
	pos := 0
	var parse func(minPrec int) (any, error)
	parse = func(minPrec int) (any, error) {
		x := items[pos]
		pos++
		for pos < len(items) {
			operator, ok := items[pos].(string)
			if !ok {
				return nil, invalidCode("operator %v", items[pos])
			}
			prec, ok := op.BinaryPrecedence(operator)
			if !ok {
				return nil, invalidCode("unknown operator %q", operator)
			}
			if prec < minPrec {
				return x, nil
			}
			pos++
			y, err := parse(prec + 1)
			if err != nil {
				return nil, err
			}
			x = ir.New(op.Calc, x, operator, y)
		}
		return x, nil
	}
	return parse(0)
}

// evalBinary applies a binary operator. The right operand of &&, || and ??
// is only evaluated when the left operand does not decide the result.
func (vm *VirtualMachine) evalBinary(ctx context.Context, x any, operator string, y any) (object.Object, error) {
	left, err := vm.eval(ctx, x)
	if err != nil {
		return nil, err
	}
	switch operator {
	case "&&":
		if !left.IsTruthy() {
			return left, nil
		}
		return vm.eval(ctx, y)
	case "||":
		if left.IsTruthy() {
			return left, nil
		}
		return vm.eval(ctx, y)
	case "??":
		if !object.IsNullish(left) {
			return left, nil
		}
		return vm.eval(ctx, y)
	}
	right, err := vm.eval(ctx, y)
	if err != nil {
		return nil, err
	}
	return object.BinaryOp(operator, left, right)
}

func (vm *VirtualMachine) evalUnary(ctx context.Context, operands []any) (object.Object, error) {
	operator, ok := operands[0].(string)
	if !ok || !op.IsUnary(operator) {
		return nil, invalidCode("unary operator %v", operands[0])
	}
	x, err := vm.eval(ctx, operands[1])
	if err != nil {
		return nil, err
	}
	return object.UnaryOp(operator, x)
}

// evalCall evaluates a call. When the callee is an optional chain that
// stopped at an undefined or null value, the call and its arguments are
// skipped and that value is the result. A chain that reaches a missing
// property is still called, and fails.
func (vm *VirtualMachine) evalCall(ctx context.Context, operands []any) (object.Object, error) {
	var fn object.Object
	var err error
	if chain, ok := optionalChainOperands(operands[0]); ok {
		if err := vm.tick(ctx, op.OptionalChain); err != nil {
			return nil, err
		}
		var stopped bool
		fn, stopped, err = vm.optionalChain(ctx, chain)
		if err == nil && stopped {
			return fn, nil
		}
	} else {
		fn, err = vm.eval(ctx, operands[0])
	}
	if err != nil {
		return nil, err
	}
	args := make([]object.Object, 0, len(operands)-1)
	for _, arg := range operands[1:] {
		value, err := vm.eval(ctx, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	return vm.callObject(ctx, fn, args)
}

// optionalChainOperands returns the operands of an optional chain node.
func optionalChainOperands(v any) ([]any, bool) {
	node, ok := v.([]any)
	if !ok || len(node) == 0 {
		return nil, false
	}
	if code, ok := node[0].(op.Code); !ok || code != op.OptionalChain {
		return nil, false
	}
	return node[1:], true
}

// spreadOperand returns x for a [13, x] node.
func spreadOperand(v any) (any, bool) {
	node, ok := v.([]any)
	if !ok || len(node) != 2 {
		return nil, false
	}
	if code, ok := node[0].(op.Code); ok && code == op.Spread {
		return node[1], true
	}
	return nil, false
}

// evalObject evaluates key and value pairs and spread entries in order.
// Later keys overwrite earlier ones.
func (vm *VirtualMachine) evalObject(ctx context.Context, operands []any) (object.Object, error) {
	obj := object.NewMap()
	for i := 0; i < len(operands); i++ {
		if inner, ok := spreadOperand(operands[i]); ok {
			value, err := vm.eval(ctx, inner)
			if err != nil {
				return nil, err
			}
			if err := spreadInto(obj, value); err != nil {
				return nil, err
			}
			continue
		}
		if i+1 >= len(operands) {
			return nil, invalidCode("object key without a value")
		}
		key, err := vm.eval(ctx, operands[i])
		if err != nil {
			return nil, err
		}
		value, err := vm.eval(ctx, operands[i+1])
		if err != nil {
			return nil, err
		}
		obj.Set(object.PropertyKey(key), value)
		i++
	}
	return obj, nil
}

// spreadInto copies the own properties of value into obj. Arrays and
// strings contribute their indexes; undefined and null contribute nothing.
func spreadInto(obj *object.Map, value object.Object) error {
	switch value := value.(type) {
	case *object.Map:
		obj.Merge(value)
	case *object.List:
		for i, item := range value.Value() {
			obj.Set(object.FormatNumber(float64(i)), item)
		}
	case *object.String:
		for i := 0; i < value.Len(); i++ {
			key := object.FormatNumber(float64(i))
			ch, _ := value.GetAttr(key)
			obj.Set(key, ch)
		}
	case *object.UndefinedType, *object.NullType:
	default:
		return errz.Newf(errz.ErrRuntime, errors.E3010, "Cannot spread %s into an object", object.Describe(value))
	}
	return nil
}

func (vm *VirtualMachine) evalArray(ctx context.Context, operands []any) (object.Object, error) {
	items := make([]object.Object, 0, len(operands))
	for _, operand := range operands {
		if inner, ok := spreadOperand(operand); ok {
			value, err := vm.eval(ctx, inner)
			if err != nil {
				return nil, err
			}
			if items, err = appendSpread(items, value); err != nil {
				return nil, err
			}
			continue
		}
		value, err := vm.eval(ctx, operand)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	if len(items) > object.MaxListLength {
		return nil, errz.New(errz.ErrRuntime, errors.E3010, "Invalid array length")
	}
	return object.NewList(items), nil
}

// appendSpread appends the elements of an array, or the characters of a
// string, to items.
func appendSpread(items []object.Object, value object.Object) ([]object.Object, error) {
	switch value := value.(type) {
	case *object.List:
		return append(items, value.Value()...), nil
	case *object.String:
		for _, r := range value.Value() {
			items = append(items, object.NewString(string(r)))
		}
		return items, nil
	}
	return nil, errz.Newf(errz.ErrRuntime, errors.E3010, "%s is not iterable", object.Describe(value))
}
