package object

import (
	"math"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
)

// BinaryOp applies a binary operator to two values. The short circuit
// operators are accepted too, with both operands already evaluated; the
// evaluator normally handles those itself so that the right operand is only
// evaluated when needed.
func BinaryOp(operator string, a, b Object) (Object, error) {
	switch operator {
	case "&&":
		if !a.IsTruthy() {
			return a, nil
		}
		return b, nil
	case "||":
		if a.IsTruthy() {
			return a, nil
		}
		return b, nil
	case "??":
		if IsNullish(a) {
			return b, nil
		}
		return a, nil
	case "+":
		return Add(a, b), nil
	case "-":
		return NewNumber(ToNumber(a) - ToNumber(b)), nil
	case "*":
		return NewNumber(ToNumber(a) * ToNumber(b)), nil
	case "/":
		return NewNumber(ToNumber(a) / ToNumber(b)), nil
	case "%":
		return NewNumber(math.Mod(ToNumber(a), ToNumber(b))), nil
	case "==":
		return NewBool(LooseEquals(a, b)), nil
	case "!=":
		return NewBool(!LooseEquals(a, b)), nil
	case "===":
		return NewBool(a.Equals(b)), nil
	case "!==":
		return NewBool(!a.Equals(b)), nil
	case "<":
		return NewBool(compare(a, b) == 1), nil
	case ">":
		return NewBool(compare(b, a) == 1), nil
	case "<=":
		return NewBool(compare(b, a) == 0), nil
	case ">=":
		return NewBool(compare(a, b) == 0), nil
	case "&":
		return NewNumber(float64(ToInt32(a) & ToInt32(b))), nil
	case "|":
		return NewNumber(float64(ToInt32(a) | ToInt32(b))), nil
	case "^":
		return NewNumber(float64(ToInt32(a) ^ ToInt32(b))), nil
	case "<<":
		return NewNumber(float64(ToInt32(a) << (ToUint32(b) & 31))), nil
	case ">>":
		return NewNumber(float64(ToInt32(a) >> (ToUint32(b) & 31))), nil
	case ">>>":
		return NewNumber(float64(ToUint32(a) >> (ToUint32(b) & 31))), nil
	case "in":
		return In(a, b)
	}
	return nil, errz.Newf(errz.ErrRuntime, errors.E3009, "unknown operator %q", operator)
}

// Add implements the + operator: string concatenation if either primitive
// operand is a string, numeric addition otherwise.
func Add(a, b Object) Object {
	a, b = ToPrimitive(a), ToPrimitive(b)
	_, aStr := a.(*String)
	_, bStr := b.(*String)
	if aStr || bStr {
		return NewString(ToString(a) + ToString(b))
	}
	return NewNumber(ToNumber(a) + ToNumber(b))
}

// compare returns 1 if a < b, 0 if not, and -1 if the comparison is
// undefined because a NaN is involved.
func compare(a, b Object) int {
	a, b = ToPrimitive(a), ToPrimitive(b)
	if x, ok := a.(*String); ok {
		if y, ok := b.(*String); ok {
			if compareStrings(x.value, y.value) < 0 {
				return 1
			}
			return 0
		}
	}
	x, y := ToNumber(a), ToNumber(b)
	if isNaN(x) || isNaN(y) {
		return -1
	}
	if x < y {
		return 1
	}
	return 0
}

// compareStrings orders strings by UTF-16 code units.
func compareStrings(a, b string) int {
	if isASCII(a) && isASCII(b) {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	x, y := units(a), units(b)
	for i := 0; i < len(x) && i < len(y); i++ {
		if x[i] != y[i] {
			if x[i] < y[i] {
				return -1
			}
			return 1
		}
	}
	return len(x) - len(y)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// LooseEquals implements the == operator.
func LooseEquals(a, b Object) bool {
	if a.Type() == b.Type() {
		return a.Equals(b)
	}
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}
	switch a.(type) {
	case *Number, *String, *Bool:
	default:
		if isPrimitive(b) {
			return LooseEquals(ToPrimitive(a), b)
		}
		return false
	}
	if !isPrimitive(b) {
		return LooseEquals(a, ToPrimitive(b))
	}
	return ToNumber(a) == ToNumber(b)
}

// StrictEquals implements the === operator.
func StrictEquals(a, b Object) bool {
	return a.Equals(b)
}

func isPrimitive(obj Object) bool {
	switch obj.(type) {
	case *Number, *String, *Bool, *UndefinedType, *NullType:
		return true
	}
	return false
}

// In implements the in operator: own keys of plain objects, and indexes and
// readable properties of arrays.
func In(key, container Object) (Object, error) {
	name := PropertyKey(key)
	switch c := container.(type) {
	case *Map:
		return NewBool(c.Has(name)), nil
	case *List:
		if i, ok := IsArrayIndex(name); ok {
			return NewBool(i < c.Len()), nil
		}
		return NewBool(listAttrs.Has(name)), nil
	}
	return nil, errz.Newf(errz.ErrType, errors.E3004,
		"Cannot use 'in' operator to search for '%s' in %s", name, Describe(container))
}

// UnaryOp applies a prefix operator.
func UnaryOp(operator string, x Object) (Object, error) {
	switch operator {
	case "+":
		return NewNumber(ToNumber(x)), nil
	case "-":
		return NewNumber(-ToNumber(x)), nil
	case "~":
		return NewNumber(float64(^ToInt32(x))), nil
	case "!":
		return NewBool(!x.IsTruthy()), nil
	case "typeof":
		return NewString(TypeOf(x)), nil
	}
	return nil, errz.Newf(errz.ErrRuntime, errors.E3009, "unknown operator %q", operator)
}
