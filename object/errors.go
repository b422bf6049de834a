package object

import (
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
)

func readOnlyError(obj Object, name string) error {
	return errz.Newf(errz.ErrAccess, errors.E3003,
		"Cannot set property %s of %s", name, Describe(obj))
}

func notCallableError(obj Object) error {
	return errz.Newf(errz.ErrType, errors.E3004, "%s is not a function", Describe(obj))
}

// Describe returns a short description of obj for error messages.
func Describe(obj Object) string {
	switch obj := obj.(type) {
	case nil, *UndefinedType:
		return "undefined"
	case *NullType:
		return "null"
	case *String:
		return "string"
	case *Number:
		return "number " + obj.Inspect()
	case *Bool:
		return "boolean " + obj.Inspect()
	case *List:
		return "array"
	case *Map:
		return "object"
	case *Builtin:
		return "function " + obj.name
	case *Closure:
		return "arrow function"
	case *Time:
		return "date"
	case *Regexp:
		return "regular expression"
	default:
		return string(obj.Type())
	}
}
