// Package object provides the runtime values of the expression language.
//
// Values handed to the evaluator by a host are converted with FromGo, and
// results are converted back with the Interface method. Code that works
// with values directly will usually type switch on them:
//
//	switch obj := obj.(type) {
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Number:
//		// do something with obj.Value()
//	}
//
// Property access is restricted per type. Strings, arrays, numbers, dates
// and regular expressions expose a fixed list of properties and methods,
// plain objects expose their own keys, and everything else exposes nothing.
// Host functions are only callable after being wrapped explicitly with
// NewBuiltin or NewGoFunc.
package object

import "context"

// Type of an object as a string.
type Type string

// Type constants
const (
	UNDEFINED Type = "undefined"
	NULL      Type = "null"
	BOOL      Type = "boolean"
	NUMBER    Type = "number"
	STRING    Type = "string"
	LIST      Type = "array"
	MAP       Type = "object"
	BUILTIN   Type = "builtin"
	CLOSURE   Type = "closure"
	TIME      Type = "date"
	REGEXP    Type = "regexp"
	OPAQUE    Type = "opaque"
)

var (
	Undefined = &UndefinedType{}
	Null      = &NullType{}
	True      = &Bool{value: true}
	False     = &Bool{value: false}
)

// Object is the interface that all runtime values implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns the string conversion of the object, as used by
	// string concatenation and the str() function.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() any

	// Equals returns true if the given object is strictly equal (===) to
	// this object.
	Equals(other Object) bool

	// GetAttr returns a readable property of this object. Names that are
	// not on the allow-list of the type report false.
	GetAttr(name string) (Object, bool)

	// SetAttr sets a property of this object. Only plain objects and
	// arrays accept writes.
	SetAttr(name string, value Object) error

	// IsTruthy returns true if the object is considered "truthy".
	IsTruthy() bool
}

// Callable is implemented by the values that may be called from
// expressions: wrapped host functions (*Builtin) and arrow functions
// (*Closure).
//
// For closures, Call uses the CallFunc stored in the context by the
// evaluator. Array methods such as map and filter accept any Callable.
type Callable interface {
	Object

	// Call invokes the callable with the given arguments and returns the result.
	Call(ctx context.Context, args ...Object) (Object, error)
}

// IsNullish returns true for undefined and null.
func IsNullish(obj Object) bool {
	switch obj.(type) {
	case *UndefinedType, *NullType:
		return true
	}
	return obj == nil
}

// TypeOf returns the result of the typeof operator for obj.
func TypeOf(obj Object) string {
	switch obj.(type) {
	case nil, *UndefinedType:
		return "undefined"
	case *Bool:
		return "boolean"
	case *Number:
		return "number"
	case *String:
		return "string"
	case Callable:
		return "function"
	default:
		return "object"
	}
}

// Attrs returns the readable property names of obj: the allow-list of its
// type, or the own keys of a plain object.
func Attrs(obj Object) []string {
	switch obj := obj.(type) {
	case *String:
		return AttrNames(stringAttrs.Specs())
	case *List:
		return AttrNames(listAttrs.Specs())
	case *Number:
		return AttrNames(numberAttrs.Specs())
	case *Regexp:
		return AttrNames(regexpAttrs.Specs())
	case *Time:
		return AttrNames(timeAttrs.Specs())
	case *Map:
		return obj.Keys()
	}
	return nil
}

// TypeAttrs returns the allow-lists of the built in types, keyed by type
// name.
func TypeAttrs() map[string][]AttrSpec {
	return map[string][]AttrSpec{
		"string": stringAttrs.Specs(),
		"array":  listAttrs.Specs(),
		"number": numberAttrs.Specs(),
		"regexp": regexpAttrs.Specs(),
		"date":   timeAttrs.Specs(),
	}
}
