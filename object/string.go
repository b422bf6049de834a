package object

import (
	"context"
	"strings"
	"unicode/utf16"
)

// String wraps a string value. Lengths and positions are counted in UTF-16
// code units, as they are in JavaScript.
type String struct {
	value string
}

var emptyString = &String{}

// NewString returns a String holding value.
func NewString(value string) *String {
	if value == "" {
		return emptyString
	}
	return &String{value: value}
}

func (s *String) Type() Type      { return STRING }
func (s *String) Value() string   { return s.value }
func (s *String) Inspect() string { return s.value }
func (s *String) String() string  { return s.value }
func (s *String) Interface() any  { return s.value }
func (s *String) IsTruthy() bool  { return s.value != "" }

func (s *String) Equals(other Object) bool {
	o, ok := other.(*String)
	return ok && o.value == s.value
}

// GetAttr returns characters by index, and the allow-listed string
// properties and methods.
func (s *String) GetAttr(name string) (Object, bool) {
	if i, ok := IsArrayIndex(name); ok {
		u := units(s.value)
		if i >= len(u) {
			return Undefined, true
		}
		return NewString(fromUnits(u[i : i+1])), true
	}
	return stringAttrs.GetAttr(s, name)
}

func (s *String) SetAttr(name string, value Object) error {
	return readOnlyError(s, name)
}

// Len returns the length in UTF-16 code units.
func (s *String) Len() int {
	return len(units(s.value))
}

func units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func fromUnits(u []uint16) string {
	return string(utf16.Decode(u))
}

// indexUnits returns the first index at or after from where needle occurs
// in haystack, or -1.
func indexUnits(haystack, needle []uint16, from int) int {
	for i := max(from, 0); i+len(needle) <= len(haystack); i++ {
		if equalUnits(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// lastIndexUnits returns the last index at or before from where needle
// occurs in haystack, or -1.
func lastIndexUnits(haystack, needle []uint16, from int) int {
	for i := min(from, len(haystack)-len(needle)); i >= 0; i-- {
		if equalUnits(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalUnits(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// relativeIndex resolves a start or end argument against length: negative
// values count from the end and the result is clamped to [0, length].
// Undefined yields def.
func relativeIndex(arg Object, length, def int) int {
	if _, ok := arg.(*UndefinedType); ok {
		return def
	}
	f := ToIntegerOrInfinity(arg)
	if f < 0 {
		f += float64(length)
		if f < 0 {
			return 0
		}
		return int(f)
	}
	if f > float64(length) {
		return length
	}
	return int(f)
}

// clampIndex converts a position argument to an int in [0, length].
func clampIndex(arg Object, length int) int {
	f := ToIntegerOrInfinity(arg)
	if f < 0 {
		return 0
	}
	if f > float64(length) {
		return length
	}
	return int(f)
}

var stringAttrs = NewAttrRegistry[*String]("string")

func init() {
	stringAttrs.Define("length").
		Doc("Number of UTF-16 code units").
		Returns("number").
		Getter(func(s *String) Object {
			return NewNumber(float64(s.Len()))
		})

	stringAttrs.Define("charAt").
		Doc("Character at an index").
		OptionalArg("index").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			i := ToIntegerOrInfinity(args[0])
			if i < 0 || i >= float64(len(u)) {
				return emptyString, nil
			}
			return NewString(fromUnits(u[int(i) : int(i)+1])), nil
		})

	stringAttrs.Define("charCodeAt").
		Doc("UTF-16 code unit at an index").
		OptionalArg("index").
		Returns("number").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			i := ToIntegerOrInfinity(args[0])
			if i < 0 || i >= float64(len(u)) {
				return NewNumber(nan), nil
			}
			return NewNumber(float64(u[int(i)])), nil
		})

	stringAttrs.Define("endsWith").
		Doc("Check whether the string ends with a search string").
		Arg("search").
		OptionalArg("endPosition").
		Returns("boolean").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			search := units(ToString(args[0]))
			end := len(u)
			if _, ok := args[1].(*UndefinedType); !ok {
				end = clampIndex(args[1], len(u))
			}
			start := end - len(search)
			if start < 0 {
				return False, nil
			}
			return NewBool(equalUnits(u[start:end], search)), nil
		})

	stringAttrs.Define("startsWith").
		Doc("Check whether the string starts with a search string").
		Arg("search").
		OptionalArg("position").
		Returns("boolean").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			search := units(ToString(args[0]))
			start := clampIndex(args[1], len(u))
			if start+len(search) > len(u) {
				return False, nil
			}
			return NewBool(equalUnits(u[start:start+len(search)], search)), nil
		})

	stringAttrs.Define("indexOf").
		Doc("First index of a search string, or -1").
		Arg("search").
		OptionalArg("fromIndex").
		Returns("number").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			from := clampIndex(args[1], len(u))
			return NewNumber(float64(indexUnits(u, units(ToString(args[0])), from))), nil
		})

	stringAttrs.Define("lastIndexOf").
		Doc("Last index of a search string, or -1").
		Arg("search").
		OptionalArg("fromIndex").
		Returns("number").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			from := len(u)
			if n := ToNumber(args[1]); !isNaN(n) {
				from = clampIndex(args[1], len(u))
			}
			return NewNumber(float64(lastIndexUnits(u, units(ToString(args[0])), from))), nil
		})

	stringAttrs.Define("match").
		Doc("Match against a regular expression").
		Arg("pattern").
		Returns("array").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			re, err := toRegexp(args[0])
			if err != nil {
				return nil, err
			}
			return re.match(s.value), nil
		})

	stringAttrs.Define("replace").
		Doc("Replace the first match, or all matches of a global regular expression").
		Args("pattern", "replacement").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			result, err := replace(ctx, s.value, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return NewString(result), nil
		})

	stringAttrs.Define("slice").
		Doc("Extract a section of the string").
		OptionalArg("start").
		OptionalArg("end").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			u := units(s.value)
			start := relativeIndex(args[0], len(u), 0)
			end := relativeIndex(args[1], len(u), len(u))
			if start >= end {
				return emptyString, nil
			}
			return NewString(fromUnits(u[start:end])), nil
		})

	stringAttrs.Define("split").
		Doc("Split into an array of substrings").
		OptionalArg("separator").
		OptionalArg("limit").
		Returns("array").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return split(s.value, args[0], args[1])
		})

	stringAttrs.Define("toLowerCase").
		Doc("Convert to lower case").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return NewString(strings.ToLower(s.value)), nil
		})

	stringAttrs.Define("toUpperCase").
		Doc("Convert to upper case").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return NewString(strings.ToUpper(s.value)), nil
		})

	stringAttrs.Define("trim").
		Doc("Remove leading and trailing whitespace").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return NewString(strings.TrimSpace(s.value)), nil
		})
}

func split(s string, sep, limitArg Object) (Object, error) {
	limit := -1
	if _, ok := limitArg.(*UndefinedType); !ok {
		limit = int(ToUint32(limitArg))
	}
	var parts []string
	switch sep := sep.(type) {
	case *UndefinedType:
		parts = []string{s}
	case *Regexp:
		if s == "" {
			if sep.value.MatchString("") {
				parts = []string{}
			} else {
				parts = []string{""}
			}
		} else {
			parts = sep.value.Split(s, -1)
		}
	default:
		text := ToString(sep)
		if text == "" {
			for _, u := range units(s) {
				parts = append(parts, fromUnits([]uint16{u}))
			}
		} else {
			parts = strings.Split(s, text)
		}
	}
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	items := make([]Object, len(parts))
	for i, p := range parts {
		items[i] = NewString(p)
	}
	return NewList(items), nil
}
