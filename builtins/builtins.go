// Package builtins defines the default set of functions available to
// expressions.
package builtins

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gofrs/uuid"
	"github.com/jmespath-community/go-jmespath"

	"github.com/jcormont/expression-runner/object"
)

func arg(args []object.Object, i int) object.Object {
	if i < len(args) {
		return args[i]
	}
	return object.Undefined
}

func number(f float64) object.Object {
	return object.NewNumber(f)
}

func mathFunc(fn func(float64) float64) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return number(fn(object.ToNumber(arg(args, 0)))), nil
	}
}

// Round rounds to the nearest integer, with halves rounded up.
func Round(ctx context.Context, args ...object.Object) (object.Object, error) {
	x := object.ToNumber(arg(args, 0))
	if math.IsNaN(x) || math.IsInf(x, 0) || x == math.Trunc(x) {
		return number(x), nil
	}
	r := math.Floor(x + 0.5)
	if r == 0 && x < 0 {
		r = math.Copysign(0, -1)
	}
	return number(r), nil
}

func Min(ctx context.Context, args ...object.Object) (object.Object, error) {
	result := math.Inf(1)
	for _, a := range args {
		x := object.ToNumber(a)
		if math.IsNaN(x) {
			return number(math.NaN()), nil
		}
		if x < result || (x == 0 && result == 0 && math.Signbit(x)) {
			result = x
		}
	}
	return number(result), nil
}

func Max(ctx context.Context, args ...object.Object) (object.Object, error) {
	result := math.Inf(-1)
	for _, a := range args {
		x := object.ToNumber(a)
		if math.IsNaN(x) {
			return number(math.NaN()), nil
		}
		if x > result || (x == 0 && result == 0 && !math.Signbit(x)) {
			result = x
		}
	}
	return number(result), nil
}

func Pow(ctx context.Context, args ...object.Object) (object.Object, error) {
	x, y := object.ToNumber(arg(args, 0)), object.ToNumber(arg(args, 1))
	if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
		return number(math.NaN()), nil
	}
	return number(math.Pow(x, y)), nil
}

func Random(ctx context.Context, args ...object.Object) (object.Object, error) {
	return number(rand.Float64()), nil
}

func TypeOf(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(object.TypeOf(arg(args, 0))), nil
}

func Str(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(object.ToString(arg(args, 0))), nil
}

// Chr returns the string holding the UTF-16 code units given.
func Chr(ctx context.Context, args ...object.Object) (object.Object, error) {
	codes := make([]uint16, len(args))
	for i, a := range args {
		codes[i] = uint16(object.ToUint32(a))
	}
	return object.NewString(string(utf16.Decode(codes))), nil
}

func IsDefined(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewBool(!object.IsNullish(arg(args, 0))), nil
}

func IsArray(ctx context.Context, args ...object.Object) (object.Object, error) {
	_, ok := arg(args, 0).(*object.List)
	return object.NewBool(ok), nil
}

// IsObject returns true for plain objects only.
func IsObject(ctx context.Context, args ...object.Object) (object.Object, error) {
	_, ok := arg(args, 0).(*object.Map)
	return object.NewBool(ok), nil
}

// Keys returns the own property names of a value. Arrays and strings list
// their indexes followed by "length".
func Keys(ctx context.Context, args ...object.Object) (object.Object, error) {
	var names []string
	switch v := arg(args, 0).(type) {
	case *object.UndefinedType, *object.NullType:
		return nil, fmt.Errorf("Cannot convert undefined or null to object")
	case *object.Map:
		names = v.Keys()
	case *object.List:
		names = indexKeys(v.Len())
	case *object.String:
		names = indexKeys(v.Len())
	}
	items := make([]object.Object, len(names))
	for i, name := range names {
		items[i] = object.NewString(name)
	}
	return object.NewList(items), nil
}

func indexKeys(n int) []string {
	names := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		names = append(names, object.FormatNumber(float64(i)))
	}
	return append(names, "length")
}

// Merge copies the properties of each argument into a new object, skipping
// undefined and null arguments. Later arguments win.
func Merge(ctx context.Context, args ...object.Object) (object.Object, error) {
	result := object.NewMap()
	for _, a := range args {
		switch a := a.(type) {
		case *object.Map:
			result.Merge(a)
		case *object.List:
			for i, item := range a.Value() {
				result.Set(object.FormatNumber(float64(i)), item)
			}
		case *object.String:
			for i := 0; i < a.Len(); i++ {
				key := object.FormatNumber(float64(i))
				ch, _ := a.GetAttr(key)
				result.Set(key, ch)
			}
		}
	}
	return result, nil
}

// Concat joins its arguments into one array. Array arguments contribute
// their items, anything else is added as it is.
func Concat(ctx context.Context, args ...object.Object) (object.Object, error) {
	var items []object.Object
	for _, a := range args {
		if list, ok := a.(*object.List); ok {
			items = append(items, list.Value()...)
			continue
		}
		items = append(items, a)
	}
	if len(items) > object.MaxListLength {
		return nil, fmt.Errorf("Invalid array length")
	}
	return object.NewList(items), nil
}

func sortInput(v object.Object) (*object.List, error) {
	list, ok := v.(*object.List)
	if !ok {
		return nil, fmt.Errorf("Sort input is not an array")
	}
	return list, nil
}

// Sort returns a sorted copy of an array. Without a compare function,
// numbers are sorted numerically and other values as strings.
func Sort(ctx context.Context, args ...object.Object) (object.Object, error) {
	input := arg(args, 0)
	if object.IsNullish(input) {
		return input, nil
	}
	list, err := sortInput(input)
	if err != nil {
		return nil, err
	}
	items := list.Copy().Value()
	compare := arg(args, 1)
	if object.IsNullish(compare) {
		sortSensibly(items, func(o object.Object) object.Object { return o })
		return object.NewList(items), nil
	}
	fn, ok := compare.(object.Callable)
	if !ok {
		return nil, fmt.Errorf("The comparison function must be either a function or undefined")
	}
	if err := object.SortObjects(ctx, items, fn); err != nil {
		return nil, err
	}
	return object.NewList(items), nil
}

// SortBy returns a copy of an array of objects, sorted by the value of the
// named property.
func SortBy(ctx context.Context, args ...object.Object) (object.Object, error) {
	input := arg(args, 0)
	if object.IsNullish(input) {
		return input, nil
	}
	list, err := sortInput(input)
	if err != nil {
		return nil, err
	}
	name := object.PropertyKey(arg(args, 1))
	items := list.Copy().Value()
	for _, item := range items {
		if object.IsNullish(item) {
			return nil, fmt.Errorf("Cannot read property %s of %s", name, item.Inspect())
		}
	}
	sortSensibly(items, func(o object.Object) object.Object {
		if v, ok := o.GetAttr(name); ok && v != nil {
			return v
		}
		return object.Undefined
	})
	return object.NewList(items), nil
}

// sortSensibly sorts items by key, numerically if both keys are numbers
// and as strings otherwise. Undefined and null keys compare as 0 or as the
// empty string. Undefined items are moved to the end.
func sortSensibly(items []object.Object, key func(object.Object) object.Object) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		_, aUndef := a.(*object.UndefinedType)
		_, bUndef := b.(*object.UndefinedType)
		if aUndef || bUndef {
			return !aUndef && bUndef
		}
		return sensibleCompare(key(a), key(b)) < 0
	})
}

func sensibleCompare(a, b object.Object) float64 {
	an, aNum := a.(*object.Number)
	bn, bNum := b.(*object.Number)
	if object.IsNullish(a) {
		if object.IsNullish(b) {
			return 0
		}
		if bNum {
			return -bn.Value()
		}
		a = object.NewString("")
	}
	if object.IsNullish(b) {
		if aNum {
			return an.Value()
		}
		b = object.NewString("")
	}
	if aNum && bNum {
		return an.Value() - bn.Value()
	}
	return float64(localeCompare(object.ToString(a), object.ToString(b)))
}

// localeCompare orders strings case insensitively first, then by code
// point.
func localeCompare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(b, a)
}

// Reverse returns a reversed copy of an array, or the characters of a
// value converted to a string in reverse order.
func Reverse(ctx context.Context, args ...object.Object) (object.Object, error) {
	switch v := arg(args, 0).(type) {
	case *object.UndefinedType, *object.NullType:
		return v, nil
	case *object.List:
		items := v.Copy().Value()
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		return object.NewList(items), nil
	default:
		runes := []rune(object.ToString(v))
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return object.NewString(string(runes)), nil
	}
}

// Range returns an array of length consecutive integers from start.
func Range(ctx context.Context, args ...object.Object) (object.Object, error) {
	start, length := arg(args, 0), arg(args, 1)
	s, ok := start.(*object.Number)
	if !ok || math.IsNaN(s.Value()) || s.Value() != math.Floor(s.Value()) {
		return nil, fmt.Errorf("Invalid range start value: %s", object.ToString(start))
	}
	n, ok := length.(*object.Number)
	if !ok || !(n.Value() > 0) {
		return nil, fmt.Errorf("Invalid range length value: %s", object.ToString(length))
	}
	if n.Value() > object.MaxListLength {
		return nil, fmt.Errorf("Invalid array length")
	}
	count := int(math.Ceil(n.Value()))
	items := make([]object.Object, count)
	for i := range items {
		items[i] = number(s.Value() + float64(i))
	}
	return object.NewList(items), nil
}

func ToJSON(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, ok, err := object.ToJSON(arg(args, 0), "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return object.Undefined, nil
	}
	return object.NewString(s), nil
}

func ParseJSON(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.FromJSON(object.ToString(arg(args, 0)))
}

func regexpArgs(pattern, flags object.Object) (*object.Regexp, error) {
	f := ""
	if _, undef := flags.(*object.UndefinedType); !undef {
		f = object.ToString(flags)
	}
	return object.NewRegexp(object.ToString(pattern), f)
}

func Regexp(ctx context.Context, args ...object.Object) (object.Object, error) {
	re, err := regexpArgs(arg(args, 0), arg(args, 1))
	if err != nil {
		return nil, err
	}
	return re, nil
}

// Match matches a value converted to a string against a pattern, with the
// result of String.prototype.match.
func Match(ctx context.Context, args ...object.Object) (object.Object, error) {
	re, err := regexpArgs(arg(args, 1), arg(args, 2))
	if err != nil {
		return nil, err
	}
	s := object.NewString(object.ToString(arg(args, 0)))
	method, ok := s.GetAttr("match")
	if !ok {
		return nil, fmt.Errorf("match: string has no match method")
	}
	return method.(object.Callable).Call(ctx, re)
}

func EncodeURI(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(encodeURI(object.ToString(arg(args, 0)), uriReserved)), nil
}

func EncodeURIComponent(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewString(encodeURI(object.ToString(arg(args, 0)), "")), nil
}

// UUID returns a random version 4 UUID string.
func UUID(ctx context.Context, args ...object.Object) (object.Object, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return object.NewString(id.String()), nil
}

// JMESPath evaluates a JMESPath expression against a value.
func JMESPath(ctx context.Context, args ...object.Object) (object.Object, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("jmespath: expected 2 arguments, got %d", len(args))
	}
	expr, ok := args[1].(*object.String)
	if !ok {
		return nil, fmt.Errorf("jmespath: expression must be a string (got %s)", object.Describe(args[1]))
	}
	result, err := jmespath.Search(expr.Value(), args[0].Interface())
	if err != nil {
		return nil, fmt.Errorf("jmespath: %v", err)
	}
	return object.FromGo(result), nil
}

func Builtins() map[string]object.Object {
	return map[string]object.Object{
		"abs":                object.NewBuiltin("abs", mathFunc(math.Abs)),
		"floor":              object.NewBuiltin("floor", mathFunc(math.Floor)),
		"ceil":               object.NewBuiltin("ceil", mathFunc(math.Ceil)),
		"round":              object.NewBuiltin("round", Round),
		"min":                object.NewBuiltin("min", Min),
		"max":                object.NewBuiltin("max", Max),
		"pow":                object.NewBuiltin("pow", Pow),
		"sqrt":               object.NewBuiltin("sqrt", mathFunc(math.Sqrt)),
		"random":             object.NewBuiltin("random", Random),
		"typeof":             object.NewBuiltin("typeof", TypeOf),
		"str":                object.NewBuiltin("str", Str),
		"chr":                object.NewBuiltin("chr", Chr),
		"parseFloat":         object.NewBuiltin("parseFloat", ParseFloat),
		"parseInt":           object.NewBuiltin("parseInt", ParseInt),
		"isDefined":          object.NewBuiltin("isDefined", IsDefined),
		"isArray":            object.NewBuiltin("isArray", IsArray),
		"isObject":           object.NewBuiltin("isObject", IsObject),
		"keys":               object.NewBuiltin("keys", Keys),
		"merge":              object.NewBuiltin("merge", Merge),
		"concat":             object.NewBuiltin("concat", Concat),
		"sort":               object.NewBuiltin("sort", Sort),
		"sortBy":             object.NewBuiltin("sortBy", SortBy),
		"reverse":            object.NewBuiltin("reverse", Reverse),
		"range":              object.NewBuiltin("range", Range),
		"toJSON":             object.NewBuiltin("toJSON", ToJSON),
		"parseJSON":          object.NewBuiltin("parseJSON", ParseJSON),
		"regexp":             object.NewBuiltin("regexp", Regexp),
		"match":              object.NewBuiltin("match", Match),
		"date":               object.NewBuiltin("date", Date),
		"dateUTC":            object.NewBuiltin("dateUTC", DateUTC),
		"now":                object.NewBuiltin("now", Now),
		"encodeURI":          object.NewBuiltin("encodeURI", EncodeURI),
		"encodeURIComponent": object.NewBuiltin("encodeURIComponent", EncodeURIComponent),
		"uuid":               object.NewBuiltin("uuid", UUID),
		"jmespath":           object.NewBuiltin("jmespath", JMESPath),
	}
}
