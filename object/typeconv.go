package object

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"time"
)

var (
	timeType       = reflect.TypeOf(time.Time{})
	regexpPtrType  = reflect.TypeOf((*regexp.Regexp)(nil))
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// maxConversionDepth bounds the nesting of converted Go values, so that
// self referencing maps and slices cannot recurse forever.
const maxConversionDepth = 1000

// FromGo converts a Go value to an Object.
//
//   - nil and nil pointers become null
//   - Objects are returned as they are
//   - booleans, strings and all numeric kinds become the matching value
//   - slices and arrays become arrays, []byte becomes a string
//   - maps become plain objects with their keys sorted
//   - time.Time becomes a date and *regexp.Regexp a regular expression
//   - functions become undefined: host functions are only visible to
//     expressions once wrapped with NewBuiltin or NewGoFunc
//   - anything else is wrapped in an Opaque value
func FromGo(v any) Object {
	return fromGo(v, 0)
}

func fromGo(v any, depth int) Object {
	if depth > maxConversionDepth {
		return Undefined
	}
	switch v := v.(type) {
	case nil:
		return Null
	case Object:
		return v
	case bool:
		return NewBool(v)
	case string:
		return NewString(v)
	case float64:
		return NewNumber(v)
	case int:
		return NewNumber(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return NewNumber(StringToNumber(v.String()))
		}
		return NewNumber(f)
	case []byte:
		return NewString(string(v))
	case time.Time:
		return NewTime(v)
	case *time.Time:
		if v == nil {
			return Null
		}
		return NewTime(*v)
	case *regexp.Regexp:
		if v == nil {
			return Null
		}
		return RegexpFromGo(v)
	case []any:
		items := make([]Object, len(v))
		for i, item := range v {
			items[i] = fromGo(item, depth+1)
		}
		return NewList(items)
	case map[string]any:
		m := &Map{keys: make([]string, 0, len(v)), values: make(map[string]Object, len(v))}
		for k := range v {
			m.keys = append(m.keys, k)
		}
		slices.Sort(m.keys)
		for _, k := range m.keys {
			m.values[k] = fromGo(v[k], depth+1)
		}
		return m
	}
	return fromGoValue(reflect.ValueOf(v), depth)
}

func fromGoValue(rv reflect.Value, depth int) Object {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewNumber(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return NewNumber(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return NewNumber(rv.Float())
	case reflect.Bool:
		return NewBool(rv.Bool())
	case reflect.String:
		return NewString(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return Null
		}
		fallthrough
	case reflect.Array:
		items := make([]Object, rv.Len())
		for i := range items {
			items[i] = fromGo(rv.Index(i).Interface(), depth+1)
		}
		return NewList(items)
	case reflect.Map:
		if rv.IsNil() {
			return Null
		}
		values := make(map[string]Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values[fmt.Sprint(iter.Key().Interface())] = fromGo(iter.Value().Interface(), depth+1)
		}
		return NewMapFrom(values)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null
		}
		if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
			return NewOpaque(rv.Interface())
		}
		return fromGo(rv.Elem().Interface(), depth+1)
	case reflect.Func:
		return Undefined
	}
	return NewOpaque(rv.Interface())
}

// FromGoMap converts the entries of m, with keys sorted.
func FromGoMap(m map[string]any) *Map {
	return FromGo(m).(*Map)
}

// toGo converts obj to its Go value. A map or list that is already being
// converted further up converts to nil, so circular values terminate.
func toGo(obj Object, active map[Object]bool) any {
	switch obj := obj.(type) {
	case *Map:
		return obj.toGo(active)
	case *List:
		return obj.toGo(active)
	}
	return obj.Interface()
}

// ToGo converts obj to a Go value of the target type. Undefined and null
// convert to the zero value.
func ToGo(obj Object, target reflect.Type) (reflect.Value, error) {
	if obj == nil || IsNullish(obj) {
		return reflect.Zero(target), nil
	}
	if target.Kind() == reflect.Interface && target.NumMethod() == 0 {
		v := obj.Interface()
		if v == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(v), nil
	}
	if reflect.TypeOf(obj).AssignableTo(target) {
		return reflect.ValueOf(obj), nil
	}
	if op, ok := obj.(*Opaque); ok && op.value != nil && reflect.TypeOf(op.value).AssignableTo(target) {
		return reflect.ValueOf(op.value), nil
	}
	switch target {
	case timeType:
		if t, ok := obj.(*Time); ok {
			return reflect.ValueOf(t.value), nil
		}
		return reflect.Value{}, conversionError(obj, target)
	case regexpPtrType:
		if re, ok := obj.(*Regexp); ok {
			return reflect.ValueOf(re.value), nil
		}
		return reflect.Value{}, conversionError(obj, target)
	case jsonNumberType:
		return reflect.ValueOf(json.Number(FormatNumber(ToNumber(obj)))), nil
	}
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := obj.(*Number)
		if !ok {
			return reflect.Value{}, conversionError(obj, target)
		}
		v := reflect.New(target).Elem()
		v.SetInt(int64(n.value))
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := obj.(*Number)
		if !ok || n.value < 0 {
			return reflect.Value{}, conversionError(obj, target)
		}
		v := reflect.New(target).Elem()
		v.SetUint(uint64(n.value))
		return v, nil
	case reflect.Float32, reflect.Float64:
		n, ok := obj.(*Number)
		if !ok {
			return reflect.Value{}, conversionError(obj, target)
		}
		v := reflect.New(target).Elem()
		v.SetFloat(n.value)
		return v, nil
	case reflect.Bool:
		v := reflect.New(target).Elem()
		v.SetBool(obj.IsTruthy())
		return v, nil
	case reflect.String:
		v := reflect.New(target).Elem()
		v.SetString(ToString(obj))
		return v, nil
	case reflect.Slice:
		if target.Elem().Kind() == reflect.Uint8 {
			if s, ok := obj.(*String); ok {
				return reflect.ValueOf([]byte(s.value)).Convert(target), nil
			}
		}
		list, ok := obj.(*List)
		if !ok {
			return reflect.Value{}, conversionError(obj, target)
		}
		slice := reflect.MakeSlice(target, len(list.items), len(list.items))
		for i, item := range list.items {
			elem, err := ToGo(item, target.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			slice.Index(i).Set(elem)
		}
		return slice, nil
	case reflect.Map:
		m, ok := obj.(*Map)
		if !ok || target.Key().Kind() != reflect.String {
			return reflect.Value{}, conversionError(obj, target)
		}
		result := reflect.MakeMapWithSize(target, m.Len())
		for _, k := range m.keys {
			value, err := ToGo(m.values[k], target.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			result.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), value)
		}
		return result, nil
	case reflect.Pointer:
		elem, err := ToGo(obj, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}
	return reflect.Value{}, conversionError(obj, target)
}

func conversionError(obj Object, target reflect.Type) error {
	return fmt.Errorf("cannot convert %s to %s", Describe(obj), target)
}
