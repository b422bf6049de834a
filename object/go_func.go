package object

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
)

// NewGoFunc wraps an arbitrary Go function as a Builtin, using reflection
// to convert arguments and results.
//
// A first context.Context parameter receives the evaluation context, and a
// last error result is returned as the error of the call. Missing arguments
// are passed as zero values and extra arguments are dropped, unless the
// function is variadic. Several results are returned as an array.
func NewGoFunc(name string, fn any) (*Builtin, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%s: expected a function, got %T", name, fn)
	}
	g := &goFunc{
		fn:         rv,
		fnType:     rv.Type(),
		name:       name,
		isVariadic: rv.Type().IsVariadic(),
	}
	fnType := g.fnType
	if fnType.NumIn() > 0 && fnType.In(0) == contextInterface {
		g.hasContext = true
		g.numIn = fnType.NumIn() - 1
	} else {
		g.numIn = fnType.NumIn()
	}
	if fnType.NumOut() > 0 && fnType.Out(fnType.NumOut()-1).Implements(errorInterface) {
		g.hasError = true
	}
	return NewBuiltin(name, g.call), nil
}

// MustGoFunc is like NewGoFunc but panics if fn is not a function.
func MustGoFunc(name string, fn any) *Builtin {
	b, err := NewGoFunc(name, fn)
	if err != nil {
		panic(err)
	}
	return b
}

type goFunc struct {
	fn         reflect.Value
	fnType     reflect.Type
	name       string
	numIn      int // Input count, excluding the context
	isVariadic bool
	hasContext bool
	hasError   bool
}

func (g *goFunc) call(ctx context.Context, args ...Object) (result Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", g.name, r)
			result = nil
		}
	}()
	callArgs, err := g.buildCallArgs(ctx, args)
	if err != nil {
		return nil, err
	}
	var results []reflect.Value
	if g.isVariadic {
		results = g.fn.CallSlice(callArgs)
	} else {
		results = g.fn.Call(callArgs)
	}
	return g.processResults(results)
}

func (g *goFunc) buildCallArgs(ctx context.Context, args []Object) ([]reflect.Value, error) {
	var callArgs []reflect.Value
	offset := 0
	if g.hasContext {
		callArgs = append(callArgs, reflect.ValueOf(ctx))
		offset = 1
	}
	fixed := g.numIn
	if g.isVariadic {
		fixed--
	}
	for i := 0; i < fixed; i++ {
		target := g.fnType.In(offset + i)
		if i >= len(args) {
			callArgs = append(callArgs, reflect.Zero(target))
			continue
		}
		v, err := ToGo(args[i], target)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", g.name, i+1, err)
		}
		callArgs = append(callArgs, v)
	}
	if g.isVariadic {
		sliceType := g.fnType.In(g.fnType.NumIn() - 1)
		rest := reflect.MakeSlice(sliceType, 0, max(len(args)-fixed, 0))
		for i := fixed; i < len(args); i++ {
			v, err := ToGo(args[i], sliceType.Elem())
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", g.name, i+1, err)
			}
			rest = reflect.Append(rest, v)
		}
		callArgs = append(callArgs, rest)
	}
	return callArgs, nil
}

func (g *goFunc) processResults(results []reflect.Value) (Object, error) {
	if g.hasError {
		last := results[len(results)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		results = results[:len(results)-1]
	}
	switch len(results) {
	case 0:
		return Undefined, nil
	case 1:
		return FromGo(results[0].Interface()), nil
	}
	items := make([]Object, len(results))
	for i, rv := range results {
		items[i] = FromGo(rv.Interface())
	}
	return NewList(items), nil
}
