package object

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
)

// MaxListLength limits the length that can be set on an array, so that a
// single assignment cannot allocate unbounded memory.
const MaxListLength = 1 << 24

// List is a mutable, ordered sequence of values: the array type.
type List struct {
	items []Object
}

// NewList returns a List that takes ownership of items.
func NewList(items []Object) *List {
	if items == nil {
		items = []Object{}
	}
	return &List{items: items}
}

func (ls *List) Type() Type               { return LIST }
func (ls *List) Value() []Object          { return ls.items }
func (ls *List) Len() int                 { return len(ls.items) }
func (ls *List) IsTruthy() bool           { return true }
func (ls *List) String() string           { return ls.Inspect() }
func (ls *List) Equals(other Object) bool { return ls == other }

// Inspect joins the items with commas, the way arrays convert to strings.
func (ls *List) Inspect() string {
	return ls.join(",", map[*List]bool{})
}

func (ls *List) join(sep string, seen map[*List]bool) string {
	if seen[ls] {
		return ""
	}
	seen[ls] = true
	defer delete(seen, ls)
	parts := make([]string, len(ls.items))
	for i, item := range ls.items {
		switch item := item.(type) {
		case *UndefinedType, *NullType:
		case *List:
			parts[i] = item.join(",", seen)
		default:
			parts[i] = ToString(item)
		}
	}
	return strings.Join(parts, sep)
}

func (ls *List) Interface() any {
	return ls.toGo(map[Object]bool{})
}

func (ls *List) toGo(active map[Object]bool) any {
	if active[ls] {
		return nil
	}
	active[ls] = true
	defer delete(active, ls)
	out := make([]any, len(ls.items))
	for i, item := range ls.items {
		out[i] = toGo(item, active)
	}
	return out
}

// Get returns the item at index i, or undefined.
func (ls *List) Get(i int) Object {
	if i < 0 || i >= len(ls.items) {
		return Undefined
	}
	return ls.items[i]
}

// Append adds items to the end of the list.
func (ls *List) Append(items ...Object) {
	ls.items = append(ls.items, items...)
}

// GetAttr returns items by index, and the allow-listed array properties and
// methods.
func (ls *List) GetAttr(name string) (Object, bool) {
	if i, ok := IsArrayIndex(name); ok {
		return ls.Get(i), true
	}
	return listAttrs.GetAttr(ls, name)
}

// SetAttr sets an item by index, or the length. Setting an index past the
// end fills the gap with undefined.
func (ls *List) SetAttr(name string, value Object) error {
	if i, ok := IsArrayIndex(name); ok {
		if i >= MaxListLength {
			return errz.Newf(errz.ErrRuntime, errors.E3003, "Invalid array index %s", name)
		}
		for len(ls.items) <= i {
			ls.items = append(ls.items, Undefined)
		}
		ls.items[i] = value
		return nil
	}
	if name == "length" {
		n := ToNumber(value)
		if n < 0 || n != math.Trunc(n) || n > MaxListLength {
			return errz.New(errz.ErrRuntime, errors.E3003, "Invalid array length")
		}
		length := int(n)
		if length <= len(ls.items) {
			ls.items = ls.items[:length]
			return nil
		}
		for len(ls.items) < length {
			ls.items = append(ls.items, Undefined)
		}
		return nil
	}
	return readOnlyError(ls, name)
}

// Copy returns a shallow copy of the list.
func (ls *List) Copy() *List {
	items := make([]Object, len(ls.items))
	copy(items, ls.items)
	return NewList(items)
}

func callbackArg(obj Object) (Callable, error) {
	fn, ok := obj.(Callable)
	if !ok {
		return nil, notCallableError(obj)
	}
	return fn, nil
}

// each calls fn for every item with (value, index, list) until visit
// returns false.
func (ls *List) each(ctx context.Context, fn Callable, visit func(i int, item, result Object) bool) error {
	for i := 0; i < len(ls.items); i++ {
		item := ls.items[i]
		result, err := fn.Call(ctx, item, NewNumber(float64(i)), ls)
		if err != nil {
			return err
		}
		if !visit(i, item, result) {
			return nil
		}
	}
	return nil
}

// SameValueZero compares like ===, except that NaN equals NaN.
func SameValueZero(a, b Object) bool {
	if x, ok := a.(*Number); ok {
		if y, ok := b.(*Number); ok && isNaN(x.value) && isNaN(y.value) {
			return true
		}
	}
	return a.Equals(b)
}

// flatten appends items to out, expanding nested arrays up to depth levels.
// An array that contains itself is not expanded again.
func flatten(items []Object, depth float64, active map[*List]bool, out []Object) []Object {
	for _, item := range items {
		if inner, ok := item.(*List); ok && depth >= 1 && !active[inner] {
			active[inner] = true
			out = flatten(inner.items, depth-1, active, out)
			delete(active, inner)
			continue
		}
		out = append(out, item)
	}
	return out
}

var listAttrs = NewAttrRegistry[*List]("array")

func init() {
	listAttrs.Define("length").
		Doc("Number of items").
		Returns("number").
		Getter(func(ls *List) Object {
			return NewNumber(float64(len(ls.items)))
		})

	listAttrs.Define("concat").
		Doc("New array with the items of this array and the arguments").
		Rest("items").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			out := ls.Copy()
			for _, arg := range args {
				if other, ok := arg.(*List); ok {
					out.Append(other.items...)
				} else {
					out.Append(arg)
				}
			}
			return out, nil
		})

	listAttrs.Define("entries").
		Doc("Array of [index, value] pairs").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			out := make([]Object, len(ls.items))
			for i, item := range ls.items {
				out[i] = NewList([]Object{NewNumber(float64(i)), item})
			}
			return NewList(out), nil
		})

	listAttrs.Define("every").
		Doc("Check whether the callback is truthy for all items").
		Arg("callback").
		Returns("boolean").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			result := true
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				result = r.IsTruthy()
				return result
			})
			if err != nil {
				return nil, err
			}
			return NewBool(result), nil
		})

	listAttrs.Define("fill").
		Doc("Set items from start to end to a value").
		Arg("value").
		OptionalArg("start").
		OptionalArg("end").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			start := relativeIndex(args[1], len(ls.items), 0)
			end := relativeIndex(args[2], len(ls.items), len(ls.items))
			for i := start; i < end; i++ {
				ls.items[i] = args[0]
			}
			return ls, nil
		})

	listAttrs.Define("filter").
		Doc("New array with the items for which the callback is truthy").
		Arg("callback").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			out := []Object{}
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				if r.IsTruthy() {
					out = append(out, item)
				}
				return true
			})
			if err != nil {
				return nil, err
			}
			return NewList(out), nil
		})

	listAttrs.Define("find").
		Doc("First item for which the callback is truthy").
		Arg("callback").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			var found Object = Undefined
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				if r.IsTruthy() {
					found = item
					return false
				}
				return true
			})
			if err != nil {
				return nil, err
			}
			return found, nil
		})

	listAttrs.Define("findIndex").
		Doc("Index of the first item for which the callback is truthy, or -1").
		Arg("callback").
		Returns("number").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			found := -1
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				if r.IsTruthy() {
					found = i
					return false
				}
				return true
			})
			if err != nil {
				return nil, err
			}
			return NewNumber(float64(found)), nil
		})

	listAttrs.Define("flat").
		Doc("New array with nested arrays flattened to a depth").
		OptionalArg("depth").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			depth := 1.0
			if _, ok := args[0].(*UndefinedType); !ok {
				depth = ToIntegerOrInfinity(args[0])
			}
			return NewList(flatten(ls.items, depth, map[*List]bool{ls: true}, []Object{})), nil
		})

	listAttrs.Define("forEach").
		Doc("Call the callback for each item").
		Arg("callback").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			err = ls.each(ctx, fn, func(int, Object, Object) bool { return true })
			if err != nil {
				return nil, err
			}
			return Undefined, nil
		})

	listAttrs.Define("includes").
		Doc("Check whether the array contains a value").
		Arg("value").
		OptionalArg("fromIndex").
		Returns("boolean").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			for i := relativeIndex(args[1], len(ls.items), 0); i < len(ls.items); i++ {
				if SameValueZero(ls.items[i], args[0]) {
					return True, nil
				}
			}
			return False, nil
		})

	listAttrs.Define("indexOf").
		Doc("First index of a value, or -1").
		Arg("value").
		OptionalArg("fromIndex").
		Returns("number").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			for i := relativeIndex(args[1], len(ls.items), 0); i < len(ls.items); i++ {
				if ls.items[i].Equals(args[0]) {
					return NewNumber(float64(i)), nil
				}
			}
			return NewNumber(-1), nil
		})

	listAttrs.Define("join").
		Doc("Join the items into a string").
		OptionalArg("separator").
		Returns("string").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			sep := ","
			if _, ok := args[0].(*UndefinedType); !ok {
				sep = ToString(args[0])
			}
			return NewString(ls.join(sep, map[*List]bool{})), nil
		})

	listAttrs.Define("lastIndexOf").
		Doc("Last index of a value, or -1").
		Arg("value").
		OptionalArg("fromIndex").
		Returns("number").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			from := len(ls.items) - 1
			if _, ok := args[1].(*UndefinedType); !ok {
				f := ToIntegerOrInfinity(args[1])
				if f < 0 {
					f += float64(len(ls.items))
				}
				from = int(math.Min(f, float64(len(ls.items)-1)))
			}
			for i := from; i >= 0; i-- {
				if ls.items[i].Equals(args[0]) {
					return NewNumber(float64(i)), nil
				}
			}
			return NewNumber(-1), nil
		})

	listAttrs.Define("map").
		Doc("New array with the callback results").
		Arg("callback").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			out := make([]Object, 0, len(ls.items))
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				out = append(out, r)
				return true
			})
			if err != nil {
				return nil, err
			}
			return NewList(out), nil
		})

	listAttrs.Define("pop").
		Doc("Remove and return the last item").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			if len(ls.items) == 0 {
				return Undefined, nil
			}
			last := ls.items[len(ls.items)-1]
			ls.items = ls.items[:len(ls.items)-1]
			return last, nil
		})

	listAttrs.Define("push").
		Doc("Append items and return the new length").
		Rest("items").
		Returns("number").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			ls.Append(args...)
			return NewNumber(float64(len(ls.items))), nil
		})

	reduce := func(reverse bool) func(*List, context.Context, ...Object) (Object, error) {
		return func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			n := len(ls.items)
			index := func(k int) int {
				if reverse {
					return n - 1 - k
				}
				return k
			}
			k := 0
			var acc Object
			if len(args) > 1 {
				acc = args[1]
			} else {
				if n == 0 {
					return nil, errz.New(errz.ErrType, errors.E3006, "Reduce of empty array with no initial value")
				}
				acc = ls.items[index(0)]
				k = 1
			}
			for ; k < n && k < len(ls.items); k++ {
				i := index(k)
				if acc, err = fn.Call(ctx, acc, ls.items[i], NewNumber(float64(i)), ls); err != nil {
					return nil, err
				}
			}
			return acc, nil
		}
	}

	listAttrs.Define("reduce").
		Doc("Combine the items from left to right").
		Arg("callback").
		Rest("initialValue").
		Impl(reduce(false))

	listAttrs.Define("reduceRight").
		Doc("Combine the items from right to left").
		Arg("callback").
		Rest("initialValue").
		Impl(reduce(true))

	listAttrs.Define("reverse").
		Doc("Reverse the items in place").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			for i, j := 0, len(ls.items)-1; i < j; i, j = i+1, j-1 {
				ls.items[i], ls.items[j] = ls.items[j], ls.items[i]
			}
			return ls, nil
		})

	listAttrs.Define("shift").
		Doc("Remove and return the first item").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			if len(ls.items) == 0 {
				return Undefined, nil
			}
			first := ls.items[0]
			ls.items = append([]Object{}, ls.items[1:]...)
			return first, nil
		})

	listAttrs.Define("slice").
		Doc("New array with a section of this array").
		OptionalArg("start").
		OptionalArg("end").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			start := relativeIndex(args[0], len(ls.items), 0)
			end := relativeIndex(args[1], len(ls.items), len(ls.items))
			if start >= end {
				return NewList(nil), nil
			}
			return NewList(append([]Object{}, ls.items[start:end]...)), nil
		})

	listAttrs.Define("some").
		Doc("Check whether the callback is truthy for any item").
		Arg("callback").
		Returns("boolean").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			fn, err := callbackArg(args[0])
			if err != nil {
				return nil, err
			}
			result := false
			err = ls.each(ctx, fn, func(i int, item, r Object) bool {
				result = r.IsTruthy()
				return !result
			})
			if err != nil {
				return nil, err
			}
			return NewBool(result), nil
		})

	listAttrs.Define("sort").
		Doc("Sort the items in place").
		OptionalArg("compare").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			var compare Callable
			if _, ok := args[0].(*UndefinedType); !ok {
				fn, err := callbackArg(args[0])
				if err != nil {
					return nil, err
				}
				compare = fn
			}
			if err := SortObjects(ctx, ls.items, compare); err != nil {
				return nil, err
			}
			return ls, nil
		})

	listAttrs.Define("splice").
		Doc("Remove items and insert new ones in place, returning the removed items").
		Rest("args").
		Returns("array").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			n := len(ls.items)
			if len(args) == 0 {
				return NewList(nil), nil
			}
			start := relativeIndex(args[0], n, 0)
			deleteCount := n - start
			if len(args) > 1 {
				deleteCount = int(math.Min(math.Max(ToIntegerOrInfinity(args[1]), 0), float64(n-start)))
			}
			var inserts []Object
			if len(args) > 2 {
				inserts = args[2:]
			}
			removed := append([]Object{}, ls.items[start:start+deleteCount]...)
			rest := append([]Object{}, ls.items[start+deleteCount:]...)
			ls.items = append(append(ls.items[:start], inserts...), rest...)
			return NewList(removed), nil
		})

	listAttrs.Define("unshift").
		Doc("Insert items at the start and return the new length").
		Rest("items").
		Returns("number").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			ls.items = append(append([]Object{}, args...), ls.items...)
			return NewNumber(float64(len(ls.items))), nil
		})
}

// SortObjects sorts items in place with a stable sort. Without a compare
// function, items are ordered by their string conversion and undefined
// sorts last.
func SortObjects(ctx context.Context, items []Object, compare Callable) error {
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := items[i], items[j]
		_, aUndef := a.(*UndefinedType)
		_, bUndef := b.(*UndefinedType)
		if aUndef || bUndef {
			return !aUndef && bUndef
		}
		if compare == nil {
			return ToString(a) < ToString(b)
		}
		result, err := compare.Call(ctx, a, b)
		if err != nil {
			sortErr = err
			return false
		}
		return ToNumber(result) < 0
	})
	return sortErr
}
