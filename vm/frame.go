package vm

import (
	"github.com/jcormont/expression-runner/object"
)

// frame is one layer of the variable environment. The root frame holds the
// caller's scope; each arrow function call adds a frame holding its
// parameters, whose parent is the frame the function was created in.
type frame struct {
	vars   *object.Map
	parent *frame
	fn     *object.Closure
	depth  int
}

func newRootFrame(scope *object.Map) *frame {
	return &frame{vars: scope}
}

// newCallFrame returns the frame for a call of fn, binding args to the
// parameters by position. Missing arguments are undefined.
func newCallFrame(fn *object.Closure, parent *frame, args []object.Object, depth int) *frame {
	vars := object.NewMap()
	for i, name := range fn.Params() {
		if i < len(args) {
			vars.Set(name, args[i])
		} else {
			vars.Set(name, object.Undefined)
		}
	}
	return &frame{vars: vars, parent: parent, fn: fn, depth: depth}
}

// lookup finds a variable in this frame or its parents.
func (f *frame) lookup(name string) (object.Object, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if value, ok := cur.vars.Get(name); ok {
			return value, true
		}
	}
	return nil, false
}

// owner returns the frame that defines name, if any.
func (f *frame) owner(name string) *frame {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.vars.Has(name) {
			return cur
		}
	}
	return nil
}

func (f *frame) root() *frame {
	cur := f
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// names returns all variable names visible from this frame.
func (f *frame) names() []string {
	var names []string
	for cur := f; cur != nil; cur = cur.parent {
		names = append(names, cur.vars.Keys()...)
	}
	return names
}
