package object

import (
	"fmt"
	"reflect"
)

// Opaque holds a host value that has no representation in the language.
// It can be passed around and handed back to host functions, but it has no
// readable properties and cannot be called.
type Opaque struct {
	value any
}

// NewOpaque wraps v.
func NewOpaque(v any) *Opaque {
	return &Opaque{value: v}
}

func (o *Opaque) Type() Type                    { return OPAQUE }
func (o *Opaque) Value() any                    { return o.value }
func (o *Opaque) Interface() any                { return o.value }
func (o *Opaque) IsTruthy() bool                { return true }
func (o *Opaque) String() string                { return o.Inspect() }
func (o *Opaque) GetAttr(string) (Object, bool) { return nil, false }

func (o *Opaque) Inspect() string {
	return fmt.Sprintf("[object %T]", o.value)
}

func (o *Opaque) SetAttr(name string, value Object) error {
	return readOnlyError(o, name)
}

func (o *Opaque) Equals(other Object) bool {
	if o == other {
		return true
	}
	other2, ok := other.(*Opaque)
	if !ok || o.value == nil || other2.value == nil {
		return false
	}
	if !reflect.TypeOf(o.value).Comparable() {
		return false
	}
	return o.value == other2.value
}
