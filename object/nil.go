package object

import "fmt"

// UndefinedType is the type of the undefined value. Missing properties,
// holes in arrays and functions without a result evaluate to undefined.
type UndefinedType struct{}

func (u *UndefinedType) Type() Type                    { return UNDEFINED }
func (u *UndefinedType) Inspect() string               { return "undefined" }
func (u *UndefinedType) String() string                { return "undefined" }
func (u *UndefinedType) Interface() any                { return nil }
func (u *UndefinedType) IsTruthy() bool                { return false }
func (u *UndefinedType) GetAttr(string) (Object, bool) { return nil, false }

func (u *UndefinedType) Equals(other Object) bool {
	_, ok := other.(*UndefinedType)
	return ok
}

func (u *UndefinedType) SetAttr(name string, value Object) error {
	return fmt.Errorf("cannot set property %q of undefined", name)
}

// NullType is the type of null.
type NullType struct{}

func (n *NullType) Type() Type                    { return NULL }
func (n *NullType) Inspect() string               { return "null" }
func (n *NullType) String() string                { return "null" }
func (n *NullType) Interface() any                { return nil }
func (n *NullType) IsTruthy() bool                { return false }
func (n *NullType) GetAttr(string) (Object, bool) { return nil, false }

func (n *NullType) Equals(other Object) bool {
	_, ok := other.(*NullType)
	return ok
}

func (n *NullType) SetAttr(name string, value Object) error {
	return fmt.Errorf("cannot set property %q of null", name)
}
