package object

import "strconv"

// Bool wraps bool and implements Object.
type Bool struct {
	value bool
}

// NewBool returns True or False.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

func (b *Bool) Type() Type      { return BOOL }
func (b *Bool) Value() bool     { return b.value }
func (b *Bool) Inspect() string { return strconv.FormatBool(b.value) }
func (b *Bool) String() string  { return b.Inspect() }
func (b *Bool) Interface() any  { return b.value }
func (b *Bool) IsTruthy() bool  { return b.value }

func (b *Bool) GetAttr(name string) (Object, bool) {
	return nil, false
}

func (b *Bool) SetAttr(name string, value Object) error {
	return readOnlyError(b, name)
}

func (b *Bool) Equals(other Object) bool {
	o, ok := other.(*Bool)
	return ok && o.value == b.value
}
