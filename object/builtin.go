package object

import (
	"context"
	"fmt"
)

var _ Callable = (*Builtin)(nil) // Ensure that *Builtin implements Callable

// BuiltinFunction holds the type of a host function callable from
// expressions.
type BuiltinFunction func(ctx context.Context, args ...Object) (Object, error)

// Builtin wraps a host function and implements Callable. Only functions
// wrapped this way can be called from expressions.
type Builtin struct {
	// The function that this object wraps.
	fn BuiltinFunction

	// The name of the function.
	name string

	// Set for the methods of the built in types, such as "string.trim".
	native bool
}

// NewBuiltin wraps fn so that it can be called from expressions.
func NewBuiltin(name string, fn BuiltinFunction) *Builtin {
	return &Builtin{fn: fn, name: name}
}

func (b *Builtin) Type() Type                    { return BUILTIN }
func (b *Builtin) Value() BuiltinFunction        { return b.fn }
func (b *Builtin) Name() string                  { return b.name }
func (b *Builtin) IsTruthy() bool                { return true }
func (b *Builtin) Interface() any                { return nil }
func (b *Builtin) String() string                { return b.Inspect() }
func (b *Builtin) GetAttr(string) (Object, bool) { return nil, false }

// IsNative returns true for the methods of the built in types.
func (b *Builtin) IsNative() bool {
	return b.native
}

func (b *Builtin) Inspect() string {
	return fmt.Sprintf("function %s() { [native code] }", b.name)
}

func (b *Builtin) SetAttr(name string, value Object) error {
	return readOnlyError(b, name)
}

func (b *Builtin) Equals(other Object) bool {
	return b == other
}

func (b *Builtin) Call(ctx context.Context, args ...Object) (Object, error) {
	return b.fn(ctx, args...)
}
