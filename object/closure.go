package object

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/errz"
)

var _ Callable = (*Closure)(nil)

// Closure is an arrow function value. It holds the parameter names, the
// IR of the body and the scope the function was created in. The scope is
// owned by the evaluator and is opaque to this package.
type Closure struct {
	params []string
	body   []any
	scope  any
}

// NewClosure returns an arrow function value.
func NewClosure(params []string, body []any, scope any) *Closure {
	return &Closure{params: params, body: body, scope: scope}
}

func (c *Closure) Type() Type               { return CLOSURE }
func (c *Closure) Params() []string         { return c.params }
func (c *Closure) Body() []any              { return c.body }
func (c *Closure) Scope() any               { return c.scope }
func (c *Closure) IsTruthy() bool           { return true }
func (c *Closure) Interface() any           { return nil }
func (c *Closure) String() string           { return c.Inspect() }
func (c *Closure) Equals(other Object) bool { return c == other }

func (c *Closure) Inspect() string {
	return fmt.Sprintf("(%s) => { ... }", strings.Join(c.params, ", "))
}

func (c *Closure) GetAttr(name string) (Object, bool) {
	return nil, false
}

func (c *Closure) SetAttr(name string, value Object) error {
	return readOnlyError(c, name)
}

// Call runs the function with the CallFunc installed in ctx by the
// evaluator.
func (c *Closure) Call(ctx context.Context, args ...Object) (Object, error) {
	call, ok := GetCallFunc(ctx)
	if !ok {
		return nil, errz.New(errz.ErrRuntime, errors.E3009, "arrow function called outside of an evaluation")
	}
	return call(ctx, c, args)
}
