// Package compiler is used to compile an expression syntax tree into the
// nested list IR evaluated by the vm.
//
// Compilation is a single deterministic walk over the tree. It has no side
// effects and keeps no state between calls, so one Compiler may be used
// from several goroutines. The shape of each emitted node is described in
// the documentation of the ir package.
//
// Binary operators are emitted as nested Calc nodes with exactly one
// operator each; the parser has already grouped them by precedence.
// Property reads are emitted as flat resolve lists with the opcode left
// out, so that the evaluator can check an entire path at once.
package compiler

import (
	"fmt"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/internal/token"
	"github.com/jcormont/expression-runner/ir"
	"github.com/jcormont/expression-runner/object"
	"github.com/jcormont/expression-runner/op"
)

// Compiler is used to compile a syntax tree into IR.
type Compiler struct {
	// Source filename, used in error messages
	filename string
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithFilename sets the file name reported in errors.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// New creates and returns a new Compiler.
func New(options ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Compile compiles the given syntax tree. This is shorthand for creating a
// Compiler and calling Compile on it.
func Compile(node ast.Node, options ...Option) (ir.Node, error) {
	return New(options...).Compile(node)
}

// Compile compiles a program, statement or expression. The result is always
// an expression list holding one entry per statement.
func (c *Compiler) Compile(node ast.Node) (ir.Node, error) {
	var stmts []ast.Node
	switch node := node.(type) {
	case nil:
		return nil, fmt.Errorf("compile error: nil node")
	case *ast.Program:
		for _, stmt := range node.Stmts {
			stmts = append(stmts, stmt)
		}
	default:
		stmts = []ast.Node{node}
	}
	root := ir.New(op.Expression)
	for _, stmt := range stmts {
		v, err := c.compile(stmt)
		if err != nil {
			return nil, err
		}
		root = append(root, v)
	}
	return root, nil
}

// compile returns the IR value of a statement or expression: a node or a
// literal scalar.
func (c *Compiler) compile(node ast.Node) (any, error) {
	switch node := node.(type) {
	case *ast.ExprStmt:
		return c.compile(node.X)
	case *ast.If:
		return c.compileIf(node)
	case *ast.Block:
		return c.compileBlock(node)
	case *ast.Number:
		return node.Value, nil
	case *ast.String:
		return node.Value, nil
	case *ast.Bool:
		return node.Value, nil
	case *ast.Null:
		return nil, nil
	case *ast.Undefined, *ast.Hole:
		return ir.New(op.Undef), nil
	case *ast.Ident:
		return ir.Node{node.Name}, nil
	case *ast.Array:
		return c.compileArray(node)
	case *ast.Object:
		return c.compileObject(node)
	case *ast.Spread:
		x, err := c.compile(node.X)
		if err != nil {
			return nil, err
		}
		return ir.New(op.Spread, x), nil
	case *ast.Member:
		return c.compileMember(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.Unary:
		x, err := c.compile(node.X)
		if err != nil {
			return nil, err
		}
		return ir.New(op.Unary, node.Op, x), nil
	case *ast.Binary:
		return c.compileBinary(node)
	case *ast.Ternary:
		return c.compileTernary(node)
	case *ast.Arrow:
		return c.compileArrow(node)
	case *ast.Sequence:
		return c.compileSequence(node)
	case *ast.Assign:
		return c.compileAssign(node)
	case *ast.Property:
		return nil, c.formatError("property outside of an object literal", node.Pos())
	default:
		return nil, c.formatError(fmt.Sprintf("unknown node type %T", node), token.NoPos)
	}
}

// compileAll compiles a list of nodes into operands.
func (c *Compiler) compileAll(nodes []ast.Expr) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		v, err := c.compile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// compileIf emits a ternary. A missing else branch evaluates to undefined.
func (c *Compiler) compileIf(node *ast.If) (any, error) {
	cond, err := c.compile(node.Cond)
	if err != nil {
		return nil, err
	}
	consequence, err := c.compile(node.Consequence)
	if err != nil {
		return nil, err
	}
	var alternative any = ir.New(op.Undef)
	if node.Alternative != nil {
		if alternative, err = c.compile(node.Alternative); err != nil {
			return nil, err
		}
	}
	return ir.New(op.Ternary, cond, consequence, alternative), nil
}

func (c *Compiler) compileBlock(node *ast.Block) (any, error) {
	block := ir.New(op.Expression)
	for _, stmt := range node.Stmts {
		v, err := c.compile(stmt)
		if err != nil {
			return nil, err
		}
		block = append(block, v)
	}
	return block, nil
}

func (c *Compiler) compileArray(node *ast.Array) (any, error) {
	items, err := c.compileAll(node.Items)
	if err != nil {
		return nil, err
	}
	return ir.New(op.Array, items...), nil
}

// compileObject emits key and value pairs, with spread entries taking a
// single slot. Keys are always strings.
func (c *Compiler) compileObject(node *ast.Object) (any, error) {
	obj := ir.New(op.Object)
	for _, item := range node.Items {
		switch item := item.(type) {
		case *ast.Spread:
			v, err := c.compile(item)
			if err != nil {
				return nil, err
			}
			obj = append(obj, v)
		case *ast.Property:
			key, err := c.propertyKey(item.Key)
			if err != nil {
				return nil, err
			}
			value, err := c.compile(item.Value)
			if err != nil {
				return nil, err
			}
			obj = append(obj, key, value)
		default:
			return nil, c.formatError(fmt.Sprintf("unexpected %s in object literal", ast.Describe(item)), item.Pos())
		}
	}
	return obj, nil
}

func (c *Compiler) propertyKey(key ast.Expr) (string, error) {
	switch key := key.(type) {
	case *ast.Ident:
		return key.Name, nil
	case *ast.String:
		return key.Value, nil
	case *ast.Number:
		return object.FormatNumber(key.Value), nil
	}
	return "", c.formatError(fmt.Sprintf("invalid object key: %s", key), key.Pos())
}

// compileMember emits a resolve list for a plain member chain, or an
// optional chain node when the chain was entered with ?.
func (c *Compiler) compileMember(node *ast.Member) (any, error) {
	steps := make([]any, 0, len(node.Steps))
	for _, step := range node.Steps {
		v, err := c.compileStep(step)
		if err != nil {
			return nil, err
		}
		steps = append(steps, v)
	}
	if node.Optional {
		base, err := c.compile(node.X)
		if err != nil {
			return nil, err
		}
		return append(ir.New(op.OptionalChain, base), steps...), nil
	}
	base, err := c.compileBase(node.X)
	if err != nil {
		return nil, err
	}
	if list, ok := base.(ir.Node); ok {
		if _, isCode := list[0].(op.Code); !isCode {
			// Reading from a plain path: extend it.
			return append(list[:len(list):len(list)], steps...), nil
		}
	}
	return append(ir.Node{base}, steps...), nil
}

// compileBase returns the head of a resolve list: a variable name, or a node
// evaluated to the value the steps are applied to. Literal values are
// wrapped so they cannot be mistaken for variable names.
func (c *Compiler) compileBase(x ast.Expr) (any, error) {
	if ident, ok := x.(*ast.Ident); ok {
		return ident.Name, nil
	}
	v, err := c.compile(x)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(ir.Node); ok {
		return v, nil
	}
	return ir.New(op.Expression, v), nil
}

// compileStep returns a property name, an index literal, or a node that
// evaluates to the property key.
func (c *Compiler) compileStep(step ast.Step) (any, error) {
	if step.IsName() {
		return step.Name, nil
	}
	switch index := step.Index.(type) {
	case *ast.Number:
		return index.Value, nil
	case *ast.String:
		return index.Value, nil
	}
	v, err := c.compile(step.Index)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(ir.Node); ok {
		return v, nil
	}
	return ir.New(op.Expression, v), nil
}

func (c *Compiler) compileCall(node *ast.Call) (any, error) {
	callee, err := c.compile(node.Fun)
	if err != nil {
		return nil, err
	}
	args, err := c.compileAll(node.Args)
	if err != nil {
		return nil, err
	}
	call := ir.New(op.Call, callee)
	return append(call, args...), nil
}

func (c *Compiler) compileBinary(node *ast.Binary) (any, error) {
	if _, ok := op.BinaryPrecedence(node.Op); !ok {
		return nil, c.formatError(fmt.Sprintf("unknown operator %s", node.Op), node.OpPos)
	}
	x, err := c.compile(node.X)
	if err != nil {
		return nil, err
	}
	y, err := c.compile(node.Y)
	if err != nil {
		return nil, err
	}
	return ir.New(op.Calc, x, node.Op, y), nil
}

func (c *Compiler) compileTernary(node *ast.Ternary) (any, error) {
	cond, err := c.compile(node.Cond)
	if err != nil {
		return nil, err
	}
	consequence, err := c.compile(node.Consequence)
	if err != nil {
		return nil, err
	}
	alternative, err := c.compile(node.Alternative)
	if err != nil {
		return nil, err
	}
	return ir.New(op.Ternary, cond, consequence, alternative), nil
}

// compileArrow emits the parameter names followed by the body.
func (c *Compiler) compileArrow(node *ast.Arrow) (any, error) {
	fn := ir.New(op.ArrowFunc)
	for _, param := range node.Params {
		fn = append(fn, param.Name)
	}
	body, err := c.compile(node.Body)
	if err != nil {
		return nil, err
	}
	return append(fn, body), nil
}

// compileSequence emits a single expression as is, and several as an
// expression list.
func (c *Compiler) compileSequence(node *ast.Sequence) (any, error) {
	if len(node.Exprs) == 1 {
		return c.compile(node.Exprs[0])
	}
	items, err := c.compileAll(node.Exprs)
	if err != nil {
		return nil, err
	}
	return ir.New(op.Expression, items...), nil
}

func (c *Compiler) compileAssign(node *ast.Assign) (any, error) {
	if _, ok := op.AssignOperator(node.Op); !ok {
		return nil, c.formatError(fmt.Sprintf("unknown assignment operator %s", node.Op), node.OpPos)
	}
	var target any
	switch t := node.Target.(type) {
	case *ast.Ident:
		target = ir.Node{t.Name}
	case *ast.Member:
		if t.Optional {
			return nil, c.formatError("cannot assign to optional chain expression", t.Pos())
		}
		v, err := c.compileMember(t)
		if err != nil {
			return nil, err
		}
		target = v
	default:
		return nil, c.formatError(fmt.Sprintf("cannot assign to %s", ast.Describe(t)), t.Pos())
	}
	value, err := c.compile(node.Value)
	if err != nil {
		return nil, err
	}
	return ir.New(op.Assign, target, node.Op, value), nil
}

func (c *Compiler) formatError(msg string, pos token.Position) error {
	return &Error{Message: msg, Filename: c.filename, Pos: pos}
}
