package ast

import (
	"bytes"
	"strings"

	"github.com/jcormont/expression-runner/internal/token"
)

// Ident is an expression node that refers to a variable by name.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Spread represents a spread entry (...expr) in an array or object literal.
type Spread struct {
	Ellipsis token.Position // position of "..."
	X        Expr           // expression being spread
}

func (x *Spread) exprNode() {}

func (x *Spread) Pos() token.Position { return x.Ellipsis }
func (x *Spread) End() token.Position { return x.X.End() }

func (x *Spread) String() string { return "..." + x.X.String() }

// Step is one property access within a member chain: either a property name
// (.name) or a computed index ([expr]).
type Step struct {
	StepPos token.Position
	Name    string // set for .name steps
	Index   Expr   // set for [expr] steps
	EndPos  token.Position
}

// IsName returns true for .name steps.
func (s Step) IsName() bool {
	return s.Index == nil
}

// Member is a flattened chain of property accesses on a base expression,
// such as a.b[0].c. When Optional is set, the chain was entered with ?. and
// evaluates to the nullish value it reaches instead of failing. Steps that
// precede the first ?. are kept in a nested, non-optional Member as X.
type Member struct {
	X        Expr
	Steps    []Step
	Optional bool
}

func (x *Member) exprNode() {}

func (x *Member) Pos() token.Position { return x.X.Pos() }

func (x *Member) End() token.Position {
	if len(x.Steps) == 0 {
		return x.X.End()
	}
	return x.Steps[len(x.Steps)-1].EndPos
}

func (x *Member) String() string {
	var out bytes.Buffer
	out.WriteString(x.X.String())
	for i, step := range x.Steps {
		if i == 0 && x.Optional {
			out.WriteString("?.")
			if !step.IsName() {
				out.WriteString("[")
				out.WriteString(step.Index.String())
				out.WriteString("]")
				continue
			}
			out.WriteString(step.Name)
			continue
		}
		if step.IsName() {
			out.WriteString(".")
			out.WriteString(step.Name)
		} else {
			out.WriteString("[")
			out.WriteString(step.Index.String())
			out.WriteString("]")
		}
	}
	return out.String()
}

// Call is a function call expression.
type Call struct {
	Fun    Expr
	Lparen token.Position
	Args   []Expr
	Rparen token.Position
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	return x.Fun.String() + "(" + strings.Join(args, ", ") + ")"
}

// Unary is an operator expression where the operator precedes the operand.
// Examples include "!x", "-y" and "typeof z".
type Unary struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "-", "~", "!", "typeof"
	X     Expr           // operand
}

func (x *Unary) exprNode() {}

func (x *Unary) Pos() token.Position { return x.OpPos }
func (x *Unary) End() token.Position { return x.X.End() }

func (x *Unary) String() string {
	if x.Op == "typeof" {
		return "(typeof " + x.X.String() + ")"
	}
	return "(" + x.Op + x.X.String() + ")"
}

// Binary is an operator expression where the operator is between the
// operands, such as "x + y" or "a ?? b".
type Binary struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator
	Y     Expr           // right operand
}

func (x *Binary) exprNode() {}

func (x *Binary) Pos() token.Position { return x.X.Pos() }
func (x *Binary) End() token.Position { return x.Y.End() }

func (x *Binary) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// Ternary is a conditional expression: cond ? a : b.
type Ternary struct {
	Cond        Expr
	Question    token.Position
	Consequence Expr
	Colon       token.Position
	Alternative Expr
}

func (x *Ternary) exprNode() {}

func (x *Ternary) Pos() token.Position { return x.Cond.Pos() }
func (x *Ternary) End() token.Position { return x.Alternative.End() }

func (x *Ternary) String() string {
	return "(" + x.Cond.String() + " ? " + x.Consequence.String() + " : " + x.Alternative.String() + ")"
}

// Arrow is a single-expression arrow function.
type Arrow struct {
	StartPos token.Position
	Params   []*Ident
	Body     Expr
}

func (x *Arrow) exprNode() {}

func (x *Arrow) Pos() token.Position { return x.StartPos }
func (x *Arrow) End() token.Position { return x.Body.End() }

func (x *Arrow) String() string {
	params := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		params = append(params, p.Name)
	}
	return "(" + strings.Join(params, ", ") + ") => " + x.Body.String()
}

// Sequence is a comma separated list of expressions, evaluating to the value
// of the last one. Parenthesized expressions are sequences with Parens set.
type Sequence struct {
	Lparen token.Position
	Exprs  []Expr
	Rparen token.Position
	Parens bool
}

func (x *Sequence) exprNode() {}

func (x *Sequence) Pos() token.Position {
	if x.Parens || len(x.Exprs) == 0 {
		return x.Lparen
	}
	return x.Exprs[0].Pos()
}

func (x *Sequence) End() token.Position {
	if x.Parens || len(x.Exprs) == 0 {
		return x.Rparen.Advance(1)
	}
	return x.Exprs[len(x.Exprs)-1].End()
}

func (x *Sequence) String() string {
	items := make([]string, 0, len(x.Exprs))
	for _, e := range x.Exprs {
		items = append(items, e.String())
	}
	s := strings.Join(items, ", ")
	if x.Parens {
		return "(" + s + ")"
	}
	return s
}

// Assign is an assignment to a variable or member chain. Op is one of
// "=", "+=", "-=", "*=", "/=" or "%=".
type Assign struct {
	Target Expr // *Ident or *Member
	OpPos  token.Position
	Op     string
	Value  Expr
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position { return x.Target.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.Target.String() + " " + x.Op + " " + x.Value.String()
}
