package ast

import (
	"bytes"
	"strconv"

	"github.com/jcormont/expression-runner/internal/token"
)

// Number is a numeric literal.
type Number struct {
	ValuePos token.Position
	Literal  string  // source text, e.g. "0x10" or "-1.5"
	Value    float64 // parsed value
}

func (x *Number) exprNode() {}

func (x *Number) Pos() token.Position { return x.ValuePos }
func (x *Number) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Number) String() string {
	if x.Literal != "" {
		return x.Literal
	}
	return strconv.FormatFloat(x.Value, 'g', -1, 64)
}

// String is a string literal.
type String struct {
	ValuePos token.Position
	Literal  string // source text including quotes
	Value    string // unescaped value
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *String) String() string {
	if x.Literal != "" {
		return x.Literal
	}
	return strconv.Quote(x.Value)
}

// Bool is a true or false literal.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.String())) }

func (x *Bool) String() string {
	if x.Value {
		return "true"
	}
	return "false"
}

// Null is the null literal.
type Null struct {
	NullPos token.Position
}

func (x *Null) exprNode() {}

func (x *Null) Pos() token.Position { return x.NullPos }
func (x *Null) End() token.Position { return x.NullPos.Advance(4) }
func (x *Null) String() string      { return "null" }

// Undefined is the undefined literal.
type Undefined struct {
	UndefPos token.Position
}

func (x *Undefined) exprNode() {}

func (x *Undefined) Pos() token.Position { return x.UndefPos }
func (x *Undefined) End() token.Position { return x.UndefPos.Advance(9) }
func (x *Undefined) String() string      { return "undefined" }

// Hole is an elided element in an array literal, as in [1,,3].
type Hole struct {
	HolePos token.Position
}

func (x *Hole) exprNode() {}

func (x *Hole) Pos() token.Position { return x.HolePos }
func (x *Hole) End() token.Position { return x.HolePos }
func (x *Hole) String() string      { return "" }

// Array is an array literal.
type Array struct {
	Lbrack token.Position
	Items  []Expr // may contain *Spread and *Hole
	Rbrack token.Position
}

func (x *Array) exprNode() {}

func (x *Array) Pos() token.Position { return x.Lbrack }
func (x *Array) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Array) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	for i, item := range x.Items {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(item.String())
	}
	out.WriteString("]")
	return out.String()
}

// Property is one key: value entry of an object literal. The key is an
// *Ident, *String or *Number. Shorthand entries ({a}) have the same name as
// key and value.
type Property struct {
	Key       Expr
	Value     Expr
	Shorthand bool
}

func (x *Property) exprNode() {}

func (x *Property) Pos() token.Position { return x.Key.Pos() }
func (x *Property) End() token.Position { return x.Value.End() }

func (x *Property) String() string {
	if x.Shorthand {
		return x.Key.String()
	}
	return x.Key.String() + ": " + x.Value.String()
}

// Object is an object literal.
type Object struct {
	Lbrace token.Position
	Items  []Expr // *Property or *Spread
	Rbrace token.Position
}

func (x *Object) exprNode() {}

func (x *Object) Pos() token.Position { return x.Lbrace }
func (x *Object) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Object) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for i, item := range x.Items {
		if i > 0 {
			out.WriteString(",")
		}
		out.WriteString(" ")
		out.WriteString(item.String())
	}
	if len(x.Items) > 0 {
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}
