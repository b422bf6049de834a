// Package ast defines the abstract syntax tree representation of expressions.
package ast

import (
	"bytes"

	"github.com/jcormont/expression-runner/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of the tree: one or more statements.
type Program struct {
	Stmts []Stmt
}

func (p *Program) Pos() token.Position {
	if len(p.Stmts) == 0 {
		return token.NoPos
	}
	return p.Stmts[0].Pos()
}

func (p *Program) End() token.Position {
	if len(p.Stmts) == 0 {
		return token.NoPos
	}
	return p.Stmts[len(p.Stmts)-1].End()
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// ExprStmt is a statement consisting of a single expression.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.X.End() }
func (s *ExprStmt) String() string      { return s.X.String() }

// If is a conditional statement with an optional else branch.
type If struct {
	IfPos       token.Position
	Cond        Expr
	Consequence Stmt
	Alternative Stmt // nil if there is no else branch
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.IfPos }

func (s *If) End() token.Position {
	if s.Alternative != nil {
		return s.Alternative.End()
	}
	return s.Consequence.End()
}

func (s *If) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(s.Cond.String())
	out.WriteString(") ")
	out.WriteString(s.Consequence.String())
	if s.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(s.Alternative.String())
	}
	return out.String()
}

// Block groups statements within braces. Blocks only appear as if bodies.
type Block struct {
	Lbrace token.Position
	Stmts  []Stmt
	Rbrace token.Position
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, stmt := range s.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(stmt.String())
	}
	out.WriteString(" }")
	return out.String()
}

// Describe returns the name used for a node in error messages, for example
// "member expression" or "literal".
func Describe(node Node) string {
	switch node.(type) {
	case *Number, *String, *Bool, *Null, *Undefined:
		return "literal"
	case *Ident:
		return "variable or object"
	case *Object:
		return "object literal"
	case *Array:
		return "array literal"
	case *Member:
		return "member expression"
	case *Call:
		return "call expression"
	case *Unary:
		return "unary expression"
	case *Binary:
		return "dual operand expression"
	case *Ternary:
		return "tertiary expression"
	case *Arrow:
		return "arrow function"
	case *Assign:
		return "assignment"
	default:
		return "expression"
	}
}
