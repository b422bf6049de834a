package parser

import (
	"fmt"
	"strings"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/internal/token"
	"github.com/jcormont/expression-runner/op"
)

// Expression parsing methods for the Parser, from the lowest binding level
// (comma sequences) down to member and call chains. Literals and primary
// expressions are in literals.go.

// parseSequence parses one or more comma separated expressions. When top is
// set the expressions are at statement level, where assignment may appear.
func (p *Parser) parseSequence(top bool) (ast.Expr, error) {
	first, err := p.parseAssignment(top)
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.COMMA) {
		return first, nil
	}
	exprs := []ast.Expr{first}
	for p.curIs(token.COMMA) {
		p.next()
		x, err := p.parseAssignment(top)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, x)
	}
	return &ast.Sequence{Exprs: exprs}, nil
}

// parseAssignment parses a ternary expression, followed by an assignment
// operator and a right hand side if the expression is an assignment.
// Assignments are right associative: a = b = 1 assigns to both.
func (p *Parser) parseAssignment(top bool) (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	x, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	opTok := p.cur()
	if _, ok := op.AssignOperator(string(opTok.Type)); !ok {
		return x, nil
	}
	if !top || !p.allowAssignment {
		return nil, p.tokenError(opTok, errors.E1005, "Assignment not allowed in this expression")
	}
	target, err := p.assignTarget(x)
	if err != nil {
		return nil, err
	}
	p.next()
	value, err := p.parseAssignment(true)
	if err != nil {
		return nil, err
	}
	return &ast.Assign{
		Target: target,
		OpPos:  opTok.StartPosition,
		Op:     opTok.Literal,
		Value:  value,
	}, nil
}

// assignTarget validates the left hand side of an assignment. Only variables
// and non-optional member chains can be assigned to. A single parenthesized
// target is unwrapped.
func (p *Parser) assignTarget(x ast.Expr) (ast.Expr, error) {
	if seq, ok := x.(*ast.Sequence); ok && seq.Parens && len(seq.Exprs) == 1 {
		x = seq.Exprs[0]
	}
	switch t := x.(type) {
	case *ast.Ident:
		return t, nil
	case *ast.Member:
		if !isOptionalChain(t) {
			return t, nil
		}
		return nil, p.nodeError(x, errors.E1004, "Cannot assign to optional chain expression")
	}
	kind := ast.Describe(x)
	if !strings.HasSuffix(kind, "expression") {
		kind += " expression"
	}
	return nil, p.nodeError(x, errors.E1004, fmt.Sprintf("Cannot assign to %s", kind))
}

func isOptionalChain(m *ast.Member) bool {
	for {
		if m.Optional {
			return true
		}
		inner, ok := m.X.(*ast.Member)
		if !ok {
			return false
		}
		m = inner
	}
}

// parseTernary parses cond ? a : b. Ternaries are right associative and
// their branches cannot contain commas or assignments.
func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseBinary(op.PrecNullish)
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.QUESTION) {
		return cond, nil
	}
	question := p.cur()
	p.next()
	consequence, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	colon, err := p.expect(token.COLON)
	if err != nil {
		return nil, err
	}
	alternative, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{
		Cond:        cond,
		Question:    question.StartPosition,
		Consequence: consequence,
		Colon:       colon.StartPosition,
		Alternative: alternative,
	}, nil
}

// binaryOperator returns the operator text and precedence of the current
// token if it is a binary operator.
func (p *Parser) binaryOperator() (string, int, bool) {
	tok := p.cur()
	var text string
	switch tok.Type {
	case token.IDENT:
		if tok.Literal != "in" {
			return "", 0, false
		}
		text = "in"
	case token.STRING, token.NUMBER, token.EOF, token.ILLEGAL:
		return "", 0, false
	default:
		text = string(tok.Type)
	}
	prec, ok := op.BinaryPrecedence(text)
	return text, prec, ok
}

// parseBinary parses a chain of binary operators by precedence climbing.
// Operators with a precedence lower than minPrec end the chain. ?? cannot be
// combined with || or && without parentheses.
func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		operator, prec, ok := p.binaryOperator()
		if !ok || prec < minPrec {
			return x, nil
		}
		opTok := p.cur()
		if mixesNullish(x, operator) {
			return nil, p.unexpected(opTok)
		}
		p.next()
		rightPrec := prec + 1
		if operator == "??" {
			rightPrec = op.PrecAnd + 1
		}
		y, err := p.parseBinary(rightPrec)
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{X: x, OpPos: opTok.StartPosition, Op: operator, Y: y}
	}
}

// mixesNullish reports whether applying operator to the unparenthesized
// binary expression x would combine ?? with || or &&.
func mixesNullish(x ast.Expr, operator string) bool {
	b, ok := x.(*ast.Binary)
	if !ok {
		return false
	}
	if operator == "??" {
		return b.Op == "||" || b.Op == "&&"
	}
	return b.Op == "??" && (operator == "||" || operator == "&&")
}

// parseUnary parses prefix operators. Unary operators bind less tightly than
// member access and calls, so -a.b is -(a.b). A minus sign applied to a
// number literal folds into a negative literal.
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.cur()
	var operator string
	switch {
	case tok.Type == token.PLUS, tok.Type == token.MINUS, tok.Type == token.TILDE, tok.Type == token.BANG:
		operator = string(tok.Type)
	case tok.Type == token.IDENT && tok.Literal == "typeof":
		operator = "typeof"
	default:
		return p.parsePostfix()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if num, ok := x.(*ast.Number); ok && operator == "-" {
		return &ast.Number{
			ValuePos: tok.StartPosition,
			Literal:  "-" + num.String(),
			Value:    -num.Value,
		}, nil
	}
	return &ast.Unary{OpPos: tok.StartPosition, Op: operator, X: x}, nil
}

// parsePostfix parses a primary expression followed by any number of
// property accesses and calls. Consecutive accesses are collected in a
// single member node. An optional access (?.) starts a new member node whose
// base is everything before it, so that the short circuit covers the rest of
// the chain.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := x.(*ast.Arrow); ok {
		return x, nil
	}
	for {
		tok := p.cur()
		// In statement mode a bracket or parenthesis on a new line starts
		// the next statement.
		if p.allowStatement && tok.NewlineBefore && (tok.Type == token.LBRACKET || tok.Type == token.LPAREN) {
			return x, nil
		}
		switch tok.Type {
		case token.PERIOD:
			p.next()
			name := p.cur()
			if name.Type != token.IDENT {
				return nil, p.unexpected(name)
			}
			p.next()
			x = appendStep(x, ast.Step{StepPos: tok.StartPosition, Name: name.Literal, EndPos: name.EndPosition}, false)
		case token.QUESTION_DOT:
			p.next()
			var step ast.Step
			switch p.cur().Type {
			case token.IDENT:
				name := p.cur()
				p.next()
				step = ast.Step{StepPos: tok.StartPosition, Name: name.Literal, EndPos: name.EndPosition}
			case token.LBRACKET:
				if step, err = p.parseIndexStep(); err != nil {
					return nil, err
				}
				step.StepPos = tok.StartPosition
			default:
				return nil, p.unexpected(p.cur())
			}
			x = appendStep(x, step, true)
		case token.LBRACKET:
			step, err := p.parseIndexStep()
			if err != nil {
				return nil, err
			}
			x = appendStep(x, step, false)
		case token.LPAREN:
			save := p.pos
			args, rparen, err := p.parseArguments()
			if err == nil && p.curIs(token.ARROW) {
				// The parenthesis belongs to an arrow function parameter
				// list that follows this expression.
				p.pos = save
				return x, nil
			}
			if err != nil {
				return nil, err
			}
			x = &ast.Call{Fun: x, Lparen: tok.StartPosition, Args: args, Rparen: rparen.StartPosition}
		default:
			return x, nil
		}
	}
}

// appendStep adds a property access to x. Accesses are merged into x if it
// is already a member chain, unless the access is optional, which always
// starts a new chain around x.
func appendStep(x ast.Expr, step ast.Step, optional bool) ast.Expr {
	if m, ok := x.(*ast.Member); ok && !optional {
		m.Steps = append(m.Steps, step)
		return m
	}
	return &ast.Member{X: x, Steps: []ast.Step{step}, Optional: optional}
}

// parseIndexStep parses [expr], where expr may be a comma sequence.
func (p *Parser) parseIndexStep() (ast.Step, error) {
	lbrack, err := p.expect(token.LBRACKET)
	if err != nil {
		return ast.Step{}, err
	}
	if err := p.enter(); err != nil {
		return ast.Step{}, err
	}
	defer p.leave()
	index, err := p.parseSequence(false)
	if err != nil {
		return ast.Step{}, err
	}
	rbrack, err := p.expect(token.RBRACKET)
	if err != nil {
		return ast.Step{}, err
	}
	return ast.Step{StepPos: lbrack.StartPosition, Index: index, EndPos: rbrack.EndPosition}, nil
}

// parseArguments parses a parenthesized call argument list. A trailing
// comma is allowed.
func (p *Parser) parseArguments() ([]ast.Expr, token.Token, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, token.Token{}, err
	}
	if err := p.enter(); err != nil {
		return nil, token.Token{}, err
	}
	defer p.leave()
	var args []ast.Expr
	for !p.curIs(token.RPAREN) {
		arg, err := p.parseAssignment(false)
		if err != nil {
			return nil, token.Token{}, err
		}
		args = append(args, arg)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		if !p.curIs(token.RPAREN) {
			return nil, token.Token{}, p.unexpected(p.cur())
		}
	}
	rparen := p.cur()
	p.next()
	return args, rparen, nil
}
