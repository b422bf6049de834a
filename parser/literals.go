package parser

import (
	"fmt"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/internal/lexer"
	"github.com/jcormont/expression-runner/internal/token"
)

// Primary expression parsing methods for the Parser:
// - Number and string literals
// - true, false, null and undefined
// - Variables and single parameter arrow functions
// - Parenthesized groups and arrow functions
// - Array and object literals

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		return p.parseNumber()
	case token.STRING:
		return p.parseString()
	case token.IDENT:
		return p.parseIdent()
	case token.LPAREN:
		return p.parseGroupOrArrow()
	case token.LBRACKET:
		return p.parseArray()
	case token.LBRACE:
		return p.parseObject()
	default:
		return nil, p.unexpected(tok)
	}
}

func (p *Parser) parseNumber() (ast.Expr, error) {
	tok := p.cur()
	value, err := lexer.ParseNumber(tok.Literal)
	if err != nil {
		return nil, p.tokenError(tok, errors.E1008, err.Error())
	}
	p.next()
	return &ast.Number{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}, nil
}

func (p *Parser) parseString() (ast.Expr, error) {
	tok := p.cur()
	value, err := lexer.Unquote(tok.Literal)
	if err != nil {
		return nil, p.tokenError(tok, errors.E1001, err.Error())
	}
	p.next()
	return &ast.String{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}, nil
}

// parseIdent parses keyword literals, variables, and arrow functions with a
// single unparenthesized parameter (x => x + 1).
func (p *Parser) parseIdent() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Literal {
	case "true", "false":
		p.next()
		return &ast.Bool{ValuePos: tok.StartPosition, Value: tok.Literal == "true"}, nil
	case "null":
		p.next()
		return &ast.Null{NullPos: tok.StartPosition}, nil
	case "undefined":
		p.next()
		return &ast.Undefined{UndefPos: tok.StartPosition}, nil
	}
	if token.IsReserved(tok.Literal) {
		return nil, p.unexpected(tok)
	}
	p.next()
	ident := &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
	if p.curIs(token.ARROW) && !p.cur().NewlineBefore {
		return p.parseArrowBody(tok.StartPosition, []*ast.Ident{ident})
	}
	return ident, nil
}

// parseGroupOrArrow parses a parenthesized expression, or an arrow function
// with a parenthesized parameter list. The content is first parsed as an
// ordinary expression; if an arrow follows the closing parenthesis, the
// cursor is restored and the content is parsed again as a parameter list.
func (p *Parser) parseGroupOrArrow() (ast.Expr, error) {
	save := p.pos
	group, groupErr := p.parseGroup()
	if groupErr == nil && !p.curIs(token.ARROW) {
		return group, nil
	}
	p.pos = save
	start := p.cur().StartPosition
	params, paramErr := p.parseParams()
	if paramErr == nil && p.curIs(token.ARROW) {
		return p.parseArrowBody(start, params)
	}
	if groupErr != nil {
		return nil, groupErr
	}
	return nil, paramErr
}

func (p *Parser) parseGroup() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	lparen, err := p.expect(token.LPAREN)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.RPAREN) {
		// Only valid as an empty arrow function parameter list.
		rparen := p.cur()
		p.next()
		if p.curIs(token.ARROW) {
			return nil, nil
		}
		return nil, p.unexpected(rparen)
	}
	x, err := p.parseSequence(false)
	if err != nil {
		return nil, err
	}
	rparen, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	group := &ast.Sequence{Lparen: lparen.StartPosition, Rparen: rparen.StartPosition, Parens: true}
	if seq, ok := x.(*ast.Sequence); ok && !seq.Parens {
		group.Exprs = seq.Exprs
	} else {
		group.Exprs = []ast.Expr{x}
	}
	return group, nil
}

// parseParams parses an arrow function parameter list. Every parameter must
// be a plain variable name.
func (p *Parser) parseParams() ([]*ast.Ident, error) {
	lparen, err := p.expect(token.LPAREN)
	if err != nil {
		return nil, err
	}
	params := []*ast.Ident{}
	for !p.curIs(token.RPAREN) {
		tok := p.cur()
		if tok.Type != token.IDENT || token.IsReserved(tok.Literal) || isKeywordLiteral(tok.Literal) {
			return nil, p.tokenError(lparen, errors.E1006, "Invalid function argument list")
		}
		params = append(params, &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal})
		p.next()
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		if !p.curIs(token.RPAREN) {
			return nil, p.tokenError(lparen, errors.E1006, "Invalid function argument list")
		}
	}
	p.next()
	return params, nil
}

// parseArrowBody parses the => token and the single expression body of an
// arrow function. Block bodies are not supported.
func (p *Parser) parseArrowBody(start token.Position, params []*ast.Ident) (ast.Expr, error) {
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	if p.curIs(token.LBRACE) {
		tok := p.cur()
		msg := fmt.Sprintf("Unsupported arrow function with block at line %d", tok.StartPosition.LineNumber())
		return nil, p.tokenError(tok, errors.E1007, msg)
	}
	body, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	return &ast.Arrow{StartPos: start, Params: params, Body: body}, nil
}

// parseArray parses an array literal. Elements may be spread (...x) or
// omitted ([1,,3]); a single trailing comma does not add an element.
func (p *Parser) parseArray() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	lbrack := p.cur()
	p.next()
	items := []ast.Expr{}
	for !p.curIs(token.RBRACKET) {
		if p.curIs(token.COMMA) {
			items = append(items, &ast.Hole{HolePos: p.cur().StartPosition})
			p.next()
			continue
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		if !p.curIs(token.RBRACKET) {
			return nil, p.unexpected(p.cur())
		}
	}
	rbrack := p.cur()
	p.next()
	return &ast.Array{Lbrack: lbrack.StartPosition, Items: items, Rbrack: rbrack.StartPosition}, nil
}

// parseItem parses an array element or spread entry.
func (p *Parser) parseItem() (ast.Expr, error) {
	if !p.curIs(token.SPREAD) {
		return p.parseAssignment(false)
	}
	ellipsis := p.cur()
	p.next()
	x, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	return &ast.Spread{Ellipsis: ellipsis.StartPosition, X: x}, nil
}

// parseObject parses an object literal. Keys are identifiers, strings or
// numbers; computed keys are not supported. Entries may use the shorthand
// {a} for {a: a}, or spread another object with ...x.
func (p *Parser) parseObject() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	lbrace := p.cur()
	p.next()
	items := []ast.Expr{}
	for !p.curIs(token.RBRACE) {
		var item ast.Expr
		var err error
		if p.curIs(token.SPREAD) {
			item, err = p.parseItem()
		} else {
			item, err = p.parseProperty()
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		if !p.curIs(token.RBRACE) {
			return nil, p.unexpected(p.cur())
		}
	}
	rbrace := p.cur()
	p.next()
	return &ast.Object{Lbrace: lbrace.StartPosition, Items: items, Rbrace: rbrace.StartPosition}, nil
}

func (p *Parser) parseProperty() (ast.Expr, error) {
	tok := p.cur()
	var key ast.Expr
	switch tok.Type {
	case token.IDENT:
		key = &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
		p.next()
		if !p.curIs(token.COLON) {
			if token.IsReserved(tok.Literal) || isKeywordLiteral(tok.Literal) {
				return nil, p.unexpected(tok)
			}
			return &ast.Property{Key: key, Value: &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}, Shorthand: true}, nil
		}
	case token.STRING:
		k, err := p.parseString()
		if err != nil {
			return nil, err
		}
		key = k
	case token.NUMBER:
		k, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		key = k
	default:
		return nil, p.unexpected(tok)
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	value, err := p.parseAssignment(false)
	if err != nil {
		return nil, err
	}
	return &ast.Property{Key: key, Value: value}, nil
}

func isKeywordLiteral(word string) bool {
	switch word {
	case "true", "false", "null", "undefined":
		return true
	}
	return false
}
