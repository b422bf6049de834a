// Package parser is used to generate the abstract syntax tree (AST) for an
// expression.
//
// A parser is created by calling New() with the source text as input. The
// parser should then be used only once, by calling parser.Parse() to produce
// the AST. The input is tokenized up front so that the two ambiguous
// constructs of the grammar (a parenthesized group versus an arrow function
// parameter list, and call arguments versus a parameter list) can be
// resolved by saving and restoring the token cursor.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcormont/expression-runner/ast"
	"github.com/jcormont/expression-runner/errors"
	"github.com/jcormont/expression-runner/internal/lexer"
	"github.com/jcormont/expression-runner/internal/token"
)

// Parse the provided input as expression source code and return the AST.
// This is shorthand for creating a Parser and calling Parse on it.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	return New(input, options...).Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithAssignment permits the assignment operators = += -= *= /= %= at
// statement level.
func WithAssignment(allow bool) Option {
	return func(p *Parser) {
		p.allowAssignment = allow
	}
}

// WithStatements permits multiple statements, separated by semicolons or
// line breaks, and if/else statements.
func WithStatements(allow bool) Option {
	return func(p *Parser) {
		p.allowStatement = allow
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// the source text
	input string

	// all tokens of the input, ending with EOF
	tokens []token.Token

	// index of the current token
	pos int

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int

	allowAssignment bool
	allowStatement  bool
}

// New returns a Parser for the given source text.
func New(input string, options ...Option) *Parser {
	p := &Parser{
		input:    input,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse the input and return the program. The first syntax error found ends
// parsing; there is no partial result.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	if err := p.tokenize(); err != nil {
		return nil, err
	}
	if p.cur().Type == token.EOF {
		return nil, p.emptyError()
	}
	stmts, err := p.parseStatements(token.EOF)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, p.emptyError()
	}
	return &ast.Program{Stmts: stmts}, nil
}

func (p *Parser) tokenize() error {
	l := lexer.New(p.input)
	if p.filename != "" {
		l.SetFilename(p.filename)
	}
	for {
		tok, err := l.Next()
		if err != nil {
			// All lexer errors are syntax errors that end parsing.
			return NewSyntaxError(ErrorOpts{
				Code:          errors.E1001,
				Cause:         err,
				File:          p.filename,
				StartPosition: tok.StartPosition,
				EndPosition:   tok.EndPosition,
				SourceCode:    l.GetLineText(tok),
			})
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			return nil
		}
	}
}

// parseStatements parses statements until the given closing token, which is
// not consumed. A statement begins at the start of the list, after a
// semicolon, or at a token on a new line.
func (p *Parser) parseStatements(end token.Type) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	separated := true
	for {
		for p.curIs(token.SEMICOLON) {
			p.next()
			separated = true
		}
		if p.curIs(end) || p.curIs(token.EOF) {
			return stmts, nil
		}
		if err := p.cancelled(); err != nil {
			return nil, err
		}
		if len(stmts) > 0 && (!p.allowStatement || !(separated || p.cur().NewlineBefore)) {
			return nil, p.unexpected(p.cur())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		separated = false
	}
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	if p.allowStatement && p.curIsWord("if") {
		return p.parseIf()
	}
	x, err := p.parseSequence(true)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x}, nil
}

// parseIf parses: if (cond) stmt-or-block [;]* [else stmt-or-block]
func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.cur()
	p.next()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseSequence(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	consequence, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{IfPos: ifTok.StartPosition, Cond: cond, Consequence: consequence}

	save := p.pos
	for p.curIs(token.SEMICOLON) {
		p.next()
	}
	if !p.curIsWord("else") {
		p.pos = save
		return stmt, nil
	}
	p.next()
	if stmt.Alternative, err = p.parseBody(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseBody() (ast.Stmt, error) {
	if !p.curIs(token.LBRACE) {
		return p.parseStatement()
	}
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	lbrace := p.cur()
	p.next()
	stmts, err := p.parseStatements(token.RBRACE)
	if err != nil {
		return nil, err
	}
	rbrace, err := p.expect(token.RBRACE)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Lbrace: lbrace.StartPosition, Stmts: stmts, Rbrace: rbrace.StartPosition}, nil
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// next moves to the next token. The cursor never moves past EOF.
func (p *Parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// curIs returns true if the current token has the given type.
func (p *Parser) curIs(t token.Type) bool {
	return p.cur().Type == t
}

// curIsWord returns true if the current token is the given identifier.
func (p *Parser) curIsWord(word string) bool {
	tok := p.cur()
	return tok.Type == token.IDENT && tok.Literal == word
}

// expect consumes a token of the given type or fails on the current token.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	tok := p.cur()
	if tok.Type != t {
		return tok, p.unexpected(tok)
	}
	p.next()
	return tok, nil
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		return p.tokenError(p.cur(), errors.E1009, "maximum nesting depth exceeded")
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// cancelled returns the context error once the parsing context is done.
func (p *Parser) cancelled() error {
	if p.ctx == nil {
		return nil
	}
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		return nil
	}
}

// unexpected returns the error for a token that no grammar rule can use. At
// the end of the input the error names the last line instead of a token.
func (p *Parser) unexpected(tok token.Token) error {
	if tok.Type == token.EOF {
		line := strings.Count(p.input, "\n") + 1
		return p.tokenError(tok, errors.E1002, fmt.Sprintf("Unexpected expression at line %d", line))
	}
	msg := fmt.Sprintf("Unexpected %s at line %d: %s", tok.Class(), tok.StartPosition.LineNumber(), tok.Literal)
	return p.tokenError(tok, errors.E1002, msg)
}

func (p *Parser) emptyError() error {
	return NewSyntaxError(ErrorOpts{
		Code:    errors.E1003,
		Message: "Expression cannot be empty",
		File:    p.filename,
	})
}

func (p *Parser) tokenError(tok token.Token, code errors.ErrorCode, msg string) error {
	return NewSyntaxError(ErrorOpts{
		Code:          code,
		Message:       msg,
		File:          p.filename,
		StartPosition: tok.StartPosition,
		EndPosition:   tok.EndPosition,
		SourceCode:    lexer.LineText(p.input, tok.StartPosition),
	})
}

func (p *Parser) nodeError(node ast.Node, code errors.ErrorCode, msg string) error {
	return NewSyntaxError(ErrorOpts{
		Code:          code,
		Message:       msg,
		File:          p.filename,
		StartPosition: node.Pos(),
		EndPosition:   node.End(),
		SourceCode:    lexer.LineText(p.input, node.Pos()),
	})
}
