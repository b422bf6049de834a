// Package token defines the tokens produced when lexing expression source code.
package token

// Type describes the type of a token as a string.
type Type string

// Class groups token types into the broad categories used in error messages.
type Class string

const (
	ClassInvalid     Class = ""
	ClassLiteral     Class = "literal"
	ClassIdentifier  Class = "identifier"
	ClassPunctuation Class = "punctuation"
)

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the input
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position

	// NewlineBefore is set when a line break (other than a backslash line
	// continuation) separates this token from the previous one.
	NewlineBefore bool
}

// Class returns the broad category of the token.
func (t Token) Class() Class {
	return t.Type.Class()
}

// Is returns true if the token is punctuation with the given text.
func (t Token) Is(punct Type) bool {
	return t.Type == punct
}

// Token types
const (
	EOF     Type = "EOF"
	ILLEGAL Type = "ILLEGAL"
	IDENT   Type = "IDENT"
	NUMBER  Type = "NUMBER"
	STRING  Type = "STRING"

	DOUBLE_COLON    Type = "::"
	PLUS_EQUALS     Type = "+="
	MINUS_EQUALS    Type = "-="
	ASTERISK_EQUALS Type = "*="
	SLASH_EQUALS    Type = "/="
	MOD_EQUALS      Type = "%="
	STRICT_EQ       Type = "==="
	STRICT_NOT_EQ   Type = "!=="
	NOT_EQ          Type = "!="
	EQ              Type = "=="
	GT_GT_GT        Type = ">>>"
	GT_GT           Type = ">>"
	LT_LT           Type = "<<"
	GT_EQUALS       Type = ">="
	LT_EQUALS       Type = "<="
	ARROW           Type = "=>"
	NULLISH         Type = "??"
	AND             Type = "&&"
	OR              Type = "||"
	QUESTION_DOT    Type = "?."
	SPREAD          Type = "..."
	LBRACE          Type = "{"
	RBRACE          Type = "}"
	LPAREN          Type = "("
	RPAREN          Type = ")"
	LBRACKET        Type = "["
	RBRACKET        Type = "]"
	PERIOD          Type = "."
	COLON           Type = ":"
	SEMICOLON       Type = ";"
	COMMA           Type = ","
	LT              Type = "<"
	GT              Type = ">"
	QUESTION        Type = "?"
	TILDE           Type = "~"
	BANG            Type = "!"
	CARET           Type = "^"
	PIPE            Type = "|"
	AMPERSAND       Type = "&"
	MOD             Type = "%"
	SLASH           Type = "/"
	ASTERISK        Type = "*"
	MINUS           Type = "-"
	PLUS            Type = "+"
	ASSIGN          Type = "="
)

// Punctuation lists every punctuation token, longest first, in the order the
// lexer tries to match them.
var Punctuation = []Type{
	DOUBLE_COLON, PLUS_EQUALS, MINUS_EQUALS, ASTERISK_EQUALS, SLASH_EQUALS,
	MOD_EQUALS, STRICT_EQ, STRICT_NOT_EQ, NOT_EQ, EQ, GT_GT_GT, GT_GT, LT_LT,
	GT_EQUALS, LT_EQUALS, ARROW, NULLISH, AND, OR, QUESTION_DOT, SPREAD,
	LBRACE, RBRACE, LPAREN, RPAREN, LBRACKET, RBRACKET, PERIOD, COLON,
	SEMICOLON, COMMA, LT, GT, QUESTION, TILDE, BANG, CARET, PIPE, AMPERSAND,
	MOD, SLASH, ASTERISK, MINUS, PLUS, ASSIGN,
}

// Class returns the broad category of a token type.
func (t Type) Class() Class {
	switch t {
	case IDENT:
		return ClassIdentifier
	case NUMBER, STRING:
		return ClassLiteral
	case EOF, ILLEGAL:
		return ClassInvalid
	default:
		return ClassPunctuation
	}
}

// Words that may never be used as a variable name.
var reserved = map[string]bool{
	"break": true, "do": true, "in": true, "typeof": true, "case": true,
	"else": true, "instanceof": true, "var": true, "catch": true,
	"export": true, "new": true, "void": true, "class": true, "extends": true,
	"return": true, "while": true, "const": true, "finally": true,
	"super": true, "with": true, "continue": true, "for": true,
	"switch": true, "yield": true, "debugger": true, "function": true,
	"this": true, "default": true, "if": true, "throw": true, "delete": true,
	"import": true, "try": true, "enum": true, "await": true,
	"implements": true, "package": true, "protected": true,
	"interface": true, "private": true, "public": true,
}

// IsReserved returns true if the identifier is a reserved word.
func IsReserved(identifier string) bool {
	return reserved[identifier]
}
