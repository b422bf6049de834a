// Package lexer converts expression source code into tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jcormont/expression-runner/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	// The input being lexed
	input string

	// Byte offset of the next character to read
	pos int

	// 0-indexed line number of pos
	line int

	// Byte offset of the start of the current line
	lineStart int

	// Filename used in positions and error messages
	filename string
}

// State is a snapshot of the lexer position that can be restored later.
type State struct {
	pos       int
	line      int
	lineStart int
}

// New creates a Lexer instance for the given input string.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// SetFilename sets the filename reported in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the filename reported in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// SaveState returns a snapshot of the current position.
func (l *Lexer) SaveState() State {
	return State{pos: l.pos, line: l.line, lineStart: l.lineStart}
}

// RestoreState rewinds the lexer to a previously saved position.
func (l *Lexer) RestoreState(s State) {
	l.pos = s.pos
	l.line = s.line
	l.lineStart = s.lineStart
}

// Next returns the next token from the input. At the end of the input an EOF
// token is returned. An error is returned on the first character that does not
// start any valid token.
func (l *Lexer) Next() (token.Token, error) {
	newline := l.skipWhitespace()
	start := l.position()
	if l.pos >= len(l.input) {
		return token.Token{
			Type:          token.EOF,
			StartPosition: start,
			EndPosition:   start,
			NewlineBefore: newline,
		}, nil
	}
	typ, n := l.match()
	if n == 0 {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		tok := token.Token{
			Type:          token.ILLEGAL,
			Literal:       string(r),
			StartPosition: start,
			EndPosition:   start.Advance(size),
			NewlineBefore: newline,
		}
		return tok, fmt.Errorf("Unexpected character at line %d: %c", start.LineNumber(), r)
	}
	literal := l.input[l.pos : l.pos+n]
	l.advance(n)
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   l.position(),
		NewlineBefore: newline,
	}, nil
}

// Tokenize lexes the remaining input, returning all tokens up to and
// including the EOF token.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// GetLineText returns the full text of the line on which the token starts.
func (l *Lexer) GetLineText(tok token.Token) string {
	return LineText(l.input, tok.StartPosition)
}

// LineText returns the line of input containing the given position.
func LineText(input string, pos token.Position) string {
	start := pos.LineStart
	if start > len(input) {
		return ""
	}
	end := strings.IndexByte(input[start:], '\n')
	if end < 0 {
		return strings.TrimRight(input[start:], "\r")
	}
	return strings.TrimRight(input[start:start+end], "\r")
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.filename,
	}
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.lineStart = l.pos + 1
		}
		l.pos++
	}
}

// skipWhitespace consumes whitespace and reports whether it contained a line
// break. A backslash immediately followed by a line break is skipped without
// counting as one.
func (l *Lexer) skipWhitespace() bool {
	newline := false
	for l.pos < len(l.input) {
		rest := l.input[l.pos:]
		switch {
		case strings.HasPrefix(rest, "\\\n"):
			l.advance(2)
		case strings.HasPrefix(rest, "\\\r\n"):
			l.advance(3)
		case rest[0] == '\n':
			newline = true
			l.advance(1)
		case isSpace(rest[0]):
			l.advance(1)
		default:
			r, size := utf8.DecodeRuneInString(rest)
			if r == '\u00a0' || r == '\ufeff' || r == '\u2028' || r == '\u2029' {
				if r == '\u2028' || r == '\u2029' {
					newline = true
				}
				l.pos += size
				continue
			}
			return newline
		}
	}
	return newline
}

// match finds the token at the current position, trying identifiers, then
// literals, then punctuation. It returns a zero length if nothing matches.
func (l *Lexer) match() (token.Type, int) {
	rest := l.input[l.pos:]
	if n := matchIdentifier(rest); n > 0 {
		return token.IDENT, n
	}
	if n := matchHex(rest); n > 0 {
		return token.NUMBER, n
	}
	if n := matchDecimal(rest); n > 0 {
		return token.NUMBER, n
	}
	if n := matchString(rest); n > 0 {
		return token.STRING, n
	}
	for _, p := range token.Punctuation {
		if strings.HasPrefix(rest, string(p)) {
			return p, len(p)
		}
	}
	return token.ILLEGAL, 0
}

func matchIdentifier(s string) int {
	i := 0
	if i < len(s) && s[i] == '@' {
		i++
	}
	if i >= len(s) || !isIdentStart(s[i]) {
		return 0
	}
	i++
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return i
}

func matchHex(s string) int {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0
	}
	i := 2
	for i < len(s) && isHexDigit(s[i]) {
		i++
	}
	if i == 2 {
		return 0
	}
	return i
}

// matchDecimal matches digits (with optional underscore separators), an
// optional fraction and an optional exponent. A leading zero may not be
// followed by another digit. A number may also start with its decimal point.
func matchDecimal(s string) int {
	i := 0
	switch {
	case len(s) > 1 && s[0] == '.' && isDigit(s[1]):
		i = 1 + countDigits(s[1:])
		return i + matchExponent(s[i:])
	case len(s) > 0 && s[0] == '0':
		if len(s) > 1 && (isDigit(s[1]) || s[1] == '_') {
			return 0
		}
		i = 1
	case len(s) > 0 && isDigit(s[0]):
		for i < len(s) && (isDigit(s[i]) || s[i] == '_') {
			i++
		}
	default:
		return 0
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i += 1 + countDigits(s[i+1:])
	}
	return i + matchExponent(s[i:])
}

func matchExponent(s string) int {
	if len(s) < 2 || (s[0] != 'e' && s[0] != 'E') {
		return 0
	}
	i := 1
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	n := countDigits(s[i:])
	if n == 0 {
		return 0
	}
	return i + n
}

func countDigits(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

// matchString matches a complete single or double quoted string. Strings with
// unsupported escape sequences or no closing quote do not match.
func matchString(s string) int {
	if len(s) == 0 || (s[0] != '"' && s[0] != '\'') {
		return 0
	}
	quote := s[0]
	i := 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == quote:
			return i + 1
		case c == '\\':
			if i+1 >= len(s) {
				return 0
			}
			switch s[i+1] {
			case '"', '\'', '\\', 'b', 'f', 'n', 'r', 't', '/':
				i += 2
			case 'u':
				if i+6 > len(s) {
					return 0
				}
				for _, h := range []byte(s[i+2 : i+6]) {
					if !isHexDigit(h) {
						return 0
					}
				}
				i += 6
			default:
				return 0
			}
		default:
			i++
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isIdentStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c == '$'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
