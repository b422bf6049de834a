package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserved(t *testing.T) {
	for _, word := range []string{"if", "else", "typeof", "in", "this", "function", "await"} {
		require.True(t, IsReserved(word), word)
	}
	for _, word := range []string{"true", "null", "undefined", "If", "a", "str"} {
		require.False(t, IsReserved(word), word)
	}
}

func TestPosition(t *testing.T) {
	tok := Token{
		Type:    IDENT,
		Literal: "foo",
		StartPosition: Position{
			Line:   2,
			Column: 0,
		},
	}
	// Switches to 1-indexed
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, 1, tok.StartPosition.ColumnNumber())
	require.Equal(t, 4, tok.StartPosition.Advance(3).ColumnNumber())
}

func TestClass(t *testing.T) {
	tests := []struct {
		typ      Type
		expected Class
	}{
		{IDENT, ClassIdentifier},
		{NUMBER, ClassLiteral},
		{STRING, ClassLiteral},
		{ARROW, ClassPunctuation},
		{DOUBLE_COLON, ClassPunctuation},
		{ILLEGAL, ClassInvalid},
		{EOF, ClassInvalid},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.typ.Class(), string(tt.typ))
	}
}

func TestPunctuationLongestFirst(t *testing.T) {
	// Every multi-character token must be listed before any of its prefixes.
	seen := map[Type]int{}
	for i, p := range Punctuation {
		seen[p] = i
	}
	for _, p := range Punctuation {
		s := string(p)
		for n := 1; n < len(s); n++ {
			if idx, ok := seen[Type(s[:n])]; ok {
				require.Less(t, seen[p], idx, "%s listed after %s", s, s[:n])
			}
		}
	}
}
