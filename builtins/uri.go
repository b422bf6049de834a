package builtins

import (
	"strings"
)

// uriReserved holds the characters that encodeURI leaves as they are, in
// addition to the unreserved ones.
const uriReserved = ";/?:@&=+$,#"

const upperHex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// encodeURI percent-encodes the UTF-8 bytes of s, except for unreserved
// characters and the characters in keep.
func encodeURI(s, keep string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}
