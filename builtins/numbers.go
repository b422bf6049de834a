package builtins

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jcormont/expression-runner/object"
)

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

// ParseFloat parses the longest prefix of a string that is a decimal
// number, ignoring leading whitespace.
func ParseFloat(ctx context.Context, args ...object.Object) (object.Object, error) {
	s := trimLeadingSpace(object.ToString(arg(args, 0)))
	sign := 1.0
	rest := s
	if strings.HasPrefix(rest, "-") {
		sign, rest = -1, rest[1:]
	} else if strings.HasPrefix(rest, "+") {
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		return number(math.Inf(int(sign))), nil
	}
	end := decimalPrefix(rest)
	if end == 0 {
		return number(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil && !isRangeError(err) {
		return number(math.NaN()), nil
	}
	return number(sign * f), nil
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// decimalPrefix returns the length of the longest prefix of s of the form
// digits [. digits] [e [sign] digits], or 0 if s has no leading digits.
func decimalPrefix(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseInt parses the longest prefix of a string that is an integer in the
// given radix. A radix of 0 or undefined means 10, or 16 if the string
// starts with 0x.
func ParseInt(ctx context.Context, args ...object.Object) (object.Object, error) {
	s := trimLeadingSpace(object.ToString(arg(args, 0)))
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	radix := int(object.ToInt32(arg(args, 1)))
	stripPrefix := true
	if radix != 0 {
		if radix < 2 || radix > 36 {
			return number(math.NaN()), nil
		}
		stripPrefix = radix == 16
	} else {
		radix = 10
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s, radix = s[2:], 16
	}
	result := 0.0
	n := 0
	for ; n < len(s); n++ {
		d := digitValue(s[n])
		if d >= radix {
			break
		}
		result = result*float64(radix) + float64(d)
	}
	if n == 0 {
		return number(math.NaN()), nil
	}
	return number(sign * result), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}
