package lexer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ParseNumber converts the text of a NUMBER token to its value.
func ParseNumber(text string) (float64, error) {
	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		if v, err := strconv.ParseUint(text[2:], 16, 64); err == nil {
			return float64(v), nil
		}
		i, ok := new(big.Int).SetString(text[2:], 16)
		if !ok {
			return 0, fmt.Errorf("invalid hexadecimal number: %s", text)
		}
		f, _ := new(big.Float).SetInt(i).Float64()
		return f, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		// Out of range values still parse to +/-Inf, like any other
		// double precision literal.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v, nil
		}
		return 0, fmt.Errorf("invalid number: %s", text)
	}
	return v, nil
}

// Unquote converts the text of a STRING token, including its quotes, to the
// string value it represents.
func Unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != text[len(text)-1] || (text[0] != '"' && text[0] != '\'') {
		return "", fmt.Errorf("invalid string literal: %s", text)
	}
	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var b strings.Builder
	var units []uint16
	flush := func() {
		if len(units) > 0 {
			b.WriteString(string(utf16.Decode(units)))
			units = units[:0]
		}
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			flush()
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(body) {
			return "", fmt.Errorf("invalid escape in string literal: %s", text)
		}
		i++
		if body[i] == 'u' {
			if i+5 > len(body) {
				return "", fmt.Errorf("invalid escape in string literal: %s", text)
			}
			v, err := strconv.ParseUint(body[i+1:i+5], 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid escape in string literal: %s", text)
			}
			// Surrogate pairs arrive as two escapes; collect UTF-16 units
			// until the next non-escape so they combine.
			units = append(units, uint16(v))
			i += 4
			continue
		}
		flush()
		switch body[i] {
		case '"', '\'', '\\', '/':
			b.WriteByte(body[i])
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			return "", fmt.Errorf("invalid escape in string literal: %s", text)
		}
	}
	flush()
	return b.String(), nil
}
