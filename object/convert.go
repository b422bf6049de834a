package object

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)$`)

// ToNumber converts obj to a number the way unary plus does.
func ToNumber(obj Object) float64 {
	switch obj := obj.(type) {
	case *Number:
		return obj.value
	case *Bool:
		if obj.value {
			return 1
		}
		return 0
	case *NullType:
		return 0
	case *String:
		return StringToNumber(obj.value)
	case *Time:
		return float64(obj.value.UnixMilli())
	case *List:
		return StringToNumber(obj.Inspect())
	}
	return math.NaN()
}

// StringToNumber parses s as a numeric literal with optional surrounding
// whitespace. Empty strings are 0 and anything unparseable is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalPattern.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// ToString converts obj to a string the way string concatenation does.
func ToString(obj Object) string {
	if obj == nil {
		return "undefined"
	}
	return obj.Inspect()
}

// ToPrimitive converts arrays, objects and dates to strings, and returns
// other values unchanged.
func ToPrimitive(obj Object) Object {
	switch obj.(type) {
	case *List, *Map, *Time, *Regexp, *Opaque, *Builtin, *Closure:
		return NewString(obj.Inspect())
	}
	return obj
}

// ToInt32 converts obj to a signed 32 bit integer, as used by the bitwise
// operators.
func ToInt32(obj Object) int32 {
	return int32(ToUint32(obj))
}

// ToUint32 converts obj to an unsigned 32 bit integer.
func ToUint32(obj Object) uint32 {
	f := ToNumber(obj)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// ToIntegerOrInfinity truncates the numeric value of obj. NaN becomes 0.
func ToIntegerOrInfinity(obj Object) float64 {
	f := ToNumber(obj)
	if math.IsNaN(f) {
		return 0
	}
	return math.Trunc(f)
}

// FormatNumber returns the shortest string that identifies f, using the
// same layout rules as JavaScript: plain digits for magnitudes from 1e-7 up
// to 1e21 and exponent notation outside that range.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	// Shortest round trip digits and exponent: d.ddde±x
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expText, _ := strings.Cut(s, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(expText)
	k := len(digits)
	n := exp + 1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		e := n - 1
		expSign := "+"
		if e < 0 {
			expSign = "-"
			e = -e
		}
		out = digits[:1]
		if k > 1 {
			out += "." + digits[1:]
		}
		out += "e" + expSign + strconv.Itoa(e)
	}
	return sign + out
}

// IsArrayIndex returns the index named by a property name such as "0" or
// "12", and false for any other name.
func IsArrayIndex(name string) (int, bool) {
	if name == "" || len(name) > 10 || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}

// PropertyKey converts a computed key to the property name it refers to.
func PropertyKey(key Object) string {
	if n, ok := key.(*Number); ok {
		return FormatNumber(n.value)
	}
	return ToString(key)
}

var nan = math.NaN()

func isNaN(f float64) bool {
	return f != f
}
