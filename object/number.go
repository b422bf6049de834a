package object

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Number wraps a float64. All numbers are IEEE 754 doubles.
type Number struct {
	value float64
}

var (
	zero = &Number{value: 0}
	one  = &Number{value: 1}
)

// NewNumber returns a Number holding value.
func NewNumber(value float64) *Number {
	switch value {
	case 0:
		if !math.Signbit(value) {
			return zero
		}
	case 1:
		return one
	}
	return &Number{value: value}
}

func (n *Number) Type() Type      { return NUMBER }
func (n *Number) Value() float64  { return n.value }
func (n *Number) Inspect() string { return FormatNumber(n.value) }
func (n *Number) String() string  { return n.Inspect() }
func (n *Number) Interface() any  { return n.value }
func (n *Number) IsTruthy() bool  { return n.value != 0 && !math.IsNaN(n.value) }
func (n *Number) SetAttr(name string, value Object) error {
	return readOnlyError(n, name)
}

// Equals compares numbers by value. NaN is not equal to itself and 0
// equals -0.
func (n *Number) Equals(other Object) bool {
	o, ok := other.(*Number)
	return ok && o.value == n.value
}

func (n *Number) GetAttr(name string) (Object, bool) {
	return numberAttrs.GetAttr(n, name)
}

var numberAttrs = NewAttrRegistry[*Number]("number")

func init() {
	numberAttrs.Define("toFixed").
		Doc("Format with a fixed number of decimals").
		OptionalArg("digits").
		Returns("string").
		Impl(func(n *Number, ctx context.Context, args ...Object) (Object, error) {
			digits := ToIntegerOrInfinity(args[0])
			if digits < 0 || digits > 100 {
				return nil, fmt.Errorf("toFixed() digits argument must be between 0 and 100")
			}
			return NewString(ToFixed(n.value, int(digits))), nil
		})
}

// ToFixed formats f with the given number of decimals. Ties are rounded
// away from zero based on the exact binary value of f.
func ToFixed(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	x := new(big.Float).SetPrec(4096).SetFloat64(f)
	x.Mul(x, new(big.Float).SetPrec(4096).SetInt(scale))
	n, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(4096).Sub(x, new(big.Float).SetPrec(4096).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	s := n.String()
	if digits > 0 {
		if len(s) <= digits {
			s = strings.Repeat("0", digits-len(s)+1) + s
		}
		s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	}
	return sign + s
}
