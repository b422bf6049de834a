// Package op defines the opcodes of the expression IR and the operator
// tables shared by the parser, the compiler and the evaluator.
package op

// Code is an integer opcode that tags an IR node. The numbering is part of
// the persisted IR format and must never change.
type Code uint8

const (
	Nop           Code = 0 // never emitted
	Assign        Code = 1
	Expression    Code = 2
	ArrowFunc     Code = 3
	Ternary       Code = 4
	Calc          Code = 5
	Unary         Code = 6
	Call          Code = 7
	Object        Code = 8
	Array         Code = 9
	Undef         Code = 10
	OptionalChain Code = 11
	Resolve       Code = 12
	Spread        Code = 13
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// MinOperands is the minimum number of elements following the opcode.
	MinOperands int
	// MaxOperands is the maximum number of elements following the opcode,
	// or -1 if unbounded.
	MaxOperands int
}

var infos = make([]Info, Spread+1)

func init() {
	ops := []Info{
		{Nop, "NOP", 0, 0},
		{Assign, "ASSIGN", 3, 3},
		{Expression, "EXPRESSION", 0, -1},
		{ArrowFunc, "ARROW_FUNC", 1, -1},
		{Ternary, "TERNARY", 3, 3},
		{Calc, "CALC", 3, -1},
		{Unary, "UNARY", 2, 2},
		{Call, "CALL", 1, -1},
		{Object, "OBJECT", 0, -1},
		{Array, "ARRAY", 0, -1},
		{Undef, "UNDEF", 0, 0},
		{OptionalChain, "OPTIONAL_CHAIN", 1, -1},
		{Resolve, "RESOLVE", 1, -1},
		{Spread, "SPREAD", 1, 1},
	}
	for _, o := range ops {
		infos[o.Code] = o
	}
}

// GetInfo returns information about the given opcode. Unknown opcodes
// return an Info with an empty name.
func GetInfo(code Code) Info {
	if int(code) >= len(infos) {
		return Info{Code: code}
	}
	return infos[code]
}

// IsValid returns true if code is a known opcode that may appear in IR.
func (c Code) IsValid() bool {
	return c != Nop && GetInfo(c).Name != ""
}

// String returns the opcode name.
func (c Code) String() string {
	if name := GetInfo(c).Name; name != "" {
		return name
	}
	return "UNKNOWN"
}
