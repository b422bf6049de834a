package op

// Binary operator precedence levels, lowest first. All binary operators are
// left associative.
const (
	PrecNullish = iota + 1
	PrecOr
	PrecAnd
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecEquality
	PrecRelational
	PrecShift
	PrecAdditive
	PrecMultiplicative
)

var binaryPrecedence = map[string]int{
	"??":  PrecNullish,
	"||":  PrecOr,
	"&&":  PrecAnd,
	"|":   PrecBitOr,
	"^":   PrecBitXor,
	"&":   PrecBitAnd,
	"==":  PrecEquality,
	"!=":  PrecEquality,
	"===": PrecEquality,
	"!==": PrecEquality,
	"<":   PrecRelational,
	"<=":  PrecRelational,
	">":   PrecRelational,
	">=":  PrecRelational,
	"in":  PrecRelational,
	"<<":  PrecShift,
	">>":  PrecShift,
	">>>": PrecShift,
	"+":   PrecAdditive,
	"-":   PrecAdditive,
	"*":   PrecMultiplicative,
	"/":   PrecMultiplicative,
	"%":   PrecMultiplicative,
}

// BinaryPrecedence returns the precedence level of a binary operator, and
// false if the operator is unknown.
func BinaryPrecedence(operator string) (int, bool) {
	prec, ok := binaryPrecedence[operator]
	return prec, ok
}

// IsShortCircuit returns true for operators whose right operand is only
// evaluated depending on the value of the left operand.
func IsShortCircuit(operator string) bool {
	return operator == "&&" || operator == "||" || operator == "??"
}

var unaryOperators = map[string]bool{
	"+": true, "-": true, "~": true, "!": true, "typeof": true,
}

// IsUnary returns true if operator is a prefix operator.
func IsUnary(operator string) bool {
	return unaryOperators[operator]
}

var assignOperators = map[string]string{
	"=":  "",
	"+=": "+",
	"-=": "-",
	"*=": "*",
	"/=": "/",
	"%=": "%",
}

// AssignOperator returns the binary operator applied by a compound
// assignment ("+" for "+="), an empty string for plain assignment, and false
// if operator is not an assignment operator.
func AssignOperator(operator string) (string, bool) {
	binary, ok := assignOperators[operator]
	return binary, ok
}
