package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Compile errors (lexer and parser)
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Compile errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected character
	E1002 ErrorCode = "E1002" // Unexpected token
	E1003 ErrorCode = "E1003" // Empty expression
	E1004 ErrorCode = "E1004" // Invalid assignment target
	E1005 ErrorCode = "E1005" // Assignment not allowed
	E1006 ErrorCode = "E1006" // Invalid function argument list
	E1007 ErrorCode = "E1007" // Unsupported arrow function body
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded
	E1010 ErrorCode = "E1010" // Syntax not allowed
	E1011 ErrorCode = "E1011" // Unknown name

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Undefined variable
	E3002 ErrorCode = "E3002" // Property read through undefined or null
	E3003 ErrorCode = "E3003" // Unsafe property write
	E3004 ErrorCode = "E3004" // Not a function
	E3005 ErrorCode = "E3005" // Native function overwrite
	E3006 ErrorCode = "E3006" // Host function failure
	E3007 ErrorCode = "E3007" // Call depth exceeded
	E3008 ErrorCode = "E3008" // Evaluation cancelled
	E3009 ErrorCode = "E3009" // Invalid code
	E3010 ErrorCode = "E3010" // Invalid spread
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected character",
	E1002: "unexpected token",
	E1003: "empty expression",
	E1004: "invalid assignment target",
	E1005: "assignment not allowed",
	E1006: "invalid function argument list",
	E1007: "unsupported arrow function body",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",
	E1010: "syntax not allowed",
	E1011: "unknown name",

	E3001: "undefined variable",
	E3002: "property read through undefined or null",
	E3003: "unsafe property write",
	E3004: "not a function",
	E3005: "native function overwrite",
	E3006: "host function failure",
	E3007: "call depth exceeded",
	E3008: "evaluation cancelled",
	E3009: "invalid code",
	E3010: "invalid spread",
}

// Description returns the short description of the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// IsCompileError returns true if this is a compile error (E1xxx).
func (c ErrorCode) IsCompileError() bool {
	return len(c) == 5 && c[1] == '1'
}

// IsRuntimeError returns true if this is a runtime error (E3xxx).
func (c ErrorCode) IsRuntimeError() bool {
	return len(c) == 5 && c[1] == '3'
}
