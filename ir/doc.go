// Package ir provides the intermediate representation of compiled
// expressions.
//
// The IR is the output of compilation and the input of evaluation. It is
// plain data: nested lists whose first element is an opcode, followed by
// operands that are either nested lists or scalars (float64, string, bool
// and nil). Because it contains nothing else, the IR can be stored as JSON
// or CBOR and loaded again by a later version of this module.
//
// # Shapes
//
//	[2, stmt, stmt, ...]          statement list or comma sequence
//	[1, target, "+=", value]      assignment to a resolve node
//	[3, "a", "b", body]           arrow function
//	[4, cond, then, else]         ternary, and if/else statements
//	[5, x, "+", y]                binary operators
//	[6, "!", x]                   unary operators
//	[7, callee, arg, ...]         call
//	[8, "key", value, [13, x]]    object literal
//	[9, x, [13, y], [10]]         array literal
//	[10]                          undefined
//	[11, base, step, ...]         optional chain
//	["name", step, ...]           variable and property read
//
// A list whose first element is a string or another list is a property
// read (resolve) with the opcode left out. A string base names a variable;
// a list base is evaluated. Steps are property names (strings), index
// literals (numbers) or nodes evaluated to a property key.
//
// In Go, a decoded or compiled node is a []any whose opcodes are of type
// [op.Code] and whose numbers are float64. Use [Normalize] to bring values
// built by other means into this form.
package ir
