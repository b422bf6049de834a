package ir

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jcormont/expression-runner/op"
)

// Node is one element of the IR tree: an instruction or a resolve list.
type Node = []any

// MaxDepth limits the nesting of decoded IR.
const MaxDepth = 2000

// New returns an instruction node.
func New(code op.Code, operands ...any) Node {
	n := make(Node, 0, len(operands)+1)
	n = append(n, code)
	return append(n, operands...)
}

// Opcode returns the opcode of an instruction node. Resolve lists with an
// elided opcode report op.Resolve.
func Opcode(n Node) (op.Code, bool) {
	if len(n) == 0 {
		return op.Nop, false
	}
	switch first := n[0].(type) {
	case op.Code:
		return first, true
	case string, []any:
		return op.Resolve, true
	}
	return op.Nop, false
}

// IsResolve returns true for resolve lists, with or without the explicit
// opcode.
func IsResolve(n Node) bool {
	code, ok := Opcode(n)
	return ok && code == op.Resolve
}

// Operands returns the elements that follow the opcode. For a resolve list
// with an elided opcode, this is the whole list.
func Operands(n Node) []any {
	if len(n) == 0 {
		return nil
	}
	if _, ok := n[0].(op.Code); ok {
		return n[1:]
	}
	return n
}

// String returns the compact JSON form of n.
func String(n Node) string {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Sprint(n)
	}
	return string(data)
}

// Normalize converts a program decoded from JSON or CBOR, or assembled by
// hand, into the in-memory form: opcodes become op.Code and all other
// numbers become float64. The root must be an expression list. Unknown
// opcodes, opcode 0, maps and operand counts outside an opcode's limits are
// rejected.
func Normalize(v any) (Node, error) {
	root, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("ir: program must be a list, got %T", v)
	}
	n, err := normalizeList(root, 0)
	if err != nil {
		return nil, err
	}
	if code, ok := n[0].(op.Code); !ok || code != op.Expression {
		return nil, fmt.Errorf("ir: program must start with opcode %d", op.Expression)
	}
	return n, nil
}

func normalizeList(list []any, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("ir: maximum nesting depth exceeded")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("ir: empty node")
	}
	out := make(Node, len(list))
	for i, item := range list {
		if i == 0 {
			if n, ok := toNumber(item); ok {
				code, err := toOpcode(n)
				if err != nil {
					return nil, err
				}
				out[0] = code
				continue
			}
			if _, ok := item.(bool); ok || item == nil {
				return nil, fmt.Errorf("ir: invalid node head %v", item)
			}
		}
		v, err := normalizeValue(item, depth)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	if code, ok := out[0].(op.Code); ok {
		info := op.GetInfo(code)
		count := len(out) - 1
		if count < info.MinOperands || (info.MaxOperands >= 0 && count > info.MaxOperands) {
			return nil, fmt.Errorf("ir: %s has %d operands", code, count)
		}
	}
	return out, nil
}

func normalizeValue(v any, depth int) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case []any:
		return normalizeList(v, depth+1)
	case op.Code:
		return float64(v), nil
	}
	if n, ok := toNumber(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("ir: unsupported value of type %T", v)
}

func toOpcode(n float64) (op.Code, error) {
	if n != math.Trunc(n) || n < 0 || n > math.MaxUint8 || !op.Code(n).IsValid() {
		return op.Nop, fmt.Errorf("ir: invalid opcode %v", n)
	}
	return op.Code(n), nil
}

func toNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case op.Code:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
