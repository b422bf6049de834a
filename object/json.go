package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ToJSON encodes obj the way JSON.stringify does: object keys keep their
// order, undefined and functions are left out of objects and become null in
// arrays, non-finite numbers become null and dates become ISO strings. The
// second result is false if obj itself has no JSON representation.
func ToJSON(obj Object, indent string) (string, bool, error) {
	enc := &jsonEncoder{indent: indent, seen: map[Object]bool{}}
	ok, err := enc.encode(obj, 0)
	if err != nil || !ok {
		return "", false, err
	}
	return enc.buf.String(), true, nil
}

type jsonEncoder struct {
	buf    bytes.Buffer
	indent string
	seen   map[Object]bool
}

func jsonSkipped(obj Object) bool {
	switch obj.(type) {
	case nil, *UndefinedType, *Builtin, *Closure:
		return true
	}
	return false
}

func (e *jsonEncoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.indent, depth))
}

func (e *jsonEncoder) encode(obj Object, depth int) (bool, error) {
	if jsonSkipped(obj) {
		return false, nil
	}
	switch obj := obj.(type) {
	case *NullType:
		e.buf.WriteString("null")
	case *Bool:
		e.buf.WriteString(obj.Inspect())
	case *Number:
		if math.IsNaN(obj.value) || math.IsInf(obj.value, 0) {
			e.buf.WriteString("null")
		} else {
			e.buf.WriteString(FormatNumber(obj.value))
		}
	case *String:
		e.writeString(obj.value)
	case *Time:
		e.writeString(obj.ISOString())
	case *List:
		if e.seen[obj] {
			return false, fmt.Errorf("Converting circular structure to JSON")
		}
		e.seen[obj] = true
		defer delete(e.seen, obj)
		e.buf.WriteByte('[')
		for i, item := range obj.items {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			ok, err := e.encode(item, depth+1)
			if err != nil {
				return false, err
			}
			if !ok {
				e.buf.WriteString("null")
			}
		}
		if len(obj.items) > 0 {
			e.newline(depth)
		}
		e.buf.WriteByte(']')
	case *Map:
		if e.seen[obj] {
			return false, fmt.Errorf("Converting circular structure to JSON")
		}
		e.seen[obj] = true
		defer delete(e.seen, obj)
		e.buf.WriteByte('{')
		n := 0
		for _, k := range obj.keys {
			v := obj.values[k]
			if jsonSkipped(v) {
				continue
			}
			if n > 0 {
				e.buf.WriteByte(',')
			}
			n++
			e.newline(depth + 1)
			e.writeString(k)
			e.buf.WriteByte(':')
			if e.indent != "" {
				e.buf.WriteByte(' ')
			}
			if _, err := e.encode(v, depth+1); err != nil {
				return false, err
			}
		}
		if n > 0 {
			e.newline(depth)
		}
		e.buf.WriteByte('}')
	default:
		e.buf.WriteString("{}")
	}
	return true, nil
}

func (e *jsonEncoder) writeString(s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	e.buf.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}

// FromJSON decodes JSON text. Object keys keep the order of the text.
func FromJSON(data string) (Object, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	obj, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return obj, nil
}

func decodeJSON(dec *json.Decoder) (Object, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of JSON input")
		}
		return nil, err
	}
	switch tok := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(tok), nil
	case string:
		return NewString(tok), nil
	case json.Number:
		f, err := strconv.ParseFloat(tok.String(), 64)
		if err != nil && !math.IsInf(f, 0) {
			return nil, err
		}
		return NewNumber(f), nil
	case json.Delim:
		switch tok {
		case '[':
			items := []Object{}
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewList(items), nil
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				value, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
