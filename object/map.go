package object

import (
	"slices"
)

// Map is a plain object: string keys in insertion order mapped to values.
// Only own keys are readable, so there are no inherited properties.
type Map struct {
	keys   []string
	values map[string]Object
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: map[string]Object{}}
}

// NewMapFrom returns a Map holding the entries of m, with keys sorted.
func NewMapFrom(m map[string]Object) *Map {
	result := &Map{values: make(map[string]Object, len(m)), keys: make([]string, 0, len(m))}
	for k, v := range m {
		result.keys = append(result.keys, k)
		result.values[k] = v
	}
	slices.Sort(result.keys)
	return result
}

func (m *Map) Type() Type               { return MAP }
func (m *Map) Inspect() string          { return "[object Object]" }
func (m *Map) String() string           { return m.Inspect() }
func (m *Map) IsTruthy() bool           { return true }
func (m *Map) Equals(other Object) bool { return m == other }
func (m *Map) Len() int                 { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return slices.Clone(m.keys)
}

// Get returns the value of an own key.
func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has returns true if key is an own key of the map.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores value under key. New keys are appended to the key order.
func (m *Map) Set(key string, value Object) {
	if m.values == nil {
		m.values = map[string]Object{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key from the map.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Copy returns a shallow copy of the map.
func (m *Map) Copy() *Map {
	out := &Map{keys: slices.Clone(m.keys), values: make(map[string]Object, len(m.values))}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Merge copies the entries of other into m, in the key order of other.
func (m *Map) Merge(other *Map) {
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}

// Entries yields the entries in key order.
func (m *Map) Entries() func(yield func(string, Object) bool) {
	return func(yield func(string, Object) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

func (m *Map) GetAttr(name string) (Object, bool) {
	return m.Get(name)
}

func (m *Map) SetAttr(name string, value Object) error {
	m.Set(name, value)
	return nil
}

func (m *Map) Interface() any {
	return m.toGo(map[Object]bool{})
}

func (m *Map) toGo(active map[Object]bool) any {
	if active[m] {
		return nil
	}
	active[m] = true
	defer delete(active, m)
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = toGo(m.values[k], active)
	}
	return out
}
