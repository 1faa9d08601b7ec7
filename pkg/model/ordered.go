package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// Discovery order of entities and members drives output ordering, so every
// keyed collection in the model is an OrderedMap.
//
// The zero value is an empty map ready to use.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

// Set stores v under key. A new key is appended; an existing key keeps
// its position.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Delete removes key, preserving the order of the remaining keys.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Get returns the value stored under key.
func (m OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (m OrderedMap[V]) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Len returns the number of entries.
func (m OrderedMap[V]) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m OrderedMap[V]) Keys() []string { return slices.Clone(m.keys) }

// All iterates entries in insertion order.
func (m OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Values returns the values in insertion order.
func (m OrderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

// clone copies the map structure. Values are copied with cp.
func (m OrderedMap[V]) clone(cp func(V) V) OrderedMap[V] {
	var out OrderedMap[V]
	for _, k := range m.keys {
		out.Set(k, cp(m.vals[k]))
	}
	return out
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	*m = OrderedMap[V]{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// Names is an ordered set of entity names. Duplicates are dropped and the
// first-seen order is kept.
type Names []string

// Add appends name unless present and reports whether it was added.
func (n *Names) Add(name string) bool {
	if n.Has(name) {
		return false
	}
	*n = append(*n, name)
	return true
}

// Has reports whether name is in the set.
func (n Names) Has(name string) bool {
	return slices.Contains(n, name)
}

// Union adds every name of other, in other's order.
func (n *Names) Union(other Names) {
	for _, name := range slices.Clone(other) {
		n.Add(name)
	}
}

// MarshalJSON encodes an empty set as [] rather than null.
func (n Names) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(n))
}
