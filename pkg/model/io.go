package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON encodes m as indented JSON and writes it to w.
// Entity names are the object keys; the output can be re-read with [ReadJSON].
func WriteJSON(m *Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes m to a JSON file at path.
func ExportJSON(m *Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// ReadJSON decodes a model written by [WriteJSON]. Key order is preserved
// and each entity's Name is restored from its key.
func ReadJSON(r io.Reader) (*Model, error) {
	m := New()
	if err := json.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for name, c := range m.Classes.All() {
		if c == nil {
			return nil, fmt.Errorf("class %s: null entry", name)
		}
		c.Name = name
	}
	for name, e := range m.Enums.All() {
		if e == nil {
			return nil, fmt.Errorf("enum %s: null entry", name)
		}
		e.Name = name
	}
	for name, f := range m.Functions.All() {
		if f == nil {
			return nil, fmt.Errorf("function %s: null entry", name)
		}
		f.Name = name
	}
	for name, g := range m.Globals.All() {
		if g == nil {
			return nil, fmt.Errorf("global %s: null entry", name)
		}
		g.Name = name
	}
	return m, nil
}

// ImportJSON reads a model from the JSON file at path.
func ImportJSON(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
