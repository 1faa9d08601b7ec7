package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/layout"
)

// =============================================================================
// Layout - Serialized Placed Diagram
// =============================================================================

// Layout is the serialized form of a placed diagram: every entity with its
// frame and member text, and the resolved relations. Renderers consume it
// without access to the structural model.
type Layout struct {
	Strategy  string      `json:"strategy"`
	Margin    float64     `json:"margin"`
	Bounds    layout.Rect `json:"bounds"`
	Entities  []Entity    `json:"entities"`
	Relations []Relation  `json:"relations"`
}

// Entity is one placed class or enum box. X and Y are the top-left corner.
type Entity struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Stub   bool    `json:"stub,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Level  int     `json:"level"`
	Orphan bool    `json:"orphan,omitempty"`

	Parents    []string `json:"parents,omitempty"`
	Attributes []Member `json:"attributes"`
	Operations []Member `json:"operations"`
}

// IsEnum reports whether e is an enum box.
func (e *Entity) IsEnum() bool { return e.Kind == KindEnum }

// Header returns the title lines of the box.
func (e *Entity) Header() []string {
	if e.IsEnum() {
		return []string{EnumStereotype, e.Name}
	}
	return []string{e.Name}
}

// Entity returns the entity called name.
func (l *Layout) Entity(name string) (*Entity, bool) {
	for i := range l.Entities {
		if l.Entities[i].Name == name {
			return &l.Entities[i], true
		}
	}
	return nil, false
}

// Validate checks that entity names are unique and every relation joins
// two entities of the layout.
func (l *Layout) Validate() error {
	seen := make(map[string]bool, len(l.Entities))
	for _, e := range l.Entities {
		if e.Name == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "layout entity without a name")
		}
		if e.Kind != KindClass && e.Kind != KindEnum {
			return errors.New(errors.ErrCodeInvalidFormat, "entity %s has unknown kind %q", e.Name, e.Kind)
		}
		if seen[e.Name] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate layout entity %s", e.Name)
		}
		seen[e.Name] = true
	}
	for _, r := range l.Relations {
		if !seen[r.Source] || !seen[r.Target] {
			return errors.New(errors.ErrCodeInvalidFormat, "relation %s -> %s references an unknown entity", r.Source, r.Target)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes and validates a Layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// WriteLayout writes l as indented JSON to w.
func WriteLayout(l *Layout, w io.Writer) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteLayoutFile writes l to a JSON file.
func WriteLayoutFile(l *Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
