package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

func TestSplitFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{"svg", []string{"svg"}},
		{"svg,tex,png", []string{"svg", "tex", "png"}},
	}
	for _, tt := range tests {
		if got := splitFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "app/main.py", "app/main"},
		{"", "model.layout.json", "model.layout"},
		{"out/diagram", "main.py", "out/diagram"},
		{"out/diagram.svg", "main.py", "out/diagram"},
		{"out/diagram.tex", "main.py", "out/diagram"},
		{"out/diagram.v2", "main.py", "out/diagram.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		output  string
		want    []string
	}{
		{"single default", []string{"svg"}, "", []string{"main.svg"}},
		{"single named", []string{"tex"}, "figure.tikz", []string{"figure.tikz"}},
		{"several", []string{"svg", "tex", "json"}, "", []string{"main.svg", "main.tex", "main.json"}},
		{"several with base", []string{"svg", "pdf"}, "out/d.svg", []string{"out/d.svg", "out/d.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.formats, tt.output, "main.py"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyInput(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.py":     "class A:\n    pass\n",
		"model.json":  `{"classes": {}, "enums": {}}`,
		"layout.json": `{"strategy": "rows", "entities": []}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		path string
		want inputKind
	}{
		{dir, inputDir},
		{filepath.Join(dir, "main.py"), inputSource},
		{filepath.Join(dir, "model.json"), inputModel},
		{filepath.Join(dir, "layout.json"), inputLayout},
	}
	for _, tt := range tests {
		in, err := classifyInput(tt.path)
		if err != nil {
			t.Errorf("classifyInput(%s): %v", tt.path, err)
			continue
		}
		if in.kind != tt.want {
			t.Errorf("classifyInput(%s) = %d, want %d", filepath.Base(tt.path), in.kind, tt.want)
		}
	}
}

func TestLayoutPath(t *testing.T) {
	if got := layoutPath("build/model.json"); got != "build/model.layout.json" {
		t.Errorf("layoutPath = %q", got)
	}
}

func TestOutputPathsKeepInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		formats []string
		want    []string
	}{
		{"model json", "model.json", []string{"json", "svg"}, []string{"model.layout.json", "model.svg"}},
		{"layout json", "out/layout.json", []string{"json"}, []string{"out/layout.layout.json"}},
		{"source", "main.py", []string{"json"}, []string{"main.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.formats, "", tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteArtifactsRefusesInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "model.json")
	if err := os.WriteFile(input, []byte(`{"classes": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	artifacts := map[string][]byte{"json": []byte(`{"entities": []}`)}
	_, err := writeArtifacts(artifacts, []string{"json"}, input, input)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	data, err := os.ReadFile(input)
	if err != nil || string(data) != `{"classes": {}}` {
		t.Errorf("input changed: %s %v", data, err)
	}
}

type failingClose struct{ bytes.Buffer }

func (*failingClose) Close() error { return fmt.Errorf("disk full") }

func TestWriteOutputReportsClose(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	createFile = func(string) (io.WriteCloser, error) { return &failingClose{}, nil }

	err := writeOutput(filepath.Join(t.TempDir(), "d.svg"), []byte("<svg/>"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v, want the close error", err)
	}
}
