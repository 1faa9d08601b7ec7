// Package languages provides the complete list of supported front ends.
//
// This package exists to break import cycles: the individual front-end
// packages import pkg/extract, so pkg/extract cannot import them back.
// Consumers that need the full list import this package instead.
package languages

import (
	"github.com/diagramtool/diagramtool/pkg/extract"
	"github.com/diagramtool/diagramtool/pkg/extract/python"
)

// All is the canonical list of supported input grammars.
var All = []*extract.Language{
	python.Language,
}

// Find returns the Language with the given name, or nil if not found.
func Find(name string) *extract.Language {
	return extract.Find(name, All)
}

// Detect returns the Language handling path.
func Detect(path string) (*extract.Language, error) {
	return extract.Detect(path, All...)
}
