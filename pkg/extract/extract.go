// Package extract defines the front-end contract for turning source files
// into a [model.Model].
//
// # Overview
//
// A front end targets exactly one input grammar. Front ends are described by
// a [Language] value and selected by file classification (the entry file's
// extension) through [Detect]. The concrete list lives in package
// extract/languages to avoid an import cycle between this package and the
// front ends.
//
// # Usage
//
//	lang, err := extract.Detect("app/main.py", languages.All...)
//	if err != nil {
//	    return err
//	}
//	fe := lang.New(extract.Options{FollowImports: true, Logger: logger})
//	m, err := fe.Extract(ctx, "app/main.py")
package extract

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// DefaultTreeCacheSize bounds the number of parsed syntax trees a single
// extraction keeps alive.
const DefaultTreeCacheSize = 128

// Frontend extracts the structural model of an entry file.
//
// Extract starts from a fresh run state on every call: files visited by a
// previous call never affect the next one. All input errors abort the whole
// extraction; no partial model is returned.
type Frontend interface {
	Extract(ctx context.Context, path string) (*model.Model, error)
}

// Options configures a front end.
type Options struct {
	// FollowImports merges every file reachable from the entry through
	// import statements into the result.
	FollowImports bool

	// DumpDir, when set, receives a "<file>.dump" syntax tree dump for each
	// parsed file.
	DumpDir string

	// Boundary, when set, confines extraction to one directory tree: the
	// entry and every imported file must lie below it, and error messages
	// name files relative to it.
	Boundary string

	// TreeCacheSize bounds the parsed tree cache. Zero means DefaultTreeCacheSize.
	TreeCacheSize int

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.TreeCacheSize <= 0 {
		o.TreeCacheSize = DefaultTreeCacheSize
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Language describes one supported input grammar.
type Language struct {
	Name       string
	Extensions []string
	New        func(opts Options) Frontend
}

// Supports reports whether path has one of the language's extensions.
func (l *Language) Supports(path string) bool {
	return slices.Contains(l.Extensions, strings.ToLower(filepath.Ext(path)))
}

// Detect returns the language that handles path.
func Detect(path string, langs ...*Language) (*Language, error) {
	for _, l := range langs {
		if l.Supports(path) {
			return l, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupportedFile, "no front end for %s", filepath.Base(path))
}

// Find returns the language with the given name, or nil.
func Find(name string, langs []*Language) *Language {
	for _, l := range langs {
		if strings.EqualFold(l.Name, name) {
			return l
		}
	}
	return nil
}
