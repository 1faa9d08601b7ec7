// Package pipeline runs the diagram pipeline shared by the CLI and the
// preview server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: extract the structural model of an entry file and its imports
//  2. Layout: analyze the hierarchy and place every class and enum
//  3. Render: write the placed diagram in the requested formats
//
// Each stage can be run independently or as part of the complete pipeline.
// Layouts and artifacts are cached by the content hash of their input;
// extraction always runs, since its inputs are spread over every imported
// file.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Entry:    "app/main.py",
//	    Strategy: "rows",
//	    Formats:  []string{"svg", "tex"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/diagramtool/diagramtool/pkg/cache"
	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/extract/languages"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/model"
	"github.com/diagramtool/diagramtool/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultStrategy is the layout strategy used when none is named.
	DefaultStrategy = layout.StrategyGraph

	// DefaultMargin is the gap kept around and between boxes.
	DefaultMargin = layout.DefaultMargin
)

// DefaultFormats is the render output when no format is named.
var DefaultFormats = []string{string(render.FormatSVG)}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Parse options
	Entry         string `json:"entry"`
	Language      string `json:"language,omitempty"`
	NoImports     bool   `json:"no_imports,omitempty"`
	TreeCacheSize int    `json:"tree_cache_size,omitempty"`
	DumpDir       string `json:"-"`
	// Boundary confines parsing to a directory tree; the server sets it to
	// its root.
	Boundary string `json:"-"`

	// Layout options
	Strategy    string  `json:"strategy,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	Recenter    bool    `json:"recenter,omitempty"`
	MaxRowWidth float64 `json:"max_row_width,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Border     bool     `json:"border,omitempty"`
	NamesOnly  bool     `json:"names_only,omitempty"`
	Standalone bool     `json:"standalone,omitempty"`
	Graphviz   bool     `json:"graphviz,omitempty"`
	Scale      float64  `json:"scale,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Model is the extracted structural model.
	Model *model.Model

	// ModelHash is the content hash of the model, the layout cache key base.
	ModelHash string

	// Layout is the placed diagram.
	Layout *diagram.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Classes    int
	Enums      int
	Relations  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the entry file and resolves the language from
// its extension unless one is named.
func (o *Options) ValidateForParse() error {
	if o.Entry == "" {
		return errors.New(errors.ErrCodeInvalidInput, "entry file is required")
	}
	if o.Language == "" {
		lang, err := languages.Detect(o.Entry)
		if err != nil {
			return err
		}
		o.Language = lang.Name
	}
	if languages.Find(o.Language) == nil {
		return errors.New(errors.ErrCodeUnsupported, "unsupported language %q", o.Language)
	}
	o.setLogger()
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	o.Strategy = strings.ToLower(o.Strategy)
	if _, err := layout.ByName(o.Strategy); err != nil {
		return err
	}
	if o.Margin < 0 || o.MaxRowWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin and row width must not be negative")
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates layout and render options and normalizes
// the format names.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	formats, err := render.ParseFormats(strings.Join(o.Formats, ","))
	if err != nil {
		return err
	}
	o.Formats = make([]string, len(formats))
	for i, f := range formats {
		o.Formats[i] = string(f)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must not be negative")
	}
	if o.Scale == 0 {
		o.Scale = render.DefaultPNGScale
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Engine returns the layout engine configured by the layout options.
func (o *Options) Engine() (layout.Engine, error) {
	s, err := layout.ByName(o.Strategy)
	if err != nil {
		return layout.Engine{}, err
	}
	if rows, ok := s.(layout.Rows); ok {
		rows.MaxRowWidth = o.MaxRowWidth
		s = rows
	}
	return layout.Engine{
		Strategy: s,
		Margin:   o.Margin,
		Recenter: o.Recenter,
		Logger:   o.Logger,
	}, nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:    o.Strategy,
		Margin:      o.Margin,
		Recenter:    o.Recenter,
		MaxRowWidth: o.MaxRowWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Border:     o.Border,
		NamesOnly:  o.NamesOnly,
		Standalone: o.Standalone,
		Graphviz:   o.Graphviz,
		Scale:      o.Scale,
	}
}
