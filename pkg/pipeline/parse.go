package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diagramtool/diagramtool/pkg/extract"
	"github.com/diagramtool/diagramtool/pkg/extract/languages"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// DumpModelFile is the name of the merged model written to the dump directory.
const DumpModelFile = "model.json"

// Parse extracts the structural model of opts.Entry. With a dump directory
// set, the front end writes one syntax tree dump per parsed file and Parse
// adds the merged model as model.json.
func Parse(ctx context.Context, opts Options) (*model.Model, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	lang := languages.Find(opts.Language)

	if opts.DumpDir != "" {
		if err := os.MkdirAll(opts.DumpDir, 0o755); err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
	}

	fe := lang.New(extract.Options{
		FollowImports: !opts.NoImports,
		DumpDir:       opts.DumpDir,
		Boundary:      opts.Boundary,
		TreeCacheSize: opts.TreeCacheSize,
		Logger:        opts.Logger,
	})
	m, err := fe.Extract(ctx, opts.Entry)
	if err != nil {
		return nil, err
	}

	if opts.DumpDir != "" {
		path := filepath.Join(opts.DumpDir, DumpModelFile)
		if err := model.ExportJSON(m, path); err != nil {
			return nil, fmt.Errorf("dump model: %w", err)
		}
		opts.Logger.Info("dumped model", "path", path)
	}
	return m, nil
}
