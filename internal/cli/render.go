package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/model"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
	"github.com/diagramtool/diagramtool/pkg/render"
)

// renderFlags holds the render flags that are not pipeline options.
type renderFlags struct {
	output  string // output file (single format) or base path
	formats string // comma-separated format list
	noCache bool
}

// renderCommand creates the render command, which runs as much of the
// pipeline as its input needs.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render <entry.py|dir|model.json|layout.json>",
		Short: "Render a class diagram",
		Long: `Render a class diagram in one or more formats.

The input may be a Python entry file, a directory (an entry file is picked
interactively), a model.json written by 'parse' or a layout.json written by
'layout'. Only the missing stages are run.

Formats: svg (default), tex (TikZ, pgf-umlcd), dot, json (layout), pdf, png.
PDF and PNG need rsvg-convert on the PATH.

With one format, -o names the output file ("-" for stdout). With several,
-o is a base path and each format gets its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				opts.Formats = splitFormats(flags.formats)
			}
			c.Config.applyParse(&opts, cmd.Flags().Changed)
			c.Config.applyLayout(&opts, cmd.Flags().Changed)
			c.Config.applyRender(&opts, cmd.Flags().Changed)
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), tex, dot, json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.NoImports, "no-imports", false, "do not follow imports")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.Border, "show-border", false, "draw the diagram bounds (svg)")
	cmd.Flags().BoolVar(&opts.NamesOnly, "names-only", false, "omit members from Graphviz boxes")
	cmd.Flags().BoolVar(&opts.Standalone, "standalone", false, "wrap TikZ output in a compilable document")
	cmd.Flags().BoolVar(&opts.Graphviz, "graphviz", false, "let Graphviz place the boxes (svg, pdf, png)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, fmt.Sprintf("PNG scale factor (default %g)", render.DefaultPNGScale))

	return cmd
}

// splitFormats splits the --format flag; validation happens in the pipeline.
func splitFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// =============================================================================
// Input Classification
// =============================================================================

type inputKind int

const (
	inputSource inputKind = iota
	inputDir
	inputModel
	inputLayout
)

type renderInput struct {
	kind inputKind
	path string
	data []byte // file contents of JSON inputs
}

// classifyInput decides which pipeline stages input still needs. JSON files
// are told apart by their top-level keys.
func classifyInput(path string) (renderInput, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return renderInput{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return renderInput{}, err
	}
	if info.IsDir() {
		return renderInput{kind: inputDir, path: path}, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return renderInput{kind: inputSource, path: path}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return renderInput{}, err
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return renderInput{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	switch {
	case top["entities"] != nil:
		return renderInput{kind: inputLayout, path: path, data: data}, nil
	case top["classes"] != nil:
		return renderInput{kind: inputModel, path: path, data: data}, nil
	}
	return renderInput{}, errors.New(errors.ErrCodeInvalidFormat, "%s is neither a model nor a layout file", path)
}

// =============================================================================
// Rendering
// =============================================================================

// renderSummary is what the status line reports about a render run.
type renderSummary struct {
	classes, enums, relations int
	cached                    bool
}

func summarizeLayout(l *diagram.Layout, cached bool) renderSummary {
	s := renderSummary{relations: len(l.Relations), cached: cached}
	for i := range l.Entities {
		if l.Entities[i].IsEnum() {
			s.enums++
		} else {
			s.classes++
		}
	}
	return s
}

// runRender classifies input, runs the missing stages and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	in, err := classifyInput(input)
	if err != nil {
		return err
	}
	if in.kind == inputDir {
		entry, err := pickEntry(in.path)
		if err != nil {
			return err
		}
		in = renderInput{kind: inputSource, path: entry}
	}

	opts.Logger = c.Logger
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner := c.newRunner(ctx, flags.noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(in.path)))
	spinner.Start()
	artifacts, summary, err := c.renderInput(ctx, runner, in, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, flags.output, in.path)
	if err != nil {
		return err
	}
	if flags.output == "-" {
		return nil
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(summary.classes, summary.enums, summary.relations, cacheStateOf(summary.cached))
	return nil
}

func (c *CLI) renderInput(ctx context.Context, runner *pipeline.Runner, in renderInput, opts pipeline.Options) (map[string][]byte, renderSummary, error) {
	switch in.kind {
	case inputLayout:
		l, err := diagram.UnmarshalLayout(in.data)
		if err != nil {
			return nil, renderSummary{}, err
		}
		artifacts, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
		return artifacts, summarizeLayout(l, hit), err

	case inputModel:
		m, err := model.ReadJSON(bytes.NewReader(in.data))
		if err != nil {
			return nil, renderSummary{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", in.path)
		}
		l, layoutHit, err := runner.GenerateLayoutWithCacheInfo(ctx, m, "", opts)
		if err != nil {
			return nil, renderSummary{}, err
		}
		artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
		return artifacts, summarizeLayout(l, layoutHit && renderHit), err

	default:
		opts.Entry = in.path
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			return nil, renderSummary{}, err
		}
		return result.Artifacts, renderSummary{
			classes:   result.Stats.Classes,
			enums:     result.Stats.Enums,
			relations: result.Stats.Relations,
			cached:    result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		}, nil
	}
}

// =============================================================================
// Output Files
// =============================================================================

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .tex, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its file. A single format is written to
// output verbatim when one is given. A derived path that would replace the
// input gets a ".layout" infix instead, so rendering model.json to json
// writes model.layout.json.
func outputPaths(formats []string, output, input string) []string {
	if len(formats) == 1 && output != "" {
		return []string{output}
	}
	base := basePath(output, input)
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = base + render.Format(f).Extension()
		if samePath(paths[i], input) {
			paths[i] = base + ".layout" + render.Format(f).Extension()
		}
	}
	return paths
}

// samePath reports whether a and b name the same file location.
func samePath(a, b string) bool {
	if a == "-" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// writeArtifacts writes every artifact in format order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	if output == "-" && len(formats) > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "-o - needs a single format")
	}
	paths := outputPaths(formats, output, input)
	for _, p := range paths {
		if samePath(p, input) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "output %s would overwrite the input", p)
		}
	}
	for i, format := range formats {
		if err := writeOutput(paths[i], artifacts[format]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns os.Stdout for "-" and creates path otherwise,
// including missing parent directories.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return createFile(path)
}

// createFile opens a new output file. Tests replace it.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}
