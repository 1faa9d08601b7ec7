package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diagramtool/diagramtool/pkg/cache"
	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/model"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
)

// layoutCommand creates the layout command for placing a parsed model.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout <model.json>",
		Short: "Place the classes of a parsed model",
		Long: `Place the classes and enums of a model.json file (produced by 'parse').

The graph strategy assigns classes to grid points so that related classes
end up close together; the rows strategy stacks inheritance levels in rows.
Enums always form a row below the classes.

The output is a layout.json file that 'render' turns into a diagram.
Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Config.applyLayout(&opts, cmd.Flags().Changed)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags registers the flags shared by layout and render.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "",
		fmt.Sprintf("layout strategy: %s (default %s)", strings.Join(layout.Names(), ", "), pipeline.DefaultStrategy))
	cmd.Flags().Float64Var(&opts.Margin, "margin", 0, fmt.Sprintf("gap around and between boxes (default %g)", pipeline.DefaultMargin))
	cmd.Flags().BoolVar(&opts.Recenter, "recenter", false, "center the diagram on the origin")
	cmd.Flags().Float64Var(&opts.MaxRowWidth, "max-row-width", 0, "wrap rows wider than this (rows strategy)")
}

// runLayout loads the model, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	m, err := model.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load model %s: %w", input, err)
	}
	modelHash, err := cache.HashJSON(m)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, noCache)
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, m, modelHash, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = layoutPath(input)
	}
	if err := diagram.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(m.Classes.Len(), m.Enums.Len(), len(l.Relations), cacheStateOf(cacheHit))
	printNextStep("Render", appName+" render "+output)
	return nil
}

// layoutPath derives the default layout file from a model file:
// model.json becomes model.layout.json.
func layoutPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}
