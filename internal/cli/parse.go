package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diagramtool/diagramtool/pkg/model"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
)

// parseCommand creates the parse command, which extracts the structural
// model of an entry file and the modules it imports.
func (c *CLI) parseCommand() *cobra.Command {
	var output string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "parse <entry.py>",
		Short: "Extract the classes, enums and functions of a Python file",
		Long: `Extract the structural model of a Python entry file.

Modules imported by the entry file are followed when they can be found next
to it; --no-imports restricts extraction to the entry file itself. The model
is written as JSON and can be placed with 'layout'.

With --dump the parse trees are written to <file>.dump and the merged model
to model.json in the given directory (default: the working directory).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Config.applyParse(&opts, cmd.Flags().Changed)
			return c.runParse(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.NoImports, "no-imports", false, "do not follow imports")
	cmd.Flags().StringVar(&opts.DumpDir, "dump", "", "write parse trees and the model to this directory")
	cmd.Flags().Lookup("dump").NoOptDefVal = "."

	return cmd
}

// runParse extracts the model and writes it to output.
func (c *CLI) runParse(ctx context.Context, entry string, opts pipeline.Options, output string) error {
	opts.Entry = entry
	opts.Logger = c.Logger
	if err := opts.ValidateForParse(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Extracting %s...", entry))
	spinner.Start()

	m, err := c.newRunner(ctx, true).Parse(ctx, opts)
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Extracted %d classes and %d enums", m.Classes.Len(), m.Enums.Len()))

	if output == "" {
		return writeModel(m, os.Stdout)
	}
	if err := model.ExportJSON(m, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Parse complete")
	printFile(output)
	printStats(m.Classes.Len(), m.Enums.Len(), 0, notCached)
	printNextStep("Place it", appName+" layout "+output)
	return nil
}

func writeModel(m *model.Model, w io.Writer) error {
	if err := model.WriteJSON(m, w); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
