package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diagramtool/diagramtool/pkg/cache"
	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/observability"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
	"github.com/diagramtool/diagramtool/pkg/server"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command for the HTTP preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		root    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered diagrams over HTTP",
		Long: `Serve diagrams of the Python files below --root.

  GET /v1/diagram?entry=app/main.py&format=svg&strategy=graph
  GET /v1/model?entry=app/main.py
  GET /v1/formats
  GET /healthz

Results are kept in memory unless a cache url is configured
(` + EnvCacheURL + ` or [cache] url in the config file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") && c.Config.Serve.Addr != "" {
				addr = c.Config.Serve.Addr
			}
			if !cmd.Flags().Changed("root") && c.Config.Serve.Root != "" {
				root = c.Config.Serve.Root
			}
			return c.runServe(cmd.Context(), addr, root, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&root, "root", ".", "directory the served entry paths are relative to")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, root string, noCache bool) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "root %s is not a directory", root)
	}

	runner := pipeline.NewRunner(c.serverCache(ctx, noCache), keyer(), c.Logger)
	defer runner.Close()

	observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))

	handler := server.NewRouter(server.NewHandler(root, runner, c.Logger))
	printInfo("Serving %s on %s", root, addr)
	if err := server.New(addr, handler, c.Logger).Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serverCache is an in-memory cache unless a backend is configured.
func (c *CLI) serverCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.Config.Cache.URL != "" {
		return c.openCache(ctx, noCache)
	}
	mem, err := cache.NewMemoryCache(0)
	if err != nil {
		return cache.NewNullCache()
	}
	return mem
}
