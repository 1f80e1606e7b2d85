package main

import (
	"log/slog"

	"github.com/dusk-indust/structgraph/internal/extract"
	"github.com/dusk-indust/structgraph/internal/logging"
	"github.com/dusk-indust/structgraph/internal/mcptools"
	"github.com/dusk-indust/structgraph/internal/structure"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		cacheSize int
		flags     extractFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server exposing the graph tools over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			verbosity, err := logging.ParseVerbosity(cfg.Verbosity)
			if err != nil {
				return err
			}
			logger := logging.New(verbosity, cmd.ErrOrStderr())

			next, err := newSource(cfg)
			if err != nil {
				return err
			}
			source, err := structure.NewCachedSource(next, cacheSize)
			if err != nil {
				return err
			}

			svc := mcptools.NewGraphService(source, logger, extract.Options{
				Discover: extract.DiscoverOptions{
					Extensions:  cfg.Extensions,
					ExcludeDirs: cfg.ExcludeDirs,
				},
				Workers: cfg.Workers,
			})

			logger.Info("Serving MCP", slog.String("addr", addr))
			return mcptools.RunMCPServer(cmd.Context(), svc, addr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8090", "listen address")
	f.IntVar(&cacheSize, "cache-size", structure.DefaultCacheSize, "structure trees kept in memory")
	f.StringVarP(&flags.Verbosity, "verbosity", "v", "", "none, error, message or verbose (default message)")
	f.IntVar(&flags.Workers, "workers", 0, "files analyzed concurrently (default: number of CPUs)")
	f.DurationVar(&flags.Timeout, "timeout", 0, "per-file structure tool timeout (default 60s)")
	f.StringVar(&flags.Tool, "tool", "", "structure tool binary (default sourcekitten)")
	f.StringVar(&flags.StructureSuffix, "structure-suffix", "", "read pre-generated structure JSON from <file><suffix> instead of running the tool")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "directory names to skip")
	f.StringVar(&flags.ConfigPath, "config", "", "config file (default structgraph.yml in the working directory)")

	return cmd
}
