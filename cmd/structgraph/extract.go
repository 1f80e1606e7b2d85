package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dusk-indust/structgraph/internal/config"
	"github.com/dusk-indust/structgraph/internal/export"
	"github.com/dusk-indust/structgraph/internal/extract"
	"github.com/dusk-indust/structgraph/internal/logging"
	"github.com/dusk-indust/structgraph/internal/structure"
	"github.com/spf13/cobra"
)

type extractFlags struct {
	Output          string
	Verbosity       string
	Workers         int
	Timeout         time.Duration
	Tool            string
	StructureSuffix string
	Exclude         []string
	GraphDB         string
	MetricsFile     string
	ReportFile      string
	Progress        bool
	ConfigPath      string
}

func newExtractCmd() *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract PATH...",
		Short: "Analyze source files and write the entity and dependency tables",
		Long: `Runs the structure tool on every source file under PATH, merges the
declared entities and their relationships into one graph, cleans it and
writes <output>_index.csv and <output>_dependencies.csv.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.Output, "output", "o", "", "output table prefix (required)")
	f.StringVarP(&flags.Verbosity, "verbosity", "v", "", "none, error, message or verbose (default message)")
	f.IntVar(&flags.Workers, "workers", 0, "files analyzed concurrently (default: number of CPUs)")
	f.DurationVar(&flags.Timeout, "timeout", 0, "per-file structure tool timeout (default 60s)")
	f.StringVar(&flags.Tool, "tool", "", "structure tool binary (default sourcekitten)")
	f.StringVar(&flags.StructureSuffix, "structure-suffix", "", "read pre-generated structure JSON from <file><suffix> instead of running the tool")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "directory names to skip")
	f.StringVar(&flags.GraphDB, "graph-db", "", "also persist the graph to an embedded graph database at this path")
	f.StringVar(&flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.BoolVar(&flags.Progress, "progress", false, "print a status line per file")
	f.StringVar(&flags.ReportFile, "report", "", "write a JSON run report to this file")
	f.StringVar(&flags.ConfigPath, "config", "", "config file (default structgraph.yml in the working directory)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// resolveConfig layers config file, environment and explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags extractFlags) (config.ProjectConfig, error) {
	var (
		cfg *config.ProjectConfig
		err error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFile(flags.ConfigPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return config.ProjectConfig{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.ProjectConfig{}, err
	}

	changed := cmd.Flags().Changed
	if changed("verbosity") {
		cfg.Verbosity = flags.Verbosity
	}
	if changed("workers") {
		cfg.Workers = flags.Workers
	}
	if changed("timeout") {
		cfg.Timeout = flags.Timeout
	}
	if changed("tool") {
		cfg.Tool = flags.Tool
	}
	if changed("structure-suffix") {
		cfg.StructureSuffix = flags.StructureSuffix
	}
	if changed("exclude") {
		cfg.ExcludeDirs = append(cfg.ExcludeDirs, flags.Exclude...)
	}
	if changed("graph-db") {
		cfg.GraphDB = flags.GraphDB
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.MetricsFile
	}
	return cfg.WithDefaults(), nil
}

// newSource returns the structure source for cfg. Without a structure
// suffix the tool must be on PATH; a missing tool fails the run before any
// file is read.
func newSource(cfg config.ProjectConfig) (structure.Source, error) {
	if cfg.StructureSuffix != "" {
		return structure.FileSource{Suffix: cfg.StructureSuffix}, nil
	}
	toolPath, err := structure.LookupTool(cfg.Tool)
	if err != nil {
		return nil, err
	}
	return structure.NewSourceKitten(toolPath, cfg.Timeout), nil
}

func runExtract(cmd *cobra.Command, flags extractFlags, paths []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	verbosity, err := logging.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return err
	}
	logger := logging.New(verbosity, cmd.ErrOrStderr())

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	opts := extract.Options{
		Discover: extract.DiscoverOptions{
			Extensions:  cfg.Extensions,
			ExcludeDirs: cfg.ExcludeDirs,
		},
		Workers: cfg.Workers,
	}

	var stopProgress func()
	if flags.Progress {
		stopProgress = printProgress(cmd.ErrOrStderr(), &opts)
	}

	session := extract.NewSession(source, logger, opts)
	result, err := session.Run(ctx, paths)
	if stopProgress != nil {
		stopProgress()
	}
	if err != nil {
		return err
	}

	store := session.Store()
	entities, err := store.Entities(ctx)
	if err != nil {
		return err
	}
	rels, err := store.Relationships(ctx)
	if err != nil {
		return err
	}
	if err := export.ExportTables(flags.Output, entities, rels); err != nil {
		return fmt.Errorf("export tables: %w", err)
	}
	logger.Info("Wrote tables",
		slog.String("index", flags.Output+export.IndexSuffix),
		slog.String("dependencies", flags.Output+export.DependenciesSuffix))

	if cfg.GraphDB != "" {
		if err := persistGraph(ctx, cfg.GraphDB, store); err != nil {
			return err
		}
		logger.Info("Persisted graph", slog.String("path", cfg.GraphDB))
	}

	if cfg.MetricsFile != "" {
		if err := extract.WriteMetrics(cfg.MetricsFile); err != nil {
			return err
		}
	}

	if flags.ReportFile != "" {
		skipped := make([]export.SkipExport, 0, len(result.Failed))
		for _, f := range result.Failed {
			skipped = append(skipped, export.SkipExport{Path: f.Path, Error: f.Err.Error()})
		}
		report := export.NewRunReport(result.RunID, result.Files, result.Stats, result.Reports, skipped)
		if err := export.ExportRunReport(flags.ReportFile, report); err != nil {
			return err
		}
	}

	if len(result.Failed) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d inputs skipped\n", len(result.Failed))
	}
	return nil
}

// printProgress routes session progress to w and returns a function that
// flushes the remaining events once the run is over.
func printProgress(w io.Writer, opts *extract.Options) func() {
	reporter := extract.NewProgressReporter()
	opts.OnProgress = reporter.Emit

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range reporter.Subscribe() {
			if ev.Status != extract.ProgressWorking {
				fmt.Fprintln(w, extract.FormatProgress(ev))
			}
		}
	}()

	return func() {
		reporter.Close()
		<-printed
	}
}
