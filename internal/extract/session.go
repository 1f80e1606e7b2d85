// Package extract runs batch extraction sessions: it discovers source files,
// analyzes them in parallel, merges their contributions into one graph and
// normalizes that graph once every file is in.
package extract

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/dusk-indust/structgraph/internal/structure"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FileError records why one input was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Options configures a Session.
type Options struct {
	Discover DiscoverOptions

	// Workers bounds the number of files analyzed concurrently.
	// Zero means runtime.NumCPU().
	Workers int

	// OnProgress, if set, is called from worker goroutines as files start
	// and finish. It must be safe for concurrent use.
	OnProgress func(ProgressEvent)
}

// Result summarizes a finished run.
type Result struct {
	RunID   string             `json:"runId"`
	Files   []string           `json:"files"`
	Stats   graph.GraphStats   `json:"stats"`
	Reports []graph.PassReport `json:"reports"`
	Failed  []FileError        `json:"-"`
}

// Session owns the graph of one extraction run. The logger is passed in
// explicitly so concurrent sessions can run at different verbosities.
type Session struct {
	store  *graph.MemStore
	source structure.Source
	logger *slog.Logger
	opts   Options
	runID  string
	walker graph.Walker
}

// NewSession creates a Session reading structure trees from source.
func NewSession(source structure.Source, logger *slog.Logger, opts Options) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	runID := uuid.NewString()
	return &Session{
		store:  graph.NewMemStore(),
		source: source,
		logger: logger.With(slog.String("run_id", runID)),
		opts:   opts,
		runID:  runID,
	}
}

// Store returns the session's graph.
func (s *Session) Store() *graph.MemStore {
	return s.store
}

// Run discovers the files under paths, extracts each of them and cleans the
// merged graph. A file that fails to analyze is reported in Result.Failed and
// does not stop the batch; only context cancellation aborts the run.
func (s *Session) Run(ctx context.Context, paths []string) (*Result, error) {
	files, failed := Discover(paths, s.opts.Discover, s.logger)
	s.logger.Info("Discovered source files", slog.Int("files", len(files)), slog.Int("skipped", len(failed)))

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(file string, err error) {
		mu.Lock()
		done++
		ev := ProgressEvent{Path: file, Status: ProgressComplete, Done: done, Total: len(files)}
		if err != nil {
			failed = append(failed, FileError{Path: file, Err: err})
			ev.Status, ev.Message = ProgressFailed, err.Error()
		}
		mu.Unlock()
		s.emit(ev)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.emit(ProgressEvent{Path: file, Status: ProgressWorking, Total: len(files)})
			c, err := s.extractFile(gctx, file)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Error("Skipping file", slog.String("path", file), slog.String("error", err.Error()))
				finish(file, err)
				return nil
			}
			s.store.Merge(c)
			finish(file, nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}

	reports, err := s.Cleanup(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	stats.FailedFileCount = len(failed)

	slices.SortFunc(failed, func(a, b FileError) int { return cmp.Compare(a.Path, b.Path) })

	s.logger.Info("Extraction finished",
		slog.Int("files", len(files)),
		slog.Int("failed", len(failed)),
		slog.Int("entities", stats.EntityCount),
		slog.Int("relationships", stats.RelationshipCount))

	return &Result{
		RunID:   s.runID,
		Files:   files,
		Stats:   *stats,
		Reports: reports,
		Failed:  failed,
	}, nil
}

func (s *Session) emit(ev ProgressEvent) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(ev)
	}
}

// extractFile analyzes one file into a private Collector.
func (s *Session) extractFile(ctx context.Context, file string) (*graph.Collector, error) {
	start := time.Now()
	node, err := s.source.Structure(ctx, file)
	if err != nil {
		recordFile(false, time.Since(start).Seconds())
		return nil, err
	}
	c := s.walker.Extract(file, node)
	recordFile(true, time.Since(start).Seconds())

	s.logger.Debug("Extracted file",
		slog.String("path", file),
		slog.Int("entities", c.Entities.Len()),
		slog.Int("relationships", c.Relationships.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return c, nil
}

// Cleanup runs the cleanup pipeline over the merged graph and replaces its
// relationship set. It must only be called once all files are merged.
func (s *Session) Cleanup(ctx context.Context) ([]graph.PassReport, error) {
	entities, err := s.store.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	raw, err := s.store.Relationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("read relationships: %w", err)
	}

	cleaned, reports := graph.Cleanup(entities, raw)
	for _, r := range reports {
		s.logger.Info("Cleanup pass",
			slog.String("pass", r.Name),
			slog.Int("before", r.Before),
			slog.Int("after", r.After),
			slog.Int("removed", r.Removed()))
	}

	if err := s.store.ReplaceRelationships(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("replace relationships: %w", err)
	}
	recordCleanup(entities.Len(), raw.Len(), cleaned.Len(), reports)
	return reports, nil
}
