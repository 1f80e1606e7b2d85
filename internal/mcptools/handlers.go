package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dusk-indust/structgraph/internal/extract"
	"github.com/dusk-indust/structgraph/internal/graph"
	"github.com/dusk-indust/structgraph/internal/structure"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GraphService holds the most recently extracted graph and the structure
// source used by MCP tool handlers.
type GraphService struct {
	source structure.Source
	logger *slog.Logger
	opts   extract.Options

	mu    sync.RWMutex
	store graph.Store
}

// NewGraphService creates a GraphService. The graph is empty until the
// first extract_graph call.
func NewGraphService(source structure.Source, logger *slog.Logger, opts extract.Options) *GraphService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphService{
		source: source,
		logger: logger,
		opts:   opts,
		store:  graph.NewMemStore(),
	}
}

// Store returns the current graph.
func (s *GraphService) Store() graph.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// ExtractGraph runs an extraction session over the given paths and makes its
// cleaned graph the current one.
func (s *GraphService) ExtractGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractGraphInput,
) (*mcp.CallToolResult, ExtractGraphOutput, error) {
	if len(input.Paths) == 0 {
		return nil, ExtractGraphOutput{}, fmt.Errorf("paths is required")
	}

	opts := s.opts
	if len(input.ExcludeDirs) > 0 {
		opts.Discover.ExcludeDirs = append(append([]string(nil), opts.Discover.ExcludeDirs...), input.ExcludeDirs...)
	}

	session := extract.NewSession(s.source, s.logger, opts)
	result, err := session.Run(ctx, input.Paths)
	if err != nil {
		return nil, ExtractGraphOutput{}, fmt.Errorf("extract: %w", err)
	}

	s.mu.Lock()
	s.store = session.Store()
	s.mu.Unlock()

	failed := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, f.Error())
	}

	return nil, ExtractGraphOutput{
		RunID:   result.RunID,
		Stats:   result.Stats,
		Reports: result.Reports,
		Failed:  failed,
	}, nil
}

// QueryEntities searches for entities by name substring match.
func (s *GraphService) QueryEntities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryEntitiesInput,
) (*mcp.CallToolResult, QueryEntitiesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	var kind graph.EntityKind
	if input.Kind != "" {
		kind = graph.EntityKind(strings.ToLower(input.Kind))
		if !kind.Valid() {
			return nil, QueryEntitiesOutput{}, fmt.Errorf("unknown entity kind %q", input.Kind)
		}
	}

	// Filter before limiting so a kind filter still returns up to limit results.
	entities, err := s.Store().QueryEntities(ctx, input.Query, 0)
	if err != nil {
		return nil, QueryEntitiesOutput{}, fmt.Errorf("query entities: %w", err)
	}

	out := make([]graph.Entity, 0, limit)
	for _, e := range entities {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}

	return nil, QueryEntitiesOutput{
		Entities: out,
		Total:    len(out),
	}, nil
}

// GetDependencies traverses the relationship graph from a given entity.
func (s *GraphService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Entity == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("entity is required")
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, "upstream") {
		direction = graph.DirectionUpstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.Store().GetDependencies(ctx, input.Entity, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// GetStats returns counts for the current graph.
func (s *GraphService) GetStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetStatsInput,
) (*mcp.CallToolResult, GetStatsOutput, error) {
	stats, err := s.Store().Stats(ctx)
	if err != nil {
		return nil, GetStatsOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, GetStatsOutput{Stats: *stats}, nil
}

// GetClusters groups files coupled by relationships.
func (s *GraphService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	clusters, err := graph.ComputeFileClusters(ctx, s.Store())
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("compute clusters: %w", err)
	}

	out := make([]graph.FileCluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Members) >= input.MinSize {
			out = append(out, c)
		}
	}
	return nil, GetClustersOutput{Clusters: out}, nil
}
