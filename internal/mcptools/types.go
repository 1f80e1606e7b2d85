package mcptools

import "github.com/dusk-indust/structgraph/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// ExtractGraphInput is the input for the extract_graph MCP tool.
type ExtractGraphInput struct {
	Paths       []string `json:"paths" jsonschema:"absolute paths of source files or directories to analyze"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directory names to skip while walking (e.g. Pods, .build)"`
}

// ExtractGraphOutput is the result of the extract_graph MCP tool.
type ExtractGraphOutput struct {
	RunID   string             `json:"runId"`
	Stats   graph.GraphStats   `json:"stats"`
	Reports []graph.PassReport `json:"reports"`
	Failed  []string           `json:"failed,omitempty"`
}

// QueryEntitiesInput is the input for the query_entities MCP tool.
type QueryEntitiesInput struct {
	Query string `json:"query" jsonschema:"search query for fully-qualified entity names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by entity kind: struct, class, enum, protocol"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QueryEntitiesOutput is the result of the query_entities MCP tool.
type QueryEntitiesOutput struct {
	Entities []graph.Entity `json:"entities"`
	Total    int            `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	Entity    string `json:"entity" jsonschema:"fully-qualified entity name"`
	Direction string `json:"direction,omitempty" jsonschema:"downstream (what it depends on) or upstream (what depends on it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// GetStatsInput is the input for the get_stats MCP tool.
type GetStatsInput struct{}

// GetStatsOutput is the result of the get_stats MCP tool.
type GetStatsOutput struct {
	Stats graph.GraphStats `json:"stats"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct {
	MinSize int `json:"minSize,omitempty" jsonschema:"only return clusters with at least this many files (default: 2)"`
}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.FileCluster `json:"clusters"`
}
