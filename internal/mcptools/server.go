package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewGraphMCPServer creates an MCP server with the structure graph tools registered.
func NewGraphMCPServer(svc *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "structgraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_graph",
		Description: "Analyze Swift source files or directories and build the normalized entity/relationship graph. Runs the structure tool per file, merges results and applies cleanup.",
	}, svc.ExtractGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_entities",
		Description: "Search for declared entities (struct, class, enum, protocol) by fully-qualified name substring. Optionally filter by kind and limit results.",
	}, svc.QueryEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse relationships downstream (what an entity depends on) or upstream (what depends on it) up to the given depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Return entity, relationship and file counts of the current graph.",
	}, svc.GetStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Group source files into clusters of files coupled by relationships, with an edge density score per cluster.",
	}, svc.GetClusters)

	return server
}

// RunMCPServer starts an HTTP server exposing the structure graph MCP tools.
func RunMCPServer(ctx context.Context, svc *GraphService, addr string) error {
	server := NewGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
