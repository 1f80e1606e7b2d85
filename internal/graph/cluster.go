package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// FileCluster is a group of source files coupled by relationships.
type FileCluster struct {
	Name    string   `json:"name"`
	Density float64  `json:"density"`
	Members []string `json:"members"`
}

// ComputeFileClusters finds connected components in the file-to-file graph
// implied by relationships. A relationship recorded in file A whose
// dependency is declared in file B couples A and B.
//
// Algorithm:
//  1. Build an undirected adjacency list between declaring files.
//  2. Find connected components via BFS.
//  3. Keep components with >= 2 files, scored by edge density.
func ComputeFileClusters(ctx context.Context, store Store) ([]FileCluster, error) {
	entities, err := store.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	rels, err := store.Relationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("read relationships: %w", err)
	}

	adj := buildFileAdjacency(entities, rels)

	files := make([]string, 0, len(adj))
	for f := range adj {
		files = append(files, f)
	}
	sort.Strings(files)

	visited := make(map[string]bool, len(files))
	var clusters []FileCluster
	for _, f := range files {
		if visited[f] {
			continue
		}
		component := bfsComponent(f, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		clusters = append(clusters, FileCluster{
			Name:    longestCommonPrefix(component),
			Density: computeDensity(component, adj),
			Members: component,
		})
	}
	return clusters, nil
}

// buildFileAdjacency links the file a relationship was recorded in with
// every file declaring an entity of the dependency's name. Every file that
// declares an entity or records a relationship is a node.
func buildFileAdjacency(entities EntitySet, rels RelationshipSet) map[string]map[string]bool {
	adj := make(map[string]map[string]bool)
	declaredIn := make(map[string][]string)
	for e := range entities {
		if adj[e.Path] == nil {
			adj[e.Path] = make(map[string]bool)
		}
		declaredIn[e.Name] = append(declaredIn[e.Name], e.Path)
	}

	for r := range rels {
		if adj[r.Path] == nil {
			adj[r.Path] = make(map[string]bool)
		}
		for _, target := range declaredIn[r.Dependency] {
			if target == r.Path {
				continue
			}
			adj[r.Path][target] = true
			adj[target][r.Path] = true
		}
	}
	return adj
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// computeDensity returns the fraction of member pairs that are directly
// coupled: 1 for a clique, 2/n for a chain of n files.
func computeDensity(component []string, adj map[string]map[string]bool) float64 {
	n := len(component)
	if n < 2 {
		return 0
	}
	edges := 0
	for _, m := range component {
		for neighbor := range adj[m] {
			// Count each undirected edge once.
			if m < neighbor {
				edges++
			}
		}
	}
	return float64(edges) / float64(n*(n-1)/2)
}

// longestCommonPrefix finds the longest common directory prefix among a set
// of file paths. Returns an empty string if no common prefix is found.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return paths[0]
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			// Trim to the last path separator (excluding any trailing slash).
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1] // keep the trailing slash
			if prefix == "/" || prefix == "" {
				return prefix
			}
		}
	}

	// Ensure prefix ends at a directory boundary.
	if !strings.HasSuffix(prefix, "/") {
		idx := strings.LastIndex(prefix, "/")
		if idx >= 0 {
			prefix = prefix[:idx+1]
		}
	}

	return prefix
}
