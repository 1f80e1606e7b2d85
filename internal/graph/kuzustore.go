//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path, so an exported graph can be queried after the run.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Entity(
		id STRING,
		name STRING,
		kind STRING,
		path STRING,
		size INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Entity TO Entity, kind STRING, path STRING)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Reset removes every entity and DEPENDS_ON edge, leaving the schema in place.
func (s *KuzuStore) Reset(ctx context.Context) error {
	if err := s.InitSchema(ctx); err != nil {
		return err
	}
	return s.exec("MATCH (e:Entity) DETACH DELETE e", nil)
}

// SaveKuzuGraph writes src to a file-based KuzuDB at dbPath. Whatever the
// database held before is discarded, so it always mirrors a single run.
func SaveKuzuGraph(ctx context.Context, dbPath string, src Store) error {
	dst, err := NewKuzuFileStore(dbPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := dst.Reset(ctx); err != nil {
		return fmt.Errorf("kuzu: reset: %w", err)
	}
	return CopyGraph(ctx, dst, src)
}

// ---------- Write operations ----------

// AddEntity merges an Entity node keyed by the full entity tuple.
func (s *KuzuStore) AddEntity(_ context.Context, e Entity) error {
	return s.exec(
		`MERGE (e:Entity {id: $id})
		 ON CREATE SET e.name = $name, e.kind = $kind, e.path = $path, e.size = $size`,
		map[string]any{
			"id":   entityID(e),
			"name": e.Name,
			"kind": string(e.Kind),
			"path": e.Path,
			"size": int64(e.Size),
		},
	)
}

// AddRelationship merges a DEPENDS_ON edge between every entity named
// r.Object and every entity named r.Dependency. Endpoints that are not in
// the index produce no edge.
func (s *KuzuStore) AddRelationship(_ context.Context, r Relationship) error {
	return s.exec(
		`MATCH (a:Entity {name: $src}), (b:Entity {name: $dst})
		 MERGE (a)-[:DEPENDS_ON {kind: $kind, path: $path}]->(b)`,
		map[string]any{
			"src":  r.Object,
			"dst":  r.Dependency,
			"kind": string(r.Kind),
			"path": r.Path,
		},
	)
}

// ReplaceRelationships deletes every DEPENDS_ON edge and inserts rels.
func (s *KuzuStore) ReplaceRelationships(ctx context.Context, rels RelationshipSet) error {
	if err := s.exec("MATCH ()-[r:DEPENDS_ON]->() DELETE r", nil); err != nil {
		return err
	}
	for _, r := range rels.Sorted() {
		if err := s.AddRelationship(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// Entities returns every Entity node.
func (s *KuzuStore) Entities(_ context.Context) (EntitySet, error) {
	rows, err := s.query("MATCH (e:Entity) RETURN e.name, e.kind, e.path, e.size", nil)
	if err != nil {
		return nil, err
	}
	out := make(EntitySet, len(rows))
	for _, r := range rows {
		out.Add(*rowToEntity(r))
	}
	return out, nil
}

// Relationships returns every DEPENDS_ON edge as a Relationship.
func (s *KuzuStore) Relationships(_ context.Context) (RelationshipSet, error) {
	rows, err := s.query(
		"MATCH (a:Entity)-[r:DEPENDS_ON]->(b:Entity) RETURN a.name, b.name, r.kind, r.path",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make(RelationshipSet, len(rows))
	for _, r := range rows {
		out.Add(Relationship{
			Object:     toString(r[0]),
			Dependency: toString(r[1]),
			Kind:       RelationshipKind(toString(r[2])),
			Path:       toString(r[3]),
		})
	}
	return out, nil
}

// QueryEntities returns entities whose name contains the query string,
// case-insensitively, sorted by name.
func (s *KuzuStore) QueryEntities(_ context.Context, queryStr string, limit int) ([]Entity, error) {
	cypher := `MATCH (e:Entity) WHERE lower(e.name) CONTAINS lower($q)
		 RETURN e.name, e.kind, e.path, e.size ORDER BY e.name`
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToEntity(r))
	}
	return out, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over DEPENDS_ON edges starting from the
// given entity name. It returns one DependencyChain per reachable entity.
func (s *KuzuStore) GetDependencies(_ context.Context, name string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{name: true}
	queue := []bfsEntry{{path: []string{name}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.neighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// neighbors returns the distinct entity names one DEPENDS_ON hop away.
func (s *KuzuStore) neighbors(name string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDownstream:
		cypher = "MATCH (a:Entity {name: $name})-[:DEPENDS_ON]->(b:Entity) RETURN DISTINCT b.name ORDER BY b.name"
	case DirectionUpstream:
		cypher = "MATCH (a:Entity)-[:DEPENDS_ON]->(b:Entity {name: $name}) RETURN DISTINCT a.name ORDER BY a.name"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns entity, relationship and distinct file counts.
func (s *KuzuStore) Stats(ctx context.Context) (*GraphStats, error) {
	entities, err := s.Entities(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := s.Relationships(ctx)
	if err != nil {
		return nil, err
	}
	files := make(map[string]bool)
	for e := range entities {
		files[e.Path] = true
	}
	for r := range rels {
		files[r.Path] = true
	}
	return &GraphStats{
		EntityCount:       entities.Len(),
		RelationshipCount: rels.Len(),
		FileCount:         len(files),
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: query: %w", err)
		}
		res.Close()
		return nil
	}

	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// entityID produces a deterministic primary key from the full entity tuple.
func entityID(e Entity) string {
	return strings.Join([]string{e.Path, e.Name, string(e.Kind), strconv.Itoa(e.Size)}, "\x1f")
}

// rowToEntity converts a 4-column result row into an Entity.
// Column order: name, kind, path, size.
func rowToEntity(r []any) *Entity {
	return &Entity{
		Name: toString(r[0]),
		Kind: EntityKind(toString(r[1])),
		Path: toString(r[2]),
		Size: toInt(r[3]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
