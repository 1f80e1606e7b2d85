// Package export serializes structure graphs as flat CSV tables and renders
// them as Mermaid diagrams.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dusk-indust/structgraph/internal/graph"
)

// ErrHeaderMismatch is returned when a table's header row is not the
// expected one. Column order is part of the format.
var ErrHeaderMismatch = errors.New("unexpected table header")

// ErrCarriageReturn is returned when a field to export contains '\r'.
// encoding/csv reads "\r\n" inside a quoted field back as "\n", so such a
// value would not survive a round trip.
var ErrCarriageReturn = errors.New("field contains a carriage return")

var (
	// EntityHeader is the header row of the entity (index) table.
	EntityHeader = []string{"name", "kind", "path", "size"}

	// RelationshipHeader is the header row of the relationship table.
	RelationshipHeader = []string{"object", "dependency", "type", "path"}
)

// Table file suffixes appended to an output prefix.
const (
	IndexSuffix        = "_index.csv"
	DependenciesSuffix = "_dependencies.csv"
)

// WriteEntities writes the entity table, rows sorted.
func WriteEntities(w io.Writer, entities graph.EntitySet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EntityHeader); err != nil {
		return fmt.Errorf("write entity header: %w", err)
	}
	for _, e := range entities.Sorted() {
		if err := checkFields(e.Name, e.Path); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
		if err := cw.Write([]string{e.Name, string(e.Kind), e.Path, strconv.Itoa(e.Size)}); err != nil {
			return fmt.Errorf("write entity %s: %w", e.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRelationships writes the relationship table, rows sorted.
func WriteRelationships(w io.Writer, rels graph.RelationshipSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RelationshipHeader); err != nil {
		return fmt.Errorf("write relationship header: %w", err)
	}
	for _, r := range rels.Sorted() {
		if err := checkFields(r.Object, r.Dependency, r.Path); err != nil {
			return fmt.Errorf("relationship %q->%q: %w", r.Object, r.Dependency, err)
		}
		if err := cw.Write([]string{r.Object, r.Dependency, string(r.Kind), r.Path}); err != nil {
			return fmt.Errorf("write relationship %s->%s: %w", r.Object, r.Dependency, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntities parses an entity table written by WriteEntities.
func ReadEntities(r io.Reader) (graph.EntitySet, error) {
	rows, err := readTable(r, EntityHeader)
	if err != nil {
		return nil, fmt.Errorf("entity table: %w", err)
	}
	out := make(graph.EntitySet, len(rows))
	for i, row := range rows {
		kind := graph.EntityKind(row[1])
		if !kind.Valid() {
			return nil, fmt.Errorf("entity table row %d: unknown kind %q", i+2, row[1])
		}
		size, err := strconv.Atoi(row[3])
		if err != nil || size < 0 {
			return nil, fmt.Errorf("entity table row %d: invalid size %q", i+2, row[3])
		}
		out.Add(graph.Entity{Name: row[0], Kind: kind, Path: row[2], Size: size})
	}
	return out, nil
}

// ReadRelationships parses a relationship table written by WriteRelationships.
func ReadRelationships(r io.Reader) (graph.RelationshipSet, error) {
	rows, err := readTable(r, RelationshipHeader)
	if err != nil {
		return nil, fmt.Errorf("relationship table: %w", err)
	}
	out := make(graph.RelationshipSet, len(rows))
	for i, row := range rows {
		kind := graph.RelationshipKind(row[2])
		if !kind.Valid() {
			return nil, fmt.Errorf("relationship table row %d: unknown type %q", i+2, row[2])
		}
		out.Add(graph.Relationship{Object: row[0], Dependency: row[1], Kind: kind, Path: row[3]})
	}
	return out, nil
}

// readTable reads all rows and checks the header against want.
func readTable(r io.Reader, want []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty table", ErrHeaderMismatch)
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(header, want) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, header, want)
	}
	cr.FieldsPerRecord = len(want)
	return cr.ReadAll()
}

// checkFields rejects values that encoding/csv cannot reproduce exactly.
func checkFields(fields ...string) error {
	for _, f := range fields {
		if strings.ContainsRune(f, '\r') {
			return ErrCarriageReturn
		}
	}
	return nil
}

// ExportTables writes <prefix>_index.csv and <prefix>_dependencies.csv.
// Nothing is written if either table holds a field with a carriage return.
func ExportTables(prefix string, entities graph.EntitySet, rels graph.RelationshipSet) error {
	for e := range entities {
		if err := checkFields(e.Name, e.Path); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
	}
	for r := range rels {
		if err := checkFields(r.Object, r.Dependency, r.Path); err != nil {
			return fmt.Errorf("relationship %q->%q: %w", r.Object, r.Dependency, err)
		}
	}
	if err := writeFile(prefix+IndexSuffix, func(w io.Writer) error {
		return WriteEntities(w, entities)
	}); err != nil {
		return err
	}
	return writeFile(prefix+DependenciesSuffix, func(w io.Writer) error {
		return WriteRelationships(w, rels)
	})
}

// ImportTables reads the tables written by ExportTables.
func ImportTables(prefix string) (graph.EntitySet, graph.RelationshipSet, error) {
	ef, err := os.Open(prefix + IndexSuffix)
	if err != nil {
		return nil, nil, fmt.Errorf("open index table: %w", err)
	}
	defer ef.Close()
	entities, err := ReadEntities(ef)
	if err != nil {
		return nil, nil, err
	}

	rf, err := os.Open(prefix + DependenciesSuffix)
	if err != nil {
		return nil, nil, fmt.Errorf("open dependencies table: %w", err)
	}
	defer rf.Close()
	rels, err := ReadRelationships(rf)
	if err != nil {
		return nil, nil, err
	}
	return entities, rels, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
