package structure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrToolNotFound is returned when the structural-analysis tool is not on PATH.
var ErrToolNotFound = errors.New("structure tool not found")

// DefaultTool is the binary name of the structural-analysis tool.
const DefaultTool = "sourcekitten"

// Source supplies the structure tree of one source file.
// Implementations: SourceKitten (production), FileSource and stubs (testing).
type Source interface {
	Structure(ctx context.Context, path string) (Node, error)
}

// LookupTool resolves name on PATH. A missing tool wraps ErrToolNotFound.
func LookupTool(name string) (string, error) {
	if name == "" {
		name = DefaultTool
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s (install from https://github.com/jpsim/SourceKitten): %v", ErrToolNotFound, name, err)
	}
	return path, nil
}

// SourceKitten runs `sourcekitten structure --file <path>` for each file.
type SourceKitten struct {
	tool    string
	timeout time.Duration
}

// NewSourceKitten returns a Source invoking the tool at toolPath. Each
// invocation is killed after timeout; a zero timeout disables the limit.
func NewSourceKitten(toolPath string, timeout time.Duration) *SourceKitten {
	return &SourceKitten{tool: toolPath, timeout: timeout}
}

// Structure runs the tool on path and decodes its JSON output.
func (s *SourceKitten) Structure(ctx context.Context, path string) (Node, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.tool, "structure", "--file", path)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Node{}, fmt.Errorf("%s structure %s: timed out after %s", s.tool, path, s.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Node{}, fmt.Errorf("%s structure %s: %w: %s", s.tool, path, err, msg)
		}
		return Node{}, fmt.Errorf("%s structure %s: %w", s.tool, path, err)
	}

	node, err := Decode(out)
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// FileSource reads structure documents that were generated ahead of time and
// stored next to each source file as <path><Suffix>.
type FileSource struct {
	Suffix string
}

// DocumentPath returns the structure document read for path.
func (s FileSource) DocumentPath(path string) string {
	return path + s.Suffix
}

// Structure reads and decodes the pre-generated document for path.
func (s FileSource) Structure(_ context.Context, path string) (Node, error) {
	data, err := os.ReadFile(s.DocumentPath(path))
	if err != nil {
		return Node{}, fmt.Errorf("read structure: %w", err)
	}
	node, err := Decode(data)
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}
