package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "structgraph.yaml"), []byte(`
tool: /opt/bin/sourcekitten
timeout: 90s
workers: 3
verbosity: verbose
extensions: [swift]
excludeDirs: [Pods, .build]
graphDB: .structgraph/graph
`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{
		Tool:        "/opt/bin/sourcekitten",
		Timeout:     90 * time.Second,
		Workers:     3,
		Verbosity:   "verbose",
		Extensions:  []string{"swift"},
		ExcludeDirs: []string{"Pods", ".build"},
		GraphDB:     ".structgraph/graph",
	}, cfg)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STRUCTGRAPH_TOOL", "sk")
	t.Setenv("STRUCTGRAPH_VERBOSITY", "error")
	t.Setenv("STRUCTGRAPH_WORKERS", "7")
	t.Setenv("STRUCTGRAPH_TIMEOUT", "5s")

	cfg := ProjectConfig{Tool: "from-file", Workers: 2}
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "sk", cfg.Tool)
	assert.Equal(t, "error", cfg.Verbosity)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestApplyEnv_InvalidWorkers(t *testing.T) {
	t.Setenv("STRUCTGRAPH_WORKERS", "many")
	cfg := ProjectConfig{}
	assert.Error(t, cfg.ApplyEnv())
}

func TestWithDefaults(t *testing.T) {
	cfg := ProjectConfig{}.WithDefaults()
	assert.Equal(t, DefaultTool, cfg.Tool)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, DefaultVerbosity, cfg.Verbosity)
	assert.Equal(t, []string{".swift"}, cfg.Extensions)

	kept := ProjectConfig{Tool: "x", Workers: 1}.WithDefaults()
	assert.Equal(t, "x", kept.Tool)
	assert.Equal(t, 1, kept.Workers)
}
