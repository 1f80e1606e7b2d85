package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultTool      = "sourcekitten"
	DefaultTimeout   = 60 * time.Second
	DefaultVerbosity = "message"
)

// DefaultExtensions are the source file extensions analyzed by default.
var DefaultExtensions = []string{".swift"}

// ProjectConfig holds project-level settings loaded from structgraph.yml.
type ProjectConfig struct {
	Tool            string        `yaml:"tool,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
	Workers         int           `yaml:"workers,omitempty"`
	Verbosity       string        `yaml:"verbosity,omitempty"`
	Extensions      []string      `yaml:"extensions,omitempty"`
	ExcludeDirs     []string      `yaml:"excludeDirs,omitempty"`
	StructureSuffix string        `yaml:"structureSuffix,omitempty"`
	GraphDB         string        `yaml:"graphDB,omitempty"`
	MetricsFile     string        `yaml:"metricsFile,omitempty"`
}

// Load attempts to read structgraph.yml or structgraph.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"structgraph.yml", "structgraph.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads a config file at an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv loads a .env file from the working directory, if present, and
// overrides fields with STRUCTGRAPH_* environment variables.
func (c *ProjectConfig) ApplyEnv() error {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("STRUCTGRAPH_TOOL")); v != "" {
		c.Tool = v
	}
	if v := strings.TrimSpace(os.Getenv("STRUCTGRAPH_VERBOSITY")); v != "" {
		c.Verbosity = v
	}
	if v := strings.TrimSpace(os.Getenv("STRUCTGRAPH_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRUCTGRAPH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv("STRUCTGRAPH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STRUCTGRAPH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// WithDefaults returns a copy of c with every unset field defaulted.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Verbosity == "" {
		c.Verbosity = DefaultVerbosity
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	return c
}
