package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the default name of the project file.
const ProjectFileName = "sixtyfps.yaml"

// ProjectConfig is the content of a project file.
type ProjectConfig struct {
	Inputs       []string `yaml:"inputs"`
	OutDir       string   `yaml:"out_dir"`
	VerifyPasses *bool    `yaml:"verify_passes"`
	LogLevel     string   `yaml:"log_level"`
	Trace        bool     `yaml:"trace"`

	root string
}

// ParseProjectConfig reads and parses a project file
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}
	config.root = filepath.Dir(absPath)

	if config.LogLevel != "" {
		if _, err := ParseLogLevel(config.LogLevel); err != nil {
			return nil, fmt.Errorf("project file %s: %w", path, err)
		}
	}

	slog.Debug("loaded project file",
		slog.String("path", absPath),
		slog.Int("inputs", len(config.Inputs)),
	)
	return &config, nil
}

// GetProjectRoot returns the directory containing the project file
func (c *ProjectConfig) GetProjectRoot() string {
	return c.root
}

// Options converts the project file into compiler options. Relative paths are
// resolved against the project root.
func (c *ProjectConfig) Options() []CompilerConfigOption {
	var opts []CompilerConfigOption
	inputs := make([]string, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		inputs = append(inputs, c.resolve(in))
	}
	if len(inputs) > 0 {
		opts = append(opts, WithInputs(inputs...))
	}
	if c.OutDir != "" {
		opts = append(opts, WithOutputDir(c.resolve(c.OutDir)))
	}
	if c.VerifyPasses != nil {
		opts = append(opts, WithVerifyPasses(*c.VerifyPasses))
	}
	if level, err := ParseLogLevel(c.LogLevel); err == nil && c.LogLevel != "" {
		opts = append(opts, WithLogLevel(level))
	}
	if c.Trace {
		opts = append(opts, WithTrace(true))
	}
	return opts
}

func (c *ProjectConfig) resolve(p string) string {
	if filepath.IsAbs(p) || c.root == "" {
		return p
	}
	return filepath.Join(c.root, p)
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
