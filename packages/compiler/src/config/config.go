package config

import (
	"io"
	"log/slog"
	"os"
)

// CompilerConfig represents the compiler configuration
type CompilerConfig struct {
	// Inputs are the tree documents to compile.
	Inputs []string
	// OutputDir receives one `<name>.tree.yaml` per input. When empty, output goes to Stdout.
	OutputDir string
	// VerifyPasses runs the internal consistency checks after the passes.
	VerifyPasses bool
	LogLevel     slog.Level
	// Trace exports pass spans through the stdout trace exporter.
	Trace  bool
	Stdout io.Writer
}

// NewCompilerConfig creates a new CompilerConfig with optional parameters
func NewCompilerConfig(opts ...CompilerConfigOption) *CompilerConfig {
	config := &CompilerConfig{
		VerifyPasses: true,
		LogLevel:     slog.LevelInfo,
		Stdout:       os.Stdout,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompilerConfigOption is a function that modifies CompilerConfig
type CompilerConfigOption func(*CompilerConfig)

// WithInputs appends input documents
func WithInputs(paths ...string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Inputs = append(c.Inputs, paths...)
	}
}

// WithOutputDir sets the output directory
func WithOutputDir(dir string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.OutputDir = dir
	}
}

// WithVerifyPasses sets whether to check pass invariants
func WithVerifyPasses(verify bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.VerifyPasses = verify
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level slog.Level) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.LogLevel = level
	}
}

// WithTrace enables span export
func WithTrace(trace bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Trace = trace
	}
}

// WithStdout sets where output goes when no output directory is configured
func WithStdout(w io.Writer) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Stdout = w
	}
}
