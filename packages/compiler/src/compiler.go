package compiler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"sixtyfps-go/packages/compiler/src/config"
	"sixtyfps-go/packages/compiler/src/loader"
	"sixtyfps-go/packages/compiler/src/passes"
	"sixtyfps-go/packages/compiler/src/printer"
)

// Compiler loads tree documents, lowers them through the passes and prints the result.
type Compiler struct {
	config *config.CompilerConfig
}

// Result is the outcome of compiling one document.
type Result struct {
	Path     string
	Document *loader.Document
	Output   []byte
}

// NewCompiler creates a new compiler instance
func NewCompiler(cfg *config.CompilerConfig) *Compiler {
	if cfg == nil {
		cfg = config.NewCompilerConfig()
	}
	return &Compiler{config: cfg}
}

// CompileFile loads path, runs the passes over every component and renders the tree.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	doc, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, comp := range doc.Components {
		if err := passes.Run(ctx, comp, c.config); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var buf bytes.Buffer
	if err := printer.Print(&buf, doc.Components...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.InfoContext(ctx, "compiled document",
		slog.String("path", path),
		slog.Int("components", len(doc.Components)),
	)
	return &Result{Path: path, Document: doc, Output: buf.Bytes()}, nil
}

// Compile compiles every path concurrently. Each document owns its tree, so nothing
// is shared between workers. Output is written once all documents compiled.
func (c *Compiler) Compile(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		paths = c.config.Inputs
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input documents")
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := c.CompileFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, result := range results {
		if err := c.write(result); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) write(result *Result) error {
	if c.config.OutputDir == "" {
		_, err := c.config.Stdout.Write(result.Output)
		return err
	}
	if err := os.MkdirAll(c.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(c.config.OutputDir, OutputName(result.Path))
	if err := os.WriteFile(out, result.Output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	slog.Debug("wrote tree", slog.String("path", out))
	return nil
}

// OutputName returns the file name the tree of input is written to.
func OutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".tree.yaml"
}
