package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"sixtyfps-go/packages/compiler/src/config"
	"sixtyfps-go/packages/compiler/src/object_tree"
	"sixtyfps-go/packages/compiler/src/printer"
)

func printedComponentIDs(t *testing.T, out []byte) []string {
	t.Helper()
	var doc struct {
		Components []struct {
			ID string `yaml:"id"`
		} `yaml:"components"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	var ids []string
	for _, c := range doc.Components {
		ids = append(ids, c.ID)
	}
	return ids
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileFile(t *testing.T) {
	c := NewCompiler(nil)
	result, err := c.CompileFile(context.Background(), filepath.Join("testdata", "listview.yaml"))
	if err != nil {
		t.Fatalf("CompileFile() error: %v", err)
	}

	t.Run("should print every component", func(t *testing.T) {
		want := []string{"Row", "MainWindow", "MainWindow::item", "MainWindow::status"}
		if diff := cmp.Diff(want, printedComponentIDs(t, result.Output)); diff != "" {
			t.Errorf("components mismatch (-want +got):\n%s", diff)
		}
	})

	main := result.Document.Component("MainWindow")
	list := main.RootElement.Children[0]
	item := list.Children[0]
	status := main.RootElement.Children[1]
	footer := main.RootElement.Children[2]

	t.Run("should lower the list-view repeater", func(t *testing.T) {
		sub := object_tree.ComponentOf(item.BaseType)
		if sub == nil || sub.ParentElement != item {
			t.Fatalf("Expected item to instantiate its repeater component, got %v", item.BaseType)
		}
		r := sub.RootElement
		if r.ID != "item" || !r.ChildOfLayout {
			t.Errorf("Unexpected repeater root %s (child_of_layout=%v)", r, r.ChildOfLayout)
		}
		height := r.Bindings["height"].Expression.(*object_tree.PropertyReference)
		if height.Ref.Element() != r || height.Ref.Name() != "preferred_height" {
			t.Errorf("height = %v", height.Ref)
		}
		if got := printer.ExpressionString(r.Bindings["label"].Expression); got != "MainWindow::item.$model" {
			t.Errorf("label = %s", got)
		}
		background := r.Bindings["background"].Expression.(*object_tree.Condition)
		if selected := background.Condition.(*object_tree.PropertyReference); selected.Ref.Element() != r {
			t.Errorf("Expected self.selected to read the repeater root, got %v", selected.Ref)
		}
	})

	t.Run("should redirect references from siblings", func(t *testing.T) {
		statusRoot := object_tree.ComponentOf(status.BaseType).RootElement
		text := footer.Bindings["text"].Expression.(*object_tree.PropertyReference)
		if text.Ref.Element() != statusRoot {
			t.Errorf("Expected footer.text to read the conditional root, got %v", text.Ref)
		}
		itemRoot := object_tree.ComponentOf(item.BaseType).RootElement
		y := footer.Bindings["y"].Expression.(*object_tree.BinaryExpression)
		if lhs := y.LHS.(*object_tree.PropertyReference); lhs.Ref.Element() != itemRoot {
			t.Errorf("Expected footer.y to read the list-view row, got %v", lhs.Ref)
		}
	})
}

func TestCompileFile_Errors(t *testing.T) {
	dir := t.TempDir()
	c := NewCompiler(nil)

	t.Run("should report load errors", func(t *testing.T) {
		path := writeDoc(t, dir, "bad.yaml", "components:\n  - id: M\n    root: {id: a, bindings: {x: nope.x}}\n")
		_, err := c.CompileFile(context.Background(), path)
		if err == nil || !strings.Contains(err.Error(), `unknown element "nope"`) {
			t.Errorf("Expected an unknown element error, got %v", err)
		}
	})

	t.Run("should report missing files", func(t *testing.T) {
		if _, err := c.CompileFile(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("Expected an error")
		}
	})
}

func TestCompile(t *testing.T) {
	const docA = "components:\n  - id: A\n    root: {id: a, children: [{id: r, repeated: {model: 3}}]}\n"
	const docB = "components:\n  - id: B\n    root: {id: b}\n"

	t.Run("should write one tree per input", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		a := writeDoc(t, in, "a.yaml", docA)
		b := writeDoc(t, in, "b.yaml", docB)

		cfg := config.NewCompilerConfig(config.WithOutputDir(out))
		if err := NewCompiler(cfg).Compile(context.Background(), []string{a, b}); err != nil {
			t.Fatalf("Compile() error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(out, "a.tree.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"A", "A::r"}, printedComponentIDs(t, got)); diff != "" {
			t.Errorf("a.tree.yaml mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(filepath.Join(out, "b.tree.yaml")); err != nil {
			t.Errorf("Expected b.tree.yaml: %v", err)
		}
	})

	t.Run("should print to stdout in input order", func(t *testing.T) {
		in := t.TempDir()
		a := writeDoc(t, in, "a.yaml", docA)
		b := writeDoc(t, in, "b.yaml", docB)

		var stdout bytes.Buffer
		cfg := config.NewCompilerConfig(config.WithInputs(b, a), config.WithStdout(&stdout))
		if err := NewCompiler(cfg).Compile(context.Background(), nil); err != nil {
			t.Fatalf("Compile() error: %v", err)
		}
		out := stdout.String()
		ib, ia := strings.Index(out, "id: B"), strings.Index(out, "id: A")
		if ib < 0 || ia < 0 || ib > ia {
			t.Errorf("Expected B before A, got:\n%s", out)
		}
	})

	t.Run("should fail on any bad input", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		a := writeDoc(t, in, "a.yaml", docA)
		bad := writeDoc(t, in, "bad.yaml", "components: [")

		cfg := config.NewCompilerConfig(config.WithOutputDir(out))
		if err := NewCompiler(cfg).Compile(context.Background(), []string{a, bad}); err == nil {
			t.Fatal("Expected an error")
		}
		entries, _ := os.ReadDir(out)
		if len(entries) != 0 {
			t.Errorf("Expected nothing written, got %d files", len(entries))
		}
	})

	t.Run("should require inputs", func(t *testing.T) {
		if err := NewCompiler(nil).Compile(context.Background(), nil); err == nil {
			t.Error("Expected an error without inputs")
		}
	})
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"main.yaml":           "main.tree.yaml",
		"/tmp/ui/window.yml":  "window.tree.yaml",
		"noext":               "noext.tree.yaml",
		"dir/archive.v2.yaml": "archive.v2.tree.yaml",
	}
	for in, want := range tests {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}
