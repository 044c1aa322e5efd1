package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sixtyfps-go/packages/compiler/src/loader"
	"sixtyfps-go/packages/compiler/src/object_tree"
	"sixtyfps-go/packages/compiler/src/printer"
	"sixtyfps-go/packages/compiler/src/util"
)

func load(t *testing.T, content string) *loader.Document {
	t.Helper()
	doc, err := loader.Load(util.NewParseSourceFile(content, "test.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return doc
}

func loadError(t *testing.T, content string) *util.ParseError {
	t.Helper()
	_, err := loader.Load(util.NewParseSourceFile(content, "test.yaml"))
	if err == nil {
		t.Fatal("Expected an error")
	}
	var perr *util.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected a *util.ParseError, got %T: %v", err, err)
	}
	return perr
}

func bindingString(t *testing.T, e *object_tree.Element, name string) string {
	t.Helper()
	b, ok := e.Bindings[name]
	if !ok {
		t.Fatalf("%s has no binding %q", e, name)
	}
	return printer.ExpressionString(b.Expression)
}

const windowDoc = `
components:
  - id: Button
    root:
      id: button
      type: Rectangle
      declarations:
        label: string
  - id: Main
    root:
      id: root
      type: Window
      bindings:
        title: {string: Hello}
      children:
        - id: row
          type: Button
          repeated: {model: root.items, model_data_id: item, index_id: i}
          bindings:
            width: parent.width
            height: {number: 20px}
            visible: true
        - id: footer
          type: Text
          bindings:
            text: row.label
            y: {binary: {op: "+", lhs: self.x, rhs: 10}}
`

func TestLoad(t *testing.T) {
	doc := load(t, windowDoc)

	t.Run("should load components in order", func(t *testing.T) {
		var ids []string
		for _, c := range doc.Components {
			ids = append(ids, c.ID)
		}
		if diff := cmp.Diff([]string{"Button", "Main"}, ids); diff != "" {
			t.Errorf("components mismatch (-want +got):\n%s", diff)
		}
	})

	main := doc.Component("Main")
	if main == nil {
		t.Fatal("Expected component Main")
	}
	root := main.RootElement
	row, footer := root.Children[0], root.Children[1]

	t.Run("should resolve element types", func(t *testing.T) {
		if diff := cmp.Diff(object_tree.ElementType(object_tree.BuiltinType{Name: "Window"}), root.BaseType); diff != "" {
			t.Errorf("root type mismatch (-want +got):\n%s", diff)
		}
		if object_tree.ComponentOf(row.BaseType) != doc.Component("Button") {
			t.Errorf("Expected row to instantiate Button, got %v", row.BaseType)
		}
	})

	t.Run("should set the enclosing component", func(t *testing.T) {
		for _, e := range []*object_tree.Element{root, row, footer} {
			if e.EnclosingComponent != main {
				t.Errorf("%s: wrong enclosing component", e)
			}
		}
	})

	t.Run("should load repeater info", func(t *testing.T) {
		if row.Repeated == nil {
			t.Fatal("Expected row to be repeated")
		}
		if row.Repeated.ModelDataID != "item" || row.Repeated.IndexID != "i" {
			t.Errorf("Unexpected repeater info %+v", row.Repeated)
		}
		if row.Repeated.IsListViewRepeater() {
			t.Error("Expected a plain repeater")
		}
		if got := printer.ExpressionString(row.Repeated.Model); got != "Main::root.items" {
			t.Errorf("model = %s", got)
		}
	})

	t.Run("should decode expressions", func(t *testing.T) {
		tests := []struct {
			elem *object_tree.Element
			name string
			want string
		}{
			{root, "title", `"Hello"`},
			{row, "width", "Main::root.width"},
			{row, "height", "20px"},
			{row, "visible", "true"},
			{footer, "text", "Main::row.label"},
			{footer, "y", "(Main::footer.x + 10)"},
		}
		for _, tt := range tests {
			if got := bindingString(t, tt.elem, tt.name); got != tt.want {
				t.Errorf("%s.%s = %s, want %s", tt.elem, tt.name, got, tt.want)
			}
		}
	})

	t.Run("should keep source locations", func(t *testing.T) {
		if row.Node == nil || row.Node.Start == nil {
			t.Fatal("Expected row to have a source location")
		}
		if row.Node.Start.Line != 15 {
			t.Errorf("Expected row on line 15, got %d", row.Node.Start.Line)
		}
	})
}

func TestLoad_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"number", "1.5", "1.5"},
		{"number with unit", "{number: 90deg}", "90deg"},
		{"percent", "{number: 50%}", "50%"},
		{"bool", "{bool: false}", "false"},
		{"null", "~", "<invalid>"},
		{"invalid", "{invalid: ~}", "<invalid>"},
		{"explicit ref", "{ref: self.width}", "M::e.width"},
		{"unary", `{unary: {op: "!", expr: self.visible}}`, "!M::e.visible"},
		{"cond", "{cond: {if: self.pressed, then: 1, else: 2}}", "(M::e.pressed ? 1 : 2)"},
		{"cond without else", "{cond: {if: self.pressed, then: 1}}", "(M::e.pressed ? 1 : <none>)"},
		{"call", "{call: {fn: max, args: [1, self.x]}}", "max(1, M::e.x)"},
		{"access", "{access: {base: self.point, name: x}}", "M::e.point.x"},
		{"array", "{array: [1, 2]}", "[1, 2]"},
		{"block", `{block: [{assign: {op: "+=", lhs: self.x, rhs: 1}}, self.x]}`, "{M::e.x += 1; M::e.x}"},
		{"cast", "{cast: {expr: 1, to: string}}", "(1 as string)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := load(t, "components:\n  - id: M\n    root:\n      id: e\n      bindings:\n        v: "+tt.expr+"\n")
			if got := bindingString(t, doc.Components[0].RootElement, "v"); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoad_Metadata(t *testing.T) {
	doc := load(t, `
components:
  - id: M
    root:
      id: root
      children:
        - id: list
          type: Rectangle
          child_of_layout: true
          repeated: {model: 10, listview: true}
          declarations:
            selected: bool
            text: {type: string, alias: label.text}
          animations:
            x: {duration: {number: 100ms}}
          states:
            - id: active
              when: self.selected
              changes:
                label.color: {string: red}
          transitions:
            - state: active
              out: true
              animations:
                label.color: {duration: {number: 200ms}}
          children:
            - id: label
              type: Text
`)
	list := doc.Components[0].RootElement.Children[0]
	label := list.Children[0]

	if !list.ChildOfLayout {
		t.Error("Expected child_of_layout")
	}
	if !list.Repeated.IsListViewRepeater() {
		t.Error("Expected a list-view repeater")
	}
	if got := list.PropertyDeclarations["selected"].PropertyType; got != "bool" {
		t.Errorf("selected type = %s", got)
	}
	alias := list.PropertyDeclarations["text"].IsAlias
	if alias == nil || alias.Element() != label || alias.Name() != "text" {
		t.Errorf("Expected text to alias label.text, got %v", alias)
	}
	if got := printer.ExpressionString(list.PropertyAnimations["x"].Bindings["duration"].Expression); got != "100ms" {
		t.Errorf("animation duration = %s", got)
	}
	if len(list.States) != 1 || list.States[0].PropertyChanges[0].Target.Element() != label {
		t.Errorf("Expected a state changing label, got %+v", list.States)
	}
	if len(list.Transitions) != 1 || !list.Transitions[0].IsOut {
		t.Fatalf("Expected an out transition, got %+v", list.Transitions)
	}
	if list.Transitions[0].Animations[0].Target.Element() != label {
		t.Error("Expected the transition to animate label")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "components: [", "invalid YAML"},
		{"unknown top-level key", "widgets: []", `unknown key "widgets"`},
		{"components not a list", "components: {}", "components must be a list"},
		{"component without id", "components:\n  - root: {id: r}", "component without id"},
		{"component without root", "components:\n  - id: M", "has no root element"},
		{"duplicate component", "components:\n  - {id: M, root: {}}\n  - {id: M, root: {}}", `duplicate component "M"`},
		{"unknown element key", "components:\n  - {id: M, root: {colour: red}}", `unknown key "colour"`},
		{"duplicate element id", "components:\n  - {id: M, root: {id: a, children: [{id: a}]}}", `duplicate element id "a"`},
		{"unknown element", "components:\n  - {id: M, root: {id: a, bindings: {x: b.x}}}", `unknown element "b"`},
		{"malformed reference", "components:\n  - {id: M, root: {id: a, bindings: {x: width}}}", "invalid property reference"},
		{"parent of root", "components:\n  - {id: M, root: {id: a, bindings: {x: parent.x}}}", "root element has no parent"},
		{"unknown expression", "components:\n  - {id: M, root: {bindings: {x: {lambda: 1}}}}", `unknown expression kind "lambda"`},
		{"bad number", "components:\n  - {id: M, root: {bindings: {x: {number: px}}}}", "invalid number"},
		{"bad boolean", "components:\n  - {id: M, root: {child_of_layout: maybe}}", "expected a boolean"},
		{"missing operand", "components:\n  - {id: M, root: {bindings: {x: {binary: {op: +, lhs: 1}}}}}", `missing "rhs"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := loadError(t, tt.content)
			if !strings.Contains(perr.Msg, tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, perr.Msg)
			}
		})
	}

	t.Run("should point at the offending node", func(t *testing.T) {
		perr := loadError(t, "components:\n  - id: M\n    root:\n      bogus: 1\n")
		if perr.Span == nil || perr.Span.Start.Line != 3 || perr.Span.Start.Col != 6 {
			t.Errorf("Expected the error at 3:6, got %v", perr.Span)
		}
		if !strings.Contains(perr.Error(), "test.yaml@3:6") {
			t.Errorf("Expected the location in the message, got %q", perr.Error())
		}
	})

	t.Run("should wrap the YAML error", func(t *testing.T) {
		perr := loadError(t, "components: [")
		if perr.RelatedError == nil {
			t.Error("Expected the YAML error to be kept")
		}
	})
}

func TestLoad_Empty(t *testing.T) {
	doc := load(t, "")
	if len(doc.Components) != 0 {
		t.Errorf("Expected no components, got %d", len(doc.Components))
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yaml")
	if err := os.WriteFile(path, []byte(windowDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if doc.File.URL != path {
		t.Errorf("Expected file url %s, got %s", path, doc.File.URL)
	}
	if len(doc.Components) != 2 {
		t.Errorf("Expected 2 components, got %d", len(doc.Components))
	}

	if _, err := loader.LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
