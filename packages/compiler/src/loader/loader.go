// Package loader builds object trees from YAML tree documents.
//
// A document lists components; each component has an id and a root element:
//
//	components:
//	  - id: MainWindow
//	    root:
//	      id: root
//	      type: Window
//	      children:
//	        - id: row
//	          type: Rectangle
//	          repeated: {model: {ref: root.items}, listview: true}
//	          bindings:
//	            text: {string: hi}
//	            width: parent.width
//
// Element `type` names an earlier component of the same document or a builtin.
// See expression.go for the expression syntax.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sixtyfps-go/packages/compiler/src/object_tree"
	"sixtyfps-go/packages/compiler/src/util"
)

// Document is a loaded tree document.
type Document struct {
	File       *util.ParseSourceFile
	Components []*object_tree.Component
}

// Component returns the component with the given id, or nil.
func (d *Document) Component(id string) *object_tree.Component {
	for _, c := range d.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// LoadFile reads and loads the document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(util.NewParseSourceFile(string(data), path))
}

// Load parses file into a Document. Errors are *util.ParseError.
func Load(file *util.ParseSourceFile) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(file.Content), &root); err != nil {
		perr := util.NewParseError(nil, fmt.Sprintf("%s: invalid YAML", file.URL))
		perr.RelatedError = err
		return nil, perr
	}
	l := &loader{file: file, doc: &Document{File: file}}
	if root.Kind == 0 {
		return l.doc, nil
	}
	if err := l.document(&root); err != nil {
		return nil, err
	}
	return l.doc, nil
}

type loader struct {
	file *util.ParseSourceFile
	doc  *Document
}

// componentScope collects everything needed to resolve references once all elements of
// a component exist.
type componentScope struct {
	ids     map[string]*object_tree.Element
	pending []pendingRef
}

type pendingRef struct {
	target *object_tree.NamedReference
	path   string
	self   *object_tree.Element
	parent *object_tree.Element
	node   *yaml.Node
}

func (l *loader) span(n *yaml.Node) *util.ParseSourceSpan {
	loc := util.NewParseLocationAt(l.file, n.Line-1, n.Column-1)
	return util.NewParseSourceSpan(loc, loc, nil, nil)
}

func (l *loader) errorf(n *yaml.Node, format string, args ...any) error {
	return util.NewParseError(l.span(n), fmt.Sprintf(format, args...))
}

func (l *loader) document(root *yaml.Node) error {
	top := root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return nil
		}
		top = top.Content[0]
	}
	fields, err := l.mapping(top, "components")
	if err != nil {
		return err
	}
	comps, ok := fields["components"]
	if !ok {
		return nil
	}
	if comps.Kind != yaml.SequenceNode {
		return l.errorf(comps, "components must be a list")
	}
	for _, n := range comps.Content {
		comp, err := l.component(n)
		if err != nil {
			return err
		}
		l.doc.Components = append(l.doc.Components, comp)
	}
	return nil
}

func (l *loader) component(n *yaml.Node) (*object_tree.Component, error) {
	fields, err := l.mapping(n, "id", "root")
	if err != nil {
		return nil, err
	}
	id, err := l.stringField(fields, "id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, l.errorf(n, "component without id")
	}
	if l.doc.Component(id) != nil {
		return nil, l.errorf(n, "duplicate component %q", id)
	}
	rootNode, ok := fields["root"]
	if !ok {
		return nil, l.errorf(n, "component %q has no root element", id)
	}

	scope := &componentScope{ids: make(map[string]*object_tree.Element)}
	root, err := l.element(rootNode, nil, scope)
	if err != nil {
		return nil, err
	}
	if err := l.resolve(scope); err != nil {
		return nil, err
	}
	return object_tree.NewComponent(id, root), nil
}

func (l *loader) element(n *yaml.Node, parent *object_tree.Element, scope *componentScope) (*object_tree.Element, error) {
	fields, err := l.mapping(n, "id", "type", "bindings", "children", "repeated",
		"declarations", "animations", "states", "transitions", "child_of_layout")
	if err != nil {
		return nil, err
	}
	elem := object_tree.NewElement("", nil)
	elem.Node = l.span(n)

	if elem.ID, err = l.stringField(fields, "id"); err != nil {
		return nil, err
	}
	if elem.ID != "" {
		if _, dup := scope.ids[elem.ID]; dup {
			return nil, l.errorf(fields["id"], "duplicate element id %q", elem.ID)
		}
		scope.ids[elem.ID] = elem
	}

	typeName, err := l.stringField(fields, "type")
	if err != nil {
		return nil, err
	}
	if typeName != "" {
		if c := l.doc.Component(typeName); c != nil {
			elem.BaseType = object_tree.ComponentType{Component: c}
		} else {
			elem.BaseType = object_tree.BuiltinType{Name: typeName}
		}
	}

	ctx := &exprContext{loader: l, scope: scope, self: elem, parent: parent}

	if b, ok := fields["bindings"]; ok {
		if elem.Bindings, err = ctx.bindings(b); err != nil {
			return nil, err
		}
	}
	if r, ok := fields["repeated"]; ok {
		if elem.Repeated, err = l.repeated(r, ctx); err != nil {
			return nil, err
		}
	}
	if d, ok := fields["declarations"]; ok {
		if err := l.declarations(d, elem, ctx); err != nil {
			return nil, err
		}
	}
	if a, ok := fields["animations"]; ok {
		if err := l.animations(a, elem, ctx); err != nil {
			return nil, err
		}
	}
	if s, ok := fields["states"]; ok {
		if err := l.states(s, elem, ctx); err != nil {
			return nil, err
		}
	}
	if t, ok := fields["transitions"]; ok {
		if err := l.transitions(t, elem, ctx); err != nil {
			return nil, err
		}
	}
	if c, ok := fields["child_of_layout"]; ok {
		if elem.ChildOfLayout, err = l.boolValue(c); err != nil {
			return nil, err
		}
	}
	if c, ok := fields["children"]; ok {
		if c.Kind != yaml.SequenceNode {
			return nil, l.errorf(c, "children must be a list")
		}
		for _, cn := range c.Content {
			child, err := l.element(cn, elem, scope)
			if err != nil {
				return nil, err
			}
			elem.AddChild(child)
		}
	}
	return elem, nil
}

func (l *loader) repeated(n *yaml.Node, ctx *exprContext) (*object_tree.RepeatedElementInfo, error) {
	fields, err := l.mapping(n, "model", "model_data_id", "index_id", "conditional", "listview")
	if err != nil {
		return nil, err
	}
	info := &object_tree.RepeatedElementInfo{}
	if m, ok := fields["model"]; ok {
		if info.Model, err = ctx.expression(m); err != nil {
			return nil, err
		}
	}
	if info.ModelDataID, err = l.stringField(fields, "model_data_id"); err != nil {
		return nil, err
	}
	if info.IndexID, err = l.stringField(fields, "index_id"); err != nil {
		return nil, err
	}
	if c, ok := fields["conditional"]; ok {
		if info.IsConditionalElement, err = l.boolValue(c); err != nil {
			return nil, err
		}
	}
	if lv, ok := fields["listview"]; ok {
		isListView, err := l.boolValue(lv)
		if err != nil {
			return nil, err
		}
		if isListView {
			info.IsListView = &object_tree.ListViewInfo{}
		}
	}
	return info, nil
}

func (l *loader) declarations(n *yaml.Node, elem *object_tree.Element, ctx *exprContext) error {
	if n.Kind != yaml.MappingNode {
		return l.errorf(n, "declarations must be a mapping")
	}
	elem.PropertyDeclarations = make(map[string]*object_tree.PropertyDeclaration)
	for i := 0; i < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		decl := &object_tree.PropertyDeclaration{Node: l.span(key)}
		switch value.Kind {
		case yaml.ScalarNode:
			decl.PropertyType = value.Value
		case yaml.MappingNode:
			fields, err := l.mapping(value, "type", "alias")
			if err != nil {
				return err
			}
			if decl.PropertyType, err = l.stringField(fields, "type"); err != nil {
				return err
			}
			if alias, ok := fields["alias"]; ok {
				decl.IsAlias = &object_tree.NamedReference{}
				if err := ctx.deferRef(decl.IsAlias, alias); err != nil {
					return err
				}
			}
		default:
			return l.errorf(value, "declaration of %q must be a type name or a mapping", key.Value)
		}
		elem.PropertyDeclarations[key.Value] = decl
	}
	return nil
}

func (l *loader) animations(n *yaml.Node, elem *object_tree.Element, ctx *exprContext) error {
	if n.Kind != yaml.MappingNode {
		return l.errorf(n, "animations must be a mapping")
	}
	elem.PropertyAnimations = make(map[string]*object_tree.PropertyAnimation)
	for i := 0; i < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		anim, err := l.animation(value, ctx)
		if err != nil {
			return err
		}
		elem.PropertyAnimations[key.Value] = anim
	}
	return nil
}

func (l *loader) animation(n *yaml.Node, ctx *exprContext) (*object_tree.PropertyAnimation, error) {
	bindings, err := ctx.bindings(n)
	if err != nil {
		return nil, err
	}
	return &object_tree.PropertyAnimation{Bindings: bindings, Node: l.span(n)}, nil
}

func (l *loader) states(n *yaml.Node, elem *object_tree.Element, ctx *exprContext) error {
	if n.Kind != yaml.SequenceNode {
		return l.errorf(n, "states must be a list")
	}
	for _, sn := range n.Content {
		fields, err := l.mapping(sn, "id", "when", "changes")
		if err != nil {
			return err
		}
		state := &object_tree.State{}
		if state.ID, err = l.stringField(fields, "id"); err != nil {
			return err
		}
		if when, ok := fields["when"]; ok {
			if state.Condition, err = ctx.expression(when); err != nil {
				return err
			}
		}
		if changes, ok := fields["changes"]; ok {
			if changes.Kind != yaml.MappingNode {
				return l.errorf(changes, "state changes must be a mapping")
			}
			state.PropertyChanges = make([]object_tree.PropertyChange, len(changes.Content)/2)
			for i := 0; i < len(changes.Content); i += 2 {
				change := &state.PropertyChanges[i/2]
				if err := ctx.deferRef(&change.Target, changes.Content[i]); err != nil {
					return err
				}
				if change.Value, err = ctx.expression(changes.Content[i+1]); err != nil {
					return err
				}
			}
		}
		elem.States = append(elem.States, state)
	}
	return nil
}

func (l *loader) transitions(n *yaml.Node, elem *object_tree.Element, ctx *exprContext) error {
	if n.Kind != yaml.SequenceNode {
		return l.errorf(n, "transitions must be a list")
	}
	for _, tn := range n.Content {
		fields, err := l.mapping(tn, "state", "out", "animations")
		if err != nil {
			return err
		}
		transition := &object_tree.Transition{}
		if transition.StateID, err = l.stringField(fields, "state"); err != nil {
			return err
		}
		if out, ok := fields["out"]; ok {
			if transition.IsOut, err = l.boolValue(out); err != nil {
				return err
			}
		}
		if anims, ok := fields["animations"]; ok {
			if anims.Kind != yaml.MappingNode {
				return l.errorf(anims, "transition animations must be a mapping")
			}
			transition.Animations = make([]object_tree.TransitionAnimation, len(anims.Content)/2)
			for i := 0; i < len(anims.Content); i += 2 {
				ta := &transition.Animations[i/2]
				if err := ctx.deferRef(&ta.Target, anims.Content[i]); err != nil {
					return err
				}
				if ta.Animation, err = l.animation(anims.Content[i+1], ctx); err != nil {
					return err
				}
			}
		}
		elem.Transitions = append(elem.Transitions, transition)
	}
	return nil
}

// resolve binds every deferred reference of the component now that all ids are known.
func (l *loader) resolve(scope *componentScope) error {
	for _, p := range scope.pending {
		parts := util.SplitAtPeriod(p.path, []string{"", ""})
		id, prop := parts[0], parts[1]
		if id == "" || prop == "" {
			return l.errorf(p.node, "invalid property reference %q, expected <element>.<property>", p.path)
		}
		var target *object_tree.Element
		switch id {
		case "self":
			target = p.self
		case "parent":
			if p.parent == nil {
				return l.errorf(p.node, "root element has no parent in %q", p.path)
			}
			target = p.parent
		default:
			target = scope.ids[id]
		}
		if target == nil {
			return l.errorf(p.node, "unknown element %q", id)
		}
		*p.target = object_tree.NewNamedReference(target, prop)
	}
	return nil
}

// mapping returns the values of a mapping node by key, rejecting unknown keys.
func (l *loader) mapping(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, l.errorf(n, "expected a mapping")
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		key := n.Content[i]
		if !contains(allowed, key.Value) {
			return nil, l.errorf(key, "unknown key %q", key.Value)
		}
		if _, dup := fields[key.Value]; dup {
			return nil, l.errorf(key, "duplicate key %q", key.Value)
		}
		fields[key.Value] = n.Content[i+1]
	}
	return fields, nil
}

func (l *loader) stringField(fields map[string]*yaml.Node, key string) (string, error) {
	n, ok := fields[key]
	if !ok {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", l.errorf(n, "%s must be a scalar", key)
	}
	return n.Value, nil
}

func (l *loader) boolValue(n *yaml.Node) (bool, error) {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		return false, l.errorf(n, "expected a boolean")
	}
	return b, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
