// Package printer renders object trees as YAML for inspection and golden tests.
package printer

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sixtyfps-go/packages/compiler/src/object_tree"
)

// Print writes every component of comps, followed by the repeater sub-components
// reachable from them, to w.
func Print(w io.Writer, comps ...*object_tree.Component) error {
	p := newPrinter(comps)
	list := seq()
	for _, c := range p.order {
		list.Content = append(list.Content, p.component(c))
	}
	root := mapping()
	add(root, "components", list)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to print tree: %w", err)
	}
	return enc.Close()
}

// String renders comps like Print and returns the result.
func String(comps ...*object_tree.Component) string {
	var sb strings.Builder
	if err := Print(&sb, comps...); err != nil {
		return err.Error()
	}
	return sb.String()
}

// ExpressionString renders expr as a single line.
func ExpressionString(expr object_tree.Expression) string {
	p := newPrinter(nil)
	return p.expression(expr)
}

type printer struct {
	order     []*object_tree.Component
	compNames map[*object_tree.Component]string
	elemNames map[*object_tree.Element]string
}

func newPrinter(comps []*object_tree.Component) *printer {
	p := &printer{
		compNames: make(map[*object_tree.Component]string),
		elemNames: make(map[*object_tree.Element]string),
	}
	for _, c := range comps {
		p.name(c, c.ID)
	}
	for _, c := range comps {
		p.discover(c)
	}
	return p
}

func (p *printer) name(c *object_tree.Component, name string) {
	if _, ok := p.compNames[c]; ok {
		return
	}
	p.compNames[c] = name
	p.order = append(p.order, c)
	anonymous := 0
	object_tree.RecurseElem(c.RootElement, func(e *object_tree.Element) {
		if e.ID != "" {
			p.elemNames[e] = e.ID
			return
		}
		p.elemNames[e] = fmt.Sprintf("_%d", anonymous)
		anonymous++
	})
}

// discover names the repeater sub-components of c, depth first.
func (p *printer) discover(c *object_tree.Component) {
	repeaters := 0
	object_tree.RecurseElem(c.RootElement, func(e *object_tree.Element) {
		if e.Repeated == nil {
			return
		}
		sub := object_tree.ComponentOf(e.BaseType)
		if sub == nil || sub.ParentElement != e {
			return
		}
		suffix := e.ID
		if suffix == "" {
			suffix = fmt.Sprintf("repeater%d", repeaters)
		}
		repeaters++
		p.name(sub, p.compNames[c]+"::"+suffix)
		p.discover(sub)
	})
}

func (p *printer) compName(c *object_tree.Component) string {
	if name, ok := p.compNames[c]; ok {
		return name
	}
	if c.ID != "" {
		return c.ID
	}
	return "<component>"
}

func (p *printer) elemName(e *object_tree.Element) string {
	name, ok := p.elemNames[e]
	if !ok {
		name = e.String()
	}
	if e.EnclosingComponent != nil {
		return p.compName(e.EnclosingComponent) + "::" + name
	}
	return name
}

func (p *printer) ref(nr object_tree.NamedReference) string {
	if nr.IsZero() {
		return "<unset>." + nr.Name()
	}
	return p.elemName(nr.Element()) + "." + nr.Name()
}

func (p *printer) component(c *object_tree.Component) *yaml.Node {
	n := mapping()
	add(n, "id", scalar(p.compName(c)))
	if c.ParentElement != nil {
		add(n, "parent_element", scalar(p.elemName(c.ParentElement)))
	}
	if c.RootElement != nil {
		add(n, "root", p.element(c.RootElement))
	}
	return n
}

func (p *printer) element(e *object_tree.Element) *yaml.Node {
	n := mapping()
	add(n, "id", scalar(p.elemNames[e]))
	switch t := e.BaseType.(type) {
	case nil:
	case object_tree.ComponentType:
		add(n, "type", scalar(p.compName(t.Component)))
	default:
		add(n, "type", scalar(t.String()))
	}
	if r := e.Repeated; r != nil {
		rn := mapping()
		if r.Model != nil {
			add(rn, "model", scalar(p.expression(r.Model)))
		}
		if r.ModelDataID != "" {
			add(rn, "model_data_id", scalar(r.ModelDataID))
		}
		if r.IndexID != "" {
			add(rn, "index_id", scalar(r.IndexID))
		}
		if r.IsConditionalElement {
			add(rn, "conditional", trueScalar())
		}
		if r.IsListView != nil {
			add(rn, "listview", trueScalar())
		}
		rn.Style = yaml.FlowStyle
		add(n, "repeated", rn)
	}
	if e.ChildOfLayout {
		add(n, "child_of_layout", trueScalar())
	}
	if len(e.Bindings) > 0 {
		add(n, "bindings", p.bindings(e.Bindings))
	}
	if len(e.PropertyDeclarations) > 0 {
		dn := mapping()
		for _, name := range sortedKeys(e.PropertyDeclarations) {
			decl := e.PropertyDeclarations[name]
			value := decl.PropertyType
			if decl.IsAlias != nil {
				value += " <=> " + p.ref(*decl.IsAlias)
			}
			add(dn, name, scalar(value))
		}
		add(n, "declarations", dn)
	}
	if len(e.PropertyAnimations) > 0 {
		an := mapping()
		for _, name := range sortedKeys(e.PropertyAnimations) {
			add(an, name, p.bindings(e.PropertyAnimations[name].Bindings))
		}
		add(n, "animations", an)
	}
	if len(e.States) > 0 {
		sn := seq()
		for _, s := range e.States {
			st := mapping()
			add(st, "id", scalar(s.ID))
			if s.Condition != nil {
				add(st, "when", scalar(p.expression(s.Condition)))
			}
			if len(s.PropertyChanges) > 0 {
				cn := mapping()
				for _, change := range s.PropertyChanges {
					add(cn, p.ref(change.Target), scalar(p.expression(change.Value)))
				}
				add(st, "changes", cn)
			}
			sn.Content = append(sn.Content, st)
		}
		add(n, "states", sn)
	}
	if len(e.Transitions) > 0 {
		tn := seq()
		for _, t := range e.Transitions {
			tr := mapping()
			add(tr, "state", scalar(t.StateID))
			if t.IsOut {
				add(tr, "out", trueScalar())
			}
			for _, a := range t.Animations {
				add(tr, p.ref(a.Target), p.bindings(a.Animation.Bindings))
			}
			tn.Content = append(tn.Content, tr)
		}
		add(n, "transitions", tn)
	}
	if len(e.Children) > 0 {
		cn := seq()
		for _, child := range e.Children {
			cn.Content = append(cn.Content, p.element(child))
		}
		add(n, "children", cn)
	}
	return n
}

func (p *printer) bindings(bindings map[string]*object_tree.BindingExpression) *yaml.Node {
	n := mapping()
	for _, name := range sortedKeys(bindings) {
		add(n, name, scalar(p.expression(bindings[name].Expression)))
	}
	return n
}

func (p *printer) expression(expr object_tree.Expression) string {
	switch e := expr.(type) {
	case nil:
		return "<none>"
	case *object_tree.Invalid:
		return "<invalid>"
	case *object_tree.StringLiteral:
		return strconv.Quote(e.Value)
	case *object_tree.NumberLiteral:
		return strconv.FormatFloat(e.Value, 'g', -1, 64) + e.Unit
	case *object_tree.BoolLiteral:
		return strconv.FormatBool(e.Value)
	case *object_tree.PropertyReference:
		return p.ref(e.Ref)
	case *object_tree.FunctionReference:
		return e.Name
	case *object_tree.BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", p.expression(e.LHS), e.Op, p.expression(e.RHS))
	case *object_tree.UnaryOp:
		return e.Op + p.expression(e.Sub)
	case *object_tree.Condition:
		falseExpr := "<none>"
		if e.FalseExpr != nil {
			falseExpr = p.expression(e.FalseExpr)
		}
		return fmt.Sprintf("(%s ? %s : %s)", p.expression(e.Condition), p.expression(e.TrueExpr), falseExpr)
	case *object_tree.FunctionCall:
		return p.expression(e.Function) + "(" + p.list(e.Arguments, ", ") + ")"
	case *object_tree.ObjectAccess:
		return p.expression(e.Base) + "." + e.Name
	case *object_tree.Array:
		return "[" + p.list(e.Values, ", ") + "]"
	case *object_tree.CodeBlock:
		return "{" + p.list(e.Statements, "; ") + "}"
	case *object_tree.SelfAssignment:
		op := e.Op
		if op == "" {
			op = "="
		}
		return fmt.Sprintf("%s %s %s", p.expression(e.LHS), op, p.expression(e.RHS))
	case *object_tree.Cast:
		return fmt.Sprintf("(%s as %s)", p.expression(e.From), e.To)
	}
	return fmt.Sprintf("<%T>", expr)
}

func (p *printer) list(exprs []object_tree.Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = p.expression(e)
	}
	return strings.Join(parts, sep)
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func seq() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode}
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func add(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func trueScalar() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
}
