package loader

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"sixtyfps-go/packages/compiler/src/object_tree"
)

// exprContext decodes expressions bound on one element.
//
// An expression is either a bare scalar (numbers and booleans are literals, any other
// string is a property reference) or a mapping with a single key:
//
//	string: text                number: 10px            bool: true
//	ref: elem.prop              invalid: ~
//	binary: {op: "+", lhs: e, rhs: e}
//	unary: {op: "!", expr: e}
//	cond: {if: e, then: e, else: e}
//	call: {fn: name, args: [e, ...]}
//	access: {base: e, name: field}
//	array: [e, ...]             block: [e, ...]
//	assign: {op: "+=", lhs: e, rhs: e}
//	cast: {expr: e, to: type}
type exprContext struct {
	loader *loader
	scope  *componentScope
	self   *object_tree.Element
	parent *object_tree.Element
}

func (c *exprContext) bindings(n *yaml.Node) (map[string]*object_tree.BindingExpression, error) {
	l := c.loader
	if n.Kind != yaml.MappingNode {
		return nil, l.errorf(n, "bindings must be a mapping")
	}
	bindings := make(map[string]*object_tree.BindingExpression, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if _, dup := bindings[key.Value]; dup {
			return nil, l.errorf(key, "duplicate binding %q", key.Value)
		}
		expr, err := c.expression(value)
		if err != nil {
			return nil, err
		}
		bindings[key.Value] = object_tree.NewBindingExpression(expr, l.span(value))
	}
	return bindings, nil
}

// deferRef records a reference to resolve once the whole component is loaded.
func (c *exprContext) deferRef(target *object_tree.NamedReference, n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return c.loader.errorf(n, "property reference must be a scalar")
	}
	c.scope.pending = append(c.scope.pending, pendingRef{
		target: target,
		path:   n.Value,
		self:   c.self,
		parent: c.parent,
		node:   n,
	})
	return nil
}

func (c *exprContext) reference(n *yaml.Node) (object_tree.Expression, error) {
	pr := &object_tree.PropertyReference{}
	if err := c.deferRef(&pr.Ref, n); err != nil {
		return nil, err
	}
	return pr, nil
}

func (c *exprContext) expression(n *yaml.Node) (object_tree.Expression, error) {
	l := c.loader
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return c.number(n)
		case "!!bool":
			b, err := l.boolValue(n)
			if err != nil {
				return nil, err
			}
			return &object_tree.BoolLiteral{Value: b}, nil
		case "!!null":
			return &object_tree.Invalid{}, nil
		}
		return c.reference(n)
	case yaml.MappingNode:
	default:
		return nil, l.errorf(n, "expected an expression")
	}

	if len(n.Content) != 2 {
		return nil, l.errorf(n, "expression must have exactly one key")
	}
	kind, body := n.Content[0].Value, n.Content[1]
	switch kind {
	case "string":
		if body.Kind != yaml.ScalarNode {
			return nil, l.errorf(body, "string literal must be a scalar")
		}
		return &object_tree.StringLiteral{Value: body.Value}, nil
	case "number":
		return c.number(body)
	case "bool":
		b, err := l.boolValue(body)
		if err != nil {
			return nil, err
		}
		return &object_tree.BoolLiteral{Value: b}, nil
	case "ref":
		return c.reference(body)
	case "invalid":
		return &object_tree.Invalid{}, nil
	case "binary":
		fields, err := l.mapping(body, "op", "lhs", "rhs")
		if err != nil {
			return nil, err
		}
		e := &object_tree.BinaryExpression{}
		if e.Op, err = l.stringField(fields, "op"); err != nil {
			return nil, err
		}
		if e.LHS, err = c.required(body, fields, "lhs"); err != nil {
			return nil, err
		}
		if e.RHS, err = c.required(body, fields, "rhs"); err != nil {
			return nil, err
		}
		return e, nil
	case "unary":
		fields, err := l.mapping(body, "op", "expr")
		if err != nil {
			return nil, err
		}
		e := &object_tree.UnaryOp{}
		if e.Op, err = l.stringField(fields, "op"); err != nil {
			return nil, err
		}
		if e.Sub, err = c.required(body, fields, "expr"); err != nil {
			return nil, err
		}
		return e, nil
	case "cond":
		fields, err := l.mapping(body, "if", "then", "else")
		if err != nil {
			return nil, err
		}
		e := &object_tree.Condition{}
		if e.Condition, err = c.required(body, fields, "if"); err != nil {
			return nil, err
		}
		if e.TrueExpr, err = c.required(body, fields, "then"); err != nil {
			return nil, err
		}
		if elseNode, ok := fields["else"]; ok {
			if e.FalseExpr, err = c.expression(elseNode); err != nil {
				return nil, err
			}
		}
		return e, nil
	case "call":
		fields, err := l.mapping(body, "fn", "args")
		if err != nil {
			return nil, err
		}
		name, err := l.stringField(fields, "fn")
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, l.errorf(body, "call without fn")
		}
		e := &object_tree.FunctionCall{Function: &object_tree.FunctionReference{Name: name}}
		if args, ok := fields["args"]; ok {
			if e.Arguments, err = c.list(args); err != nil {
				return nil, err
			}
		}
		return e, nil
	case "access":
		fields, err := l.mapping(body, "base", "name")
		if err != nil {
			return nil, err
		}
		e := &object_tree.ObjectAccess{}
		if e.Base, err = c.required(body, fields, "base"); err != nil {
			return nil, err
		}
		if e.Name, err = l.stringField(fields, "name"); err != nil {
			return nil, err
		}
		return e, nil
	case "array":
		values, err := c.list(body)
		if err != nil {
			return nil, err
		}
		return &object_tree.Array{Values: values}, nil
	case "block":
		statements, err := c.list(body)
		if err != nil {
			return nil, err
		}
		return &object_tree.CodeBlock{Statements: statements}, nil
	case "assign":
		fields, err := l.mapping(body, "op", "lhs", "rhs")
		if err != nil {
			return nil, err
		}
		e := &object_tree.SelfAssignment{}
		if e.Op, err = l.stringField(fields, "op"); err != nil {
			return nil, err
		}
		if e.LHS, err = c.required(body, fields, "lhs"); err != nil {
			return nil, err
		}
		if e.RHS, err = c.required(body, fields, "rhs"); err != nil {
			return nil, err
		}
		return e, nil
	case "cast":
		fields, err := l.mapping(body, "expr", "to")
		if err != nil {
			return nil, err
		}
		e := &object_tree.Cast{}
		if e.From, err = c.required(body, fields, "expr"); err != nil {
			return nil, err
		}
		if e.To, err = l.stringField(fields, "to"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, l.errorf(n.Content[0], "unknown expression kind %q", kind)
}

func (c *exprContext) required(parent *yaml.Node, fields map[string]*yaml.Node, key string) (object_tree.Expression, error) {
	n, ok := fields[key]
	if !ok {
		return nil, c.loader.errorf(parent, "missing %q", key)
	}
	return c.expression(n)
}

func (c *exprContext) list(n *yaml.Node) ([]object_tree.Expression, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, c.loader.errorf(n, "expected a list of expressions")
	}
	exprs := make([]object_tree.Expression, 0, len(n.Content))
	for _, item := range n.Content {
		e, err := c.expression(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// number parses a literal such as 10, 1.5 or 100px.
func (c *exprContext) number(n *yaml.Node) (object_tree.Expression, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, c.loader.errorf(n, "number literal must be a scalar")
	}
	s := strings.TrimSpace(n.Value)
	for end := len(s); end > 0; end-- {
		if end < len(s) && !isUnitChar(s[end]) {
			break
		}
		if value, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return &object_tree.NumberLiteral{Value: value, Unit: s[end:]}, nil
		}
	}
	return nil, c.loader.errorf(n, "invalid number %q", n.Value)
}

func isUnitChar(ch byte) bool {
	return ch == '%' || (ch >= 'a' && ch <= 'z')
}
