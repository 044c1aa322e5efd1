// Package object_tree holds the in-memory representation of a parsed document:
// elements organised into components, plus the bound expressions that reference
// properties across elements.
//
// Ownership runs downward: a Component owns its RootElement and an Element owns its
// Children. EnclosingComponent and ParentElement point back up the tree and are only
// lookups; passes recompute them after restructuring.
package object_tree

import (
	"fmt"

	"sixtyfps-go/packages/compiler/src/util"
)

// ElementType is the base type of an element: either a builtin kind or a component.
type ElementType interface {
	isElementType()
	String() string
}

// BuiltinType is a native element kind such as Rectangle or Text.
type BuiltinType struct {
	Name string
}

func (BuiltinType) isElementType() {}

func (b BuiltinType) String() string {
	return b.Name
}

// ComponentType instantiates a component.
type ComponentType struct {
	Component *Component
}

func (ComponentType) isElementType() {}

func (c ComponentType) String() string {
	if c.Component == nil {
		return "<component>"
	}
	return c.Component.ID
}

// ComponentOf returns the component instantiated by t, or nil when t is not a component type.
func ComponentOf(t ElementType) *Component {
	if ct, ok := t.(ComponentType); ok {
		return ct.Component
	}
	return nil
}

// BindingExpression is an expression bound to a property, with its source location.
type BindingExpression struct {
	Expression Expression
	Span       *util.ParseSourceSpan
}

// NewBindingExpression creates a new BindingExpression
func NewBindingExpression(expr Expression, span *util.ParseSourceSpan) *BindingExpression {
	return &BindingExpression{Expression: expr, Span: span}
}

// PropertyDeclaration declares a new property on an element.
type PropertyDeclaration struct {
	PropertyType string
	Node         *util.ParseSourceSpan
	// IsAlias is set for `property <=> other.prop` declarations.
	IsAlias *NamedReference
}

// PropertyAnimation describes how a property animates; its bindings are the animation
// parameters (duration, easing, ...).
type PropertyAnimation struct {
	Bindings map[string]*BindingExpression
	Node     *util.ParseSourceSpan
}

// PropertyAnalysis is filled in by the analysis passes.
type PropertyAnalysis struct {
	IsSet            bool
	IsSetExternally  bool
	IsReadExternally bool
}

// PropertyChange is a property assignment that applies while a state is active.
type PropertyChange struct {
	Target NamedReference
	Value  Expression
}

// State is a named set of property changes guarded by a condition.
type State struct {
	ID              string
	Condition       Expression
	PropertyChanges []PropertyChange
}

// TransitionAnimation animates one property during a transition.
type TransitionAnimation struct {
	Target    NamedReference
	Animation *PropertyAnimation
}

// Transition describes animations played when entering or leaving a state.
type Transition struct {
	IsOut      bool
	StateID    string
	Animations []TransitionAnimation
}

// ListViewInfo marks a list-view repeater and records the viewport properties it drives.
type ListViewInfo struct {
	ViewportY      NamedReference
	ViewportHeight NamedReference
	ViewportWidth  NamedReference
	ListViewHeight NamedReference
	ListViewWidth  NamedReference
}

// RepeatedElementInfo is present on elements created by a `for` or `if` construct.
type RepeatedElementInfo struct {
	Model                Expression
	ModelDataID          string
	IndexID              string
	IsConditionalElement bool
	// IsListView is non-nil when the repeater is a list-view.
	IsListView *ListViewInfo
}

// IsListViewRepeater reports whether the repeater is list-view flavoured.
func (r *RepeatedElementInfo) IsListViewRepeater() bool {
	return r != nil && r.IsListView != nil
}

// LayoutInfoProp holds the horizontal and vertical layout info properties of an element.
type LayoutInfoProp struct {
	Horizontal NamedReference
	Vertical   NamedReference
}

// Element is a node in the object tree.
type Element struct {
	ID       string
	BaseType ElementType
	Bindings map[string]*BindingExpression

	PropertyAnalysis     map[string]PropertyAnalysis
	PropertyDeclarations map[string]*PropertyDeclaration
	PropertyAnimations   map[string]*PropertyAnimation
	States               []*State
	Transitions          []*Transition

	Children []*Element

	Repeated *RepeatedElementInfo

	// EnclosingComponent is the component this element lives in. Not owning.
	EnclosingComponent *Component

	Node *util.ParseSourceSpan

	ChildOfLayout       bool
	LayoutInfoProp      *LayoutInfoProp
	IsFlickableViewport bool
	// ItemIndex is the index of the element in the generated item tree, once known.
	ItemIndex *int
}

// NewElement creates a new Element with an initialized binding table
func NewElement(id string, baseType ElementType) *Element {
	return &Element{
		ID:       id,
		BaseType: baseType,
		Bindings: make(map[string]*BindingExpression),
	}
}

// IsRepeated reports whether the element comes from a `for` or `if` construct.
func (e *Element) IsRepeated() bool {
	return e.Repeated != nil
}

// SetBinding binds name to expr, replacing any previous binding.
func (e *Element) SetBinding(name string, expr Expression) {
	if e.Bindings == nil {
		e.Bindings = make(map[string]*BindingExpression)
	}
	e.Bindings[name] = NewBindingExpression(expr, nil)
}

// AddChild appends child to the element's children.
func (e *Element) AddChild(child *Element) {
	e.Children = append(e.Children, child)
}

func (e *Element) String() string {
	if e.ID != "" {
		return e.ID
	}
	if e.BaseType != nil {
		return fmt.Sprintf("<%s>", e.BaseType)
	}
	return "<element>"
}

// Component is a named, independently instantiable unit.
type Component struct {
	ID          string
	RootElement *Element
	// ParentElement is the repeated element that instantiates this component. It is
	// only set for components created by repeater extraction. Not owning.
	ParentElement *Element
}

// NewComponent creates a component rooted at root and points every element of the
// root subtree at it.
func NewComponent(id string, root *Element) *Component {
	c := &Component{ID: id, RootElement: root}
	RecurseElem(root, func(e *Element) {
		e.EnclosingComponent = c
	})
	return c
}

// IsRepeaterComponent reports whether c was synthesized for a repeated element.
func (c *Component) IsRepeaterComponent() bool {
	return c.ParentElement != nil
}
