package passes

import (
	"sixtyfps-go/packages/compiler/src/object_tree"
)

// ProcessRepeaterComponents makes sure every repeated element is a bare instantiation
// of a component: the element's content moves into a new sub-component and references
// to the element's properties are redirected to the root of that sub-component.
func ProcessRepeaterComponents(comp *object_tree.Component) {
	createRepeaterComponents(comp)
	adjustReferences(comp)
}

func createRepeaterComponents(comp *object_tree.Component) {
	object_tree.RecurseElem(comp.RootElement, func(elem *object_tree.Element) {
		if elem.Repeated == nil || isExtracted(elem) {
			return
		}
		isListView := elem.Repeated.IsListViewRepeater()

		root := &object_tree.Element{
			ID:                   elem.ID,
			BaseType:             elem.BaseType,
			Bindings:             elem.Bindings,
			PropertyAnalysis:     elem.PropertyAnalysis,
			Children:             elem.Children,
			PropertyDeclarations: elem.PropertyDeclarations,
			PropertyAnimations:   elem.PropertyAnimations,
			States:               elem.States,
			Transitions:          elem.Transitions,
			Node:                 elem.Node.Clone(),
			ChildOfLayout:        elem.ChildOfLayout || isListView,
			LayoutInfoProp:       elem.LayoutInfoProp,
			IsFlickableViewport:  elem.IsFlickableViewport,
		}
		elem.BaseType = nil
		elem.Bindings = make(map[string]*object_tree.BindingExpression)
		elem.PropertyAnalysis = nil
		elem.Children = nil
		elem.PropertyDeclarations = nil
		elem.PropertyAnimations = nil
		elem.States = nil
		elem.Transitions = nil
		elem.LayoutInfoProp = nil

		if root.Bindings == nil {
			root.Bindings = make(map[string]*object_tree.BindingExpression)
		}

		sub := &object_tree.Component{
			RootElement:   root,
			ParentElement: elem,
		}

		if _, ok := root.Bindings["height"]; isListView && !ok {
			root.SetBinding("height", object_tree.NewPropertyReference(root, "preferred_height"))
		}

		object_tree.RecurseElem(root, func(e *object_tree.Element) {
			e.EnclosingComponent = sub
		})
		createRepeaterComponents(sub)
		elem.BaseType = object_tree.ComponentType{Component: sub}
	})
}

// isExtracted reports whether elem is already the hollow instantiation site of its
// own repeater component.
func isExtracted(elem *object_tree.Element) bool {
	sub := object_tree.ComponentOf(elem.BaseType)
	return sub != nil && sub.ParentElement == elem
}

// adjustReferences makes references to properties of a repeated element point to the
// root element of the component created for it.
func adjustReferences(comp *object_tree.Component) {
	object_tree.VisitAllNamedReferences(comp, func(nr *object_tree.NamedReference) {
		if nr.Name() == object_tree.ModelPropertyName {
			return
		}
		e := nr.Element()
		if e.Repeated == nil {
			return
		}
		if sub := object_tree.ComponentOf(e.BaseType); sub != nil {
			*nr = object_tree.NewNamedReference(sub.RootElement, nr.Name())
		}
	})
}
