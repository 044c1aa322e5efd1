package passes

import (
	"errors"
	"fmt"

	"sixtyfps-go/packages/compiler/src/object_tree"
)

// InvariantError is a violation of the shape ProcessRepeaterComponents guarantees.
// It always denotes a compiler bug, never a problem in user input.
type InvariantError struct {
	Element *object_tree.Element
	Msg     string
}

func (e *InvariantError) Error() string {
	if e.Element != nil && e.Element.Node != nil && e.Element.Node.Start != nil {
		return fmt.Sprintf("internal error: %s: %s (%s)", e.Element, e.Msg, e.Element.Node.Start)
	}
	return fmt.Sprintf("internal error: %s: %s", e.Element, e.Msg)
}

// CheckRepeaterInvariants verifies that every repeated element reachable from comp is
// a hollow instantiation of its own sub-component, that sub-component elements know
// their enclosing component, and that no reference other than $model targets a
// repeated element.
func CheckRepeaterInvariants(comp *object_tree.Component) error {
	var errs []error
	fail := func(elem *object_tree.Element, format string, args ...any) {
		errs = append(errs, &InvariantError{Element: elem, Msg: fmt.Sprintf(format, args...)})
	}

	checkEnclosing(comp, fail)
	object_tree.RecurseElemIncludingSubComponents(comp, func(e *object_tree.Element) {
		if e.Repeated == nil {
			return
		}
		sub := object_tree.ComponentOf(e.BaseType)
		switch {
		case sub == nil:
			fail(e, "repeated element is not a component instantiation")
			return
		case sub.ParentElement != e:
			fail(e, "repeater component does not point back to its instantiation site")
		case sub.RootElement == nil:
			fail(e, "repeater component has no root element")
			return
		case sub.RootElement.Repeated != nil:
			fail(e, "repeater component root is itself repeated")
		}
		if len(e.Children) != 0 {
			fail(e, "repeated element still has %d children", len(e.Children))
		}
		if len(e.Bindings) != 0 {
			fail(e, "repeated element still has %d bindings", len(e.Bindings))
		}
		if len(e.PropertyDeclarations) != 0 || len(e.PropertyAnimations) != 0 ||
			len(e.States) != 0 || len(e.Transitions) != 0 {
			fail(e, "repeated element still carries property metadata")
		}
		if e.Repeated.IsListViewRepeater() && !sub.RootElement.ChildOfLayout {
			fail(e, "list-view repeater root is not a child of layout")
		}
		checkEnclosing(sub, fail)
	})

	object_tree.VisitAllNamedReferences(comp, func(nr *object_tree.NamedReference) {
		if nr.Name() == object_tree.ModelPropertyName {
			return
		}
		if target := nr.Element(); target.Repeated != nil {
			fail(target, "reference to %q still targets the repeated element", nr.Name())
		}
	})

	return errors.Join(errs...)
}

func checkEnclosing(comp *object_tree.Component, fail func(*object_tree.Element, string, ...any)) {
	object_tree.RecurseElem(comp.RootElement, func(e *object_tree.Element) {
		if e.EnclosingComponent != comp {
			fail(e, "enclosing component is not the component that owns the element")
		}
	})
}
