package object_tree

import "fmt"

// ModelPropertyName is the reserved name of a repeater's model binding. It names the
// data source of the repeated element itself, not a property of its content.
const ModelPropertyName = "$model"

// NamedReference points at a property of an element.
type NamedReference struct {
	element *Element
	name    string
}

// NewNamedReference creates a new NamedReference
func NewNamedReference(element *Element, name string) NamedReference {
	if element == nil {
		panic(fmt.Sprintf("AssertionError: named reference %q without element", name))
	}
	return NamedReference{element: element, name: name}
}

// Element returns the element that owns the referenced property.
func (nr NamedReference) Element() *Element {
	return nr.element
}

// Name returns the property name.
func (nr NamedReference) Name() string {
	return nr.name
}

// IsZero reports whether the reference was never set.
func (nr NamedReference) IsZero() bool {
	return nr.element == nil
}

// Equal reports whether both references name the same property of the same element.
func (nr NamedReference) Equal(other NamedReference) bool {
	return nr.element == other.element && nr.name == other.name
}

func (nr NamedReference) String() string {
	if nr.element == nil {
		return "<unset>." + nr.name
	}
	return fmt.Sprintf("%s.%s", nr.element, nr.name)
}
