package object_tree

import "sort"

// RecurseElem calls vis on elem and then on every descendant, depth first in child
// order. Children are read after vis returns, so vis may take them.
// It does not descend into sub-components.
func RecurseElem(elem *Element, vis func(*Element)) {
	if elem == nil {
		return
	}
	vis(elem)
	for _, child := range elem.Children {
		RecurseElem(child, vis)
	}
}

// RecurseElemIncludingSubComponents is like RecurseElem over comp's root, but also
// descends into the component instantiated by every repeated element.
func RecurseElemIncludingSubComponents(comp *Component, vis func(*Element)) {
	RecurseElem(comp.RootElement, func(e *Element) {
		vis(e)
		if e.Repeated == nil {
			return
		}
		if sub := ComponentOf(e.BaseType); sub != nil && sub.ParentElement == e {
			RecurseElemIncludingSubComponents(sub, vis)
		}
	})
}

// sortedKeys keeps visiting order stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VisitElementExpressions calls vis on every expression slot owned by elem: bindings,
// animation parameters, state conditions and values, and the repeater model.
func VisitElementExpressions(elem *Element, vis func(*Expression)) {
	for _, name := range sortedKeys(elem.Bindings) {
		if b := elem.Bindings[name]; b != nil && b.Expression != nil {
			vis(&b.Expression)
		}
	}
	for _, name := range sortedKeys(elem.PropertyAnimations) {
		visitAnimationExpressions(elem.PropertyAnimations[name], vis)
	}
	for _, state := range elem.States {
		if state.Condition != nil {
			vis(&state.Condition)
		}
		for i := range state.PropertyChanges {
			if state.PropertyChanges[i].Value != nil {
				vis(&state.PropertyChanges[i].Value)
			}
		}
	}
	for _, transition := range elem.Transitions {
		for _, anim := range transition.Animations {
			visitAnimationExpressions(anim.Animation, vis)
		}
	}
	if elem.Repeated != nil && elem.Repeated.Model != nil {
		vis(&elem.Repeated.Model)
	}
}

func visitAnimationExpressions(anim *PropertyAnimation, vis func(*Expression)) {
	if anim == nil {
		return
	}
	for _, name := range sortedKeys(anim.Bindings) {
		if b := anim.Bindings[name]; b != nil && b.Expression != nil {
			vis(&b.Expression)
		}
	}
}

// VisitNamedReferencesInExpression calls vis on every set named reference inside *expr.
func VisitNamedReferencesInExpression(expr *Expression, vis func(*NamedReference)) {
	if *expr == nil {
		return
	}
	if pr, ok := (*expr).(*PropertyReference); ok {
		if !pr.Ref.IsZero() {
			vis(&pr.Ref)
		}
		return
	}
	VisitSubExpressions(*expr, func(sub *Expression) {
		VisitNamedReferencesInExpression(sub, vis)
	})
}

// VisitElementNamedReferences calls vis on every named reference held by elem, both
// inside its expressions and in its direct reference slots.
func VisitElementNamedReferences(elem *Element, vis func(*NamedReference)) {
	VisitElementExpressions(elem, func(expr *Expression) {
		VisitNamedReferencesInExpression(expr, vis)
	})
	visitSet := func(nr *NamedReference) {
		if !nr.IsZero() {
			vis(nr)
		}
	}
	for _, name := range sortedKeys(elem.PropertyDeclarations) {
		if decl := elem.PropertyDeclarations[name]; decl != nil && decl.IsAlias != nil {
			visitSet(decl.IsAlias)
		}
	}
	for _, state := range elem.States {
		for i := range state.PropertyChanges {
			visitSet(&state.PropertyChanges[i].Target)
		}
	}
	for _, transition := range elem.Transitions {
		for i := range transition.Animations {
			visitSet(&transition.Animations[i].Target)
		}
	}
	if lip := elem.LayoutInfoProp; lip != nil {
		visitSet(&lip.Horizontal)
		visitSet(&lip.Vertical)
	}
	if elem.Repeated != nil && elem.Repeated.IsListView != nil {
		lv := elem.Repeated.IsListView
		visitSet(&lv.ViewportY)
		visitSet(&lv.ViewportHeight)
		visitSet(&lv.ViewportWidth)
		visitSet(&lv.ListViewHeight)
		visitSet(&lv.ListViewWidth)
	}
}

// VisitAllNamedReferences calls vis on every named reference reachable from comp,
// including the sub-components of repeated elements. vis may overwrite the reference.
func VisitAllNamedReferences(comp *Component, vis func(*NamedReference)) {
	RecurseElemIncludingSubComponents(comp, func(e *Element) {
		VisitElementNamedReferences(e, vis)
	})
}
