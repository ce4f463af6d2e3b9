package query

import (
	"forum-api/internal/store"
)

// Spec is a shaped read: the selector to match and the order to list in.
type Spec struct {
	Kind     Kind
	Selector store.Selector
	Sort     store.SortOrder
}

// Build merges caller filters into the base selector for kind.
//
// Only the kind's allowed filter fields are taken from filters; anything
// else is dropped. Nil filter values are treated as absent. A field present
// in base is never overridden, so scoping fields cannot be widened by the
// caller. The returned selector is a fresh map.
func Build(kind Kind, base store.Selector, filters map[string]any) (Spec, error) {
	rule, ok := kindRules[kind]
	if !ok {
		return Spec{}, unknownKind(kind)
	}

	sel := make(store.Selector, len(base)+len(rule.filters))
	for _, field := range rule.filters {
		if v, ok := filters[field]; ok && v != nil {
			sel[field] = v
		}
	}
	for k, v := range base {
		sel[k] = v
	}

	return Spec{
		Kind:     kind,
		Selector: sel,
		Sort:     kind.DefaultSort(),
	}, nil
}
