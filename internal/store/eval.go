package store

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

// Matches reports whether doc satisfies every constraint of sel.
// A missing field only matches a nil constraint.
func Matches(doc Document, sel Selector) bool {
	for field, want := range sel {
		got, ok := doc.Field(field)
		if !ok || got == nil {
			if want != nil {
				return false
			}
			continue
		}
		if !Equal(got, want) {
			return false
		}
	}
	return true
}

// Equal compares two field values, treating numeric kinds and time
// representations as interchangeable.
func Equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two field values. Nil sorts before everything and values
// of unrelated types fall back to comparing their type names.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c, ok := compare(a, b); ok {
		return c
	}
	return strings.Compare(reflect.TypeOf(a).String(), reflect.TypeOf(b).String())
}

func compare(a, b any) (int, bool) {
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb), true
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0, true
			case !va:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// SortDocuments orders docs in place. The sort is stable so records that
// tie on every field keep their natural order.
func SortDocuments[T Document](docs []T, order SortOrder) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range order {
			vi, _ := docs[i].Field(f.Field)
			vj, _ := docs[j].Field(f.Field)
			c := Compare(vi, vj)
			if c == 0 {
				continue
			}
			if f.Direction == Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Window applies skip and limit to an already ordered slice.
func Window[T any](docs []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(docs) {
		return []T{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// Apply runs the in-process part of q (filter, order, window) over docs.
func Apply[T Document](docs []T, q Query) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		if Matches(d, q.Selector) {
			out = append(out, d)
		}
	}
	SortDocuments(out, q.Sort)
	return Window(out, q.Skip, q.Limit)
}
