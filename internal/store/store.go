// Package store describes the document store the forum queries run against.
//
// The forum layer never writes; a Collection only has to answer windowed
// finds, single lookups and counts for an equality selector. Backends live
// in the memory, mongodb and dynamodb subpackages.
package store

import (
	"context"
)

// Selector is a set of field equality constraints combined with AND.
type Selector map[string]any

// Clone returns a shallow copy that can be modified independently.
func (s Selector) Clone() Selector {
	out := make(Selector, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Direction of a sort field.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortField orders results by one field.
type SortField struct {
	Field     string
	Direction Direction
}

// SortOrder is applied left to right. An empty order means natural store order.
type SortOrder []SortField

// Query is a fully shaped read. Limit 0 means no limit.
type Query struct {
	Selector Selector
	Sort     SortOrder
	Skip     int
	Limit    int
}

// Document exposes record fields by their stored name so that backends
// without server side sorting can order and filter records in process.
type Document interface {
	Field(name string) (any, bool)
}

// Collection is a read-only view over one kind of record.
type Collection[T any] interface {
	// Find returns the records matching q.Selector ordered by q.Sort and
	// windowed by q.Skip/q.Limit.
	Find(ctx context.Context, q Query) ([]T, error)
	// FindOne returns the first record of the ordered result, or nil when
	// nothing matches. Absence is not an error.
	FindOne(ctx context.Context, q Query) (*T, error)
	// Count returns the number of records matching the selector.
	Count(ctx context.Context, sel Selector) (int64, error)
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
