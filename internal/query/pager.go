package query

import (
	"context"

	"forum-api/internal/store"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PageRequest asks for a 1-based page. Zero values mean "use the default".
type PageRequest struct {
	Page    int
	PerPage int
}

// Limits bounds page sizes.
type Limits struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultLimits returns the stock page size bounds.
func DefaultLimits() Limits {
	return Limits{DefaultPerPage: DefaultPerPage, MaxPerPage: MaxPerPage}
}

// Normalize applies defaults and clamps: a page below 1 becomes 1, a
// perPage below 1 becomes the default and a perPage above the maximum
// becomes the maximum.
func (l Limits) Normalize(req PageRequest) PageRequest {
	def, ceiling := l.DefaultPerPage, l.MaxPerPage
	if def < 1 {
		def = DefaultPerPage
	}
	if ceiling < 1 {
		ceiling = MaxPerPage
	}
	if def > ceiling {
		def = ceiling
	}

	if req.Page < 1 {
		req.Page = 1
	}
	switch {
	case req.PerPage < 1:
		req.PerPage = def
	case req.PerPage > ceiling:
		req.PerPage = ceiling
	}
	return req
}

// Skip is the number of records before the page.
func (r PageRequest) Skip() int {
	return (r.Page - 1) * r.PerPage
}

// Pager turns specs and page requests into windowed reads.
type Pager struct {
	limits func() Limits
}

// NewPager returns a pager that reads its bounds from limits on every call,
// so reloaded configuration applies to the next request.
func NewPager(limits func() Limits) *Pager {
	if limits == nil {
		limits = DefaultLimits
	}
	return &Pager{limits: limits}
}

// Query builds the windowed store query for spec.
func (p *Pager) Query(spec Spec, req PageRequest) store.Query {
	req = p.limits().Normalize(req)
	return store.Query{
		Selector: spec.Selector,
		Sort:     spec.Sort,
		Skip:     req.Skip(),
		Limit:    req.PerPage,
	}
}

// Paginate returns one page of records matching spec in spec's order.
// A page past the end is an empty slice.
func Paginate[T any](ctx context.Context, p *Pager, coll store.Collection[T], spec Spec, req PageRequest) ([]T, error) {
	docs, err := coll.Find(ctx, p.Query(spec, req))
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// All returns every record matching spec, unwindowed, in spec's order.
func All[T any](ctx context.Context, coll store.Collection[T], spec Spec) ([]T, error) {
	docs, err := coll.Find(ctx, store.Query{Selector: spec.Selector, Sort: spec.Sort})
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// First returns the first record of spec's ordered result, or nil.
func First[T any](ctx context.Context, coll store.Collection[T], spec Spec) (*T, error) {
	return coll.FindOne(ctx, store.Query{Selector: spec.Selector, Sort: spec.Sort})
}

// Count returns how many records match spec, ignoring order and paging.
func Count[T any](ctx context.Context, coll store.Collection[T], spec Spec) (int, error) {
	n, err := coll.Count(ctx, spec.Selector)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
