// Package memory is an in-process Collection used by tests and local runs.
package memory

import (
	"context"
	"sync"

	"forum-api/internal/store"
)

// Collection keeps records in insertion order, which is its natural order.
type Collection[T store.Document] struct {
	mu   sync.RWMutex
	docs []T
	err  error
}

// NewCollection returns a collection seeded with docs.
func NewCollection[T store.Document](docs ...T) *Collection[T] {
	c := &Collection[T]{}
	c.docs = append(c.docs, docs...)
	return c
}

// Insert appends records.
func (c *Collection[T]) Insert(docs ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, docs...)
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (c *Collection[T]) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *Collection[T]) snapshot() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]T, len(c.docs))
	copy(out, c.docs)
	return out, nil
}

func (c *Collection[T]) Find(ctx context.Context, q store.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return store.Apply(docs, q), nil
}

func (c *Collection[T]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	q.Skip, q.Limit = 0, 1
	docs, err := c.Find(ctx, q)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return &docs[0], nil
}

func (c *Collection[T]) Count(ctx context.Context, sel store.Selector) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := c.snapshot()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, d := range docs {
		if store.Matches(d, sel) {
			n++
		}
	}
	return n, nil
}

func (c *Collection[T]) Ping(ctx context.Context) error {
	_, err := c.snapshot()
	return err
}
