// Package mongodb serves forum collections from MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"forum-api/internal/store"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Collection pushes selector, sort, skip and limit down to the server.
// T must decode from BSON.
type Collection[T any] struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewCollection binds a collection of db.
func NewCollection[T any](db *mongo.Database, name string, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name), logger: logger}
}

// Filter converts a selector into a BSON filter document.
func Filter(sel store.Selector) bson.M {
	filter := bson.M{}
	for k, v := range sel {
		filter[k] = v
	}
	return filter
}

// SortDocument converts a sort order into an ordered BSON document.
func SortDocument(order store.SortOrder) bson.D {
	d := make(bson.D, 0, len(order))
	for _, f := range order {
		d = append(d, bson.E{Key: f.Field, Value: int(f.Direction)})
	}
	return d
}

func (c *Collection[T]) Find(ctx context.Context, q store.Query) ([]T, error) {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(SortDocument(q.Sort))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	c.logger.Debug("mongodb find",
		zap.String("collection", c.coll.Name()),
		zap.Any("filter", q.Selector),
		zap.Int("skip", q.Skip),
		zap.Int("limit", q.Limit),
	)

	cursor, err := c.coll.Find(ctx, Filter(q.Selector), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, q store.Query) (*T, error) {
	opts := options.FindOne()
	if len(q.Sort) > 0 {
		opts.SetSort(SortDocument(q.Sort))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}

	var doc T
	err := c.coll.FindOne(ctx, Filter(q.Selector), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", c.coll.Name(), err)
	}
	return &doc, nil
}

func (c *Collection[T]) Count(ctx context.Context, sel store.Selector) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, Filter(sel))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

func (c *Collection[T]) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, readpref.Primary())
}
