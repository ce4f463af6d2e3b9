package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "forum-api/pkg/errors"
)

// Recorder receives one observation per store call.
type Recorder interface {
	RecordStoreCall(collection, operation string, duration time.Duration, err error)
}

// BreakerSettings configures the optional circuit breaker of an
// instrumented collection.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings mirrors the thresholds used by the HTTP layer.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// NewBreaker builds a gobreaker instance for the named collection.
func NewBreaker(name string, s BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				zap.String("collection", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Cancelled requests say nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Instrumented decorates a Collection with tracing, metrics and an optional
// circuit breaker. Errors from the wrapped collection are returned as is;
// only a rejection by an open breaker produces a new error.
type Instrumented[T any] struct {
	next     Collection[T]
	name     string
	recorder Recorder
	breaker  *gobreaker.CircuitBreaker
	tracer   trace.Tracer
	logger   *zap.Logger
}

// InstrumentOption customises an Instrumented collection.
type InstrumentOption func(*instrumentOptions)

type instrumentOptions struct {
	recorder Recorder
	breaker  *gobreaker.CircuitBreaker
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) InstrumentOption {
	return func(o *instrumentOptions) { o.recorder = r }
}

// WithBreaker attaches a circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker) InstrumentOption {
	return func(o *instrumentOptions) { o.breaker = cb }
}

// Instrument wraps next.
func Instrument[T any](next Collection[T], name string, logger *zap.Logger, opts ...InstrumentOption) *Instrumented[T] {
	var o instrumentOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Instrumented[T]{
		next:     next,
		name:     name,
		recorder: o.recorder,
		breaker:  o.breaker,
		tracer:   otel.Tracer("forum-api/store"),
		logger:   logger,
	}
}

func (c *Instrumented[T]) Find(ctx context.Context, q Query) ([]T, error) {
	var out []T
	err := c.observe(ctx, "find", q.Selector, func(ctx context.Context) error {
		var err error
		out, err = c.next.Find(ctx, q)
		return err
	})
	return out, err
}

func (c *Instrumented[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	var out *T
	err := c.observe(ctx, "find_one", q.Selector, func(ctx context.Context) error {
		var err error
		out, err = c.next.FindOne(ctx, q)
		return err
	})
	return out, err
}

func (c *Instrumented[T]) Count(ctx context.Context, sel Selector) (int64, error) {
	var out int64
	err := c.observe(ctx, "count", sel, func(ctx context.Context) error {
		var err error
		out, err = c.next.Count(ctx, sel)
		return err
	})
	return out, err
}

// Ping forwards to the wrapped collection when it supports it.
func (c *Instrumented[T]) Ping(ctx context.Context) error {
	if p, ok := c.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *Instrumented[T]) observe(ctx context.Context, op string, sel Selector, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "store."+op, trace.WithAttributes(
		attribute.String("db.collection", c.name),
		attribute.Int("db.selector.fields", len(sel)),
	))
	defer span.End()

	start := time.Now()
	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = apperrors.NewUnavailableError(c.name).WithCause(err)
		}
	} else {
		err = fn(ctx)
	}
	duration := time.Since(start)

	if c.recorder != nil {
		c.recorder.RecordStoreCall(c.name, op, duration, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("store call failed",
			zap.String("collection", c.name),
			zap.String("operation", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
	return err
}
