// Package rest mounts the GraphQL endpoint and the operational routes on a
// chi router.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/interfaces/http/rest/middleware"
	"forum-api/internal/observability"
	"forum-api/pkg/auth"
	apperrors "forum-api/pkg/errors"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options controls optional parts of the router.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	EnableTracing  bool
	// Metrics is nil when metrics are disabled.
	Metrics *observability.Collector
}

// Router creates and configures the HTTP router
type Router struct {
	graphql   http.Handler
	store     Pinger
	validator *auth.JWTValidator
	resolver  *access.Resolver
	errors    *apperrors.ErrorHandler
	opts      Options
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	graphql http.Handler,
	store Pinger,
	validator *auth.JWTValidator,
	resolver *access.Resolver,
	errs *apperrors.ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		graphql:   graphql,
		store:     store,
		validator: validator,
		resolver:  resolver,
		errors:    errs,
		opts:      opts,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Recovery(rt.errors, rt.logger))
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.opts.ServiceName))
	}
	if rt.opts.Metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.opts.Metrics))
	}

	origins := rt.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.resolver, rt.errors, rt.logger))
		r.Method(http.MethodGet, "/graphql", rt.graphql)
		r.Method(http.MethodPost, "/graphql", rt.graphql)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := rt.store.Ping(ctx); err != nil {
		rt.errors.Handle(w, r, apperrors.NewUnavailableError("store").WithCause(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
