package di

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/graphql-go/graphql"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/config"
	"forum-api/internal/forums"
	gql "forum-api/internal/interfaces/graphql"
	"forum-api/internal/interfaces/http/rest"
	"forum-api/internal/observability"
	"forum-api/internal/query"
	"forum-api/internal/store"
	"forum-api/internal/store/dynamodb"
	"forum-api/internal/store/mongodb"
	"forum-api/pkg/auth"
	apperrors "forum-api/pkg/errors"
)

const serviceName = "forum-api"

// Tracing reports whether a tracer provider was installed.
type Tracing struct {
	Enabled bool
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.LogLevel, cfg.Environment)
}

// ProvideRuntime holds the reloadable configuration.
func ProvideRuntime(cfg *config.Config) *config.Runtime {
	return config.NewRuntime(cfg.Dynamic)
}

// ProvideConfigWatcher reloads the config file on change. It returns nil
// when no file was configured.
func ProvideConfigWatcher(cfg *config.Config, runtime *config.Runtime, metrics *observability.Collector, logger *zap.Logger) (*config.Watcher, func(), error) {
	if cfg.ConfigFile == "" {
		return nil, func() {}, nil
	}
	watcher, err := config.NewWatcher(cfg.ConfigFile, runtime, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch config file: %w", err)
	}
	if metrics != nil {
		watcher.OnChange(func(config.Dynamic) { metrics.RecordConfigReload() })
	}
	watcher.Start()
	return watcher, watcher.Stop, nil
}

// ProvideMetrics returns nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("forum_api")
}

// ProvideTracing installs the OTLP tracer provider when enabled.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Tracing, func(), error) {
	if !cfg.EnableTracing {
		return Tracing{}, func() {}, nil
	}
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return Tracing{}, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return Tracing{Enabled: true}, cleanup, nil
}

// ProvideCollections opens the configured backend and wraps every
// collection with tracing, metrics and, when enabled, a circuit breaker.
func ProvideCollections(ctx context.Context, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (forums.Collections, func(), error) {
	var (
		colls   forums.Collections
		cleanup = func() {}
	)

	switch cfg.StoreBackend {
	case config.BackendMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoDBURI)
		if err != nil {
			return forums.Collections{}, nil, err
		}
		db := client.Database(cfg.MongoDBDatabase)
		colls = forums.Collections{
			Forums:      mongodb.NewCollection[forums.Forum](db, forums.CollectionForums, logger),
			Topics:      mongodb.NewCollection[forums.ForumTopic](db, forums.CollectionTopics, logger),
			Discussions: mongodb.NewCollection[forums.ForumDiscussion](db, forums.CollectionDiscussions, logger),
			Comments:    mongodb.NewCollection[forums.DiscussionComment](db, forums.CollectionComments, logger),
			Reactions:   mongodb.NewCollection[forums.ForumReaction](db, forums.CollectionReactions, logger),
		}
		cleanup = func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("MongoDB disconnect failed", zap.Error(err))
			}
		}

	case config.BackendDynamoDB:
		client, err := provideDynamoDBClient(ctx, cfg)
		if err != nil {
			return forums.Collections{}, nil, err
		}
		table := cfg.DynamoDBTable
		colls = forums.Collections{
			Forums:      dynamodb.NewCollection[forums.Forum](client, table, forums.CollectionForums, logger),
			Topics:      dynamodb.NewCollection[forums.ForumTopic](client, table, forums.CollectionTopics, logger),
			Discussions: dynamodb.NewCollection[forums.ForumDiscussion](client, table, forums.CollectionDiscussions, logger),
			Comments:    dynamodb.NewCollection[forums.DiscussionComment](client, table, forums.CollectionComments, logger),
			Reactions:   dynamodb.NewCollection[forums.ForumReaction](client, table, forums.CollectionReactions, logger),
		}

	default:
		seed, err := forums.LoadSeed(cfg.SeedFile)
		if err != nil {
			return forums.Collections{}, nil, err
		}
		colls = seed.MemoryCollections()
		logger.Info("Using in-memory store",
			zap.String("seed_file", cfg.SeedFile),
			zap.Int("forums", len(seed.Forums)),
		)
	}

	return instrumentCollections(colls, cfg, metrics, logger), cleanup, nil
}

func provideDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = &cfg.DynamoDBEndpoint
		}
	}), nil
}

func instrumentCollections(colls forums.Collections, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) forums.Collections {
	options := func(name string) []store.InstrumentOption {
		var opts []store.InstrumentOption
		if metrics != nil {
			opts = append(opts, store.WithRecorder(metrics))
		}
		if cfg.EnableCircuitBreaker {
			opts = append(opts, store.WithBreaker(breaker(name, logger)))
		}
		return opts
	}

	return forums.Collections{
		Forums:      store.Instrument(colls.Forums, forums.CollectionForums, logger, options(forums.CollectionForums)...),
		Topics:      store.Instrument(colls.Topics, forums.CollectionTopics, logger, options(forums.CollectionTopics)...),
		Discussions: store.Instrument(colls.Discussions, forums.CollectionDiscussions, logger, options(forums.CollectionDiscussions)...),
		Comments:    store.Instrument(colls.Comments, forums.CollectionComments, logger, options(forums.CollectionComments)...),
		Reactions:   store.Instrument(colls.Reactions, forums.CollectionReactions, logger, options(forums.CollectionReactions)...),
	}
}

func breaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return store.NewBreaker(name, store.DefaultBreakerSettings(), logger)
}

// ProvidePager reads page limits from the runtime config on every call.
func ProvidePager(runtime *config.Runtime) *query.Pager {
	return query.NewPager(func() query.Limits {
		p := runtime.Load().Pagination
		return query.Limits{DefaultPerPage: p.DefaultPerPage, MaxPerPage: p.MaxPerPage}
	})
}

// ProvideService creates the forum query service.
func ProvideService(colls forums.Collections, pager *query.Pager, logger *zap.Logger) *forums.Service {
	return forums.NewService(colls, pager, logger)
}

// ProvideRegistry registers every forum operation behind its access rule.
func ProvideRegistry(svc *forums.Service, logger *zap.Logger) (*access.Registry, error) {
	return access.NewRegistry(logger, svc.Operations()...)
}

// ProvideScopeResolver reads role grants from the runtime config.
func ProvideScopeResolver(runtime *config.Runtime) *access.Resolver {
	return access.NewResolver(func() access.RolePermissions {
		return access.RolePermissions(runtime.Load().Roles)
	})
}

// ProvideSchema builds the GraphQL schema over the registry.
func ProvideSchema(registry *access.Registry, metrics *observability.Collector, logger *zap.Logger) (graphql.Schema, error) {
	var recorder gql.OperationRecorder
	if metrics != nil {
		recorder = metrics
	}
	return gql.NewSchema(gql.NewResolver(registry, recorder, logger))
}

// ProvideGraphQLHandler serves the schema over HTTP.
func ProvideGraphQLHandler(schema graphql.Schema, logger *zap.Logger) *gql.Handler {
	return gql.NewHandler(schema, logger)
}

// ProvideJWTValidator returns nil when no secret is configured, in which
// case every bearer token is rejected.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; all requests are anonymous")
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
}

// ProvideErrorHandler creates the HTTP error writer.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter assembles the HTTP surface.
func ProvideRouter(
	cfg *config.Config,
	graphqlHandler *gql.Handler,
	svc *forums.Service,
	validator *auth.JWTValidator,
	resolver *access.Resolver,
	errs *apperrors.ErrorHandler,
	metrics *observability.Collector,
	tracing Tracing,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(graphqlHandler, svc, validator, resolver, errs, rest.Options{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		EnableTracing:  tracing.Enabled,
		Metrics:        metrics,
	}, logger)
}

// ProvideHTTPHandler builds the routes.
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
