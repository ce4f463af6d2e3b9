// Package graphql exposes the forum queries over GraphQL.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/forums"
	apperrors "forum-api/pkg/errors"
)

// OperationRecorder counts resolved query fields.
type OperationRecorder interface {
	RecordOperation(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

// Resolver binds query fields to the access registry.
type Resolver struct {
	registry *access.Registry
	recorder OperationRecorder
	logger   *zap.Logger
}

// NewResolver creates a resolver. recorder may be nil.
func NewResolver(registry *access.Registry, recorder OperationRecorder, logger *zap.Logger) *Resolver {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Resolver{registry: registry, recorder: recorder, logger: logger}
}

// field returns a resolve function running the named operation with the
// request's scope.
func (r *Resolver) field(name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		scope := access.FromContext(p.Context)
		result, err := r.registry.Invoke(p.Context, name, scope, access.Args(p.Args))
		if err != nil {
			clientErr := r.clientError(name, err)
			r.recorder.RecordOperation(name, clientErr.code())
			return nil, clientErr
		}
		r.recorder.RecordOperation(name, "ok")
		return result, nil
	}
}

// NewSchema builds the query schema. Every forum operation must be
// present in the registry.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	fields := graphql.Fields{
		forums.OpForums: {
			Type:    graphql.NewList(forumType),
			Args:    withPage(nil),
			Resolve: r.field(forums.OpForums),
		},
		forums.OpForumDetail: {
			Type:    forumType,
			Args:    idArgs,
			Resolve: r.field(forums.OpForumDetail),
		},
		forums.OpForumsTotalCount: {
			Type:    graphql.Int,
			Resolve: r.field(forums.OpForumsTotalCount),
		},
		forums.OpForumTopics: {
			Type:    graphql.NewList(forumTopicType),
			Args:    withPage(stringArg("forumId")),
			Resolve: r.field(forums.OpForumTopics),
		},
		forums.OpForumTopicDetail: {
			Type:    forumTopicType,
			Args:    idArgs,
			Resolve: r.field(forums.OpForumTopicDetail),
		},
		forums.OpForumTopicsTotalCount: {
			Type:    graphql.Int,
			Args:    stringArg("forumId"),
			Resolve: r.field(forums.OpForumTopicsTotalCount),
		},
		forums.OpForumTopicsGetLast: {
			Type:    forumTopicType,
			Resolve: r.field(forums.OpForumTopicsGetLast),
		},
		forums.OpForumDiscussions: {
			Type:    graphql.NewList(forumDiscussionType),
			Args:    withPage(stringArg("topicId")),
			Resolve: r.field(forums.OpForumDiscussions),
		},
		forums.OpForumDiscussionDetail: {
			Type:    forumDiscussionType,
			Args:    idArgs,
			Resolve: r.field(forums.OpForumDiscussionDetail),
		},
		forums.OpForumDiscussionsTotalCount: {
			Type:    graphql.Int,
			Args:    stringArg("topicId"),
			Resolve: r.field(forums.OpForumDiscussionsTotalCount),
		},
		forums.OpDiscussionComments: {
			Type:    graphql.NewList(discussionCommentType),
			Args:    stringArg("discussionId"),
			Resolve: r.field(forums.OpDiscussionComments),
		},
		forums.OpDiscussionCommentsTotalCount: {
			Type:    graphql.Int,
			Args:    stringArg("discussionId"),
			Resolve: r.field(forums.OpDiscussionCommentsTotalCount),
		},
		forums.OpIsUserReactForum: {
			Type:    graphql.Boolean,
			Args:    reactionArgs,
			Resolve: r.field(forums.OpIsUserReactForum),
		},
		forums.OpForumReactionsTotalCount: {
			Type:    graphql.Int,
			Args:    reactionArgs,
			Resolve: r.field(forums.OpForumReactionsTotalCount),
		},
	}

	for name := range fields {
		if _, ok := r.registry.Rule(name); !ok {
			return graphql.Schema{}, fmt.Errorf("query field %q has no registered operation", name)
		}
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: fields,
		}),
	})
}

// clientErr is what a GraphQL client sees: a message and extensions
// carrying the error code. Causes stay in the logs.
type clientErr struct {
	message    string
	extensions map[string]interface{}
}

func (e *clientErr) Error() string { return e.message }

func (e *clientErr) Extensions() map[string]interface{} { return e.extensions }

func (e *clientErr) code() string {
	code, _ := e.extensions["code"].(string)
	return code
}

func (r *Resolver) clientError(operation string, err error) *clientErr {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		r.logger.Error("store failure",
			zap.String("operation", operation),
			zap.Error(err),
		)
		appErr = apperrors.NewUpstreamError("store", nil)
	} else if appErr.HTTPStatus >= 500 {
		r.logger.Error("operation failed",
			zap.String("operation", operation),
			zap.String("error_type", string(appErr.Type)),
			zap.Error(err),
		)
	}
	return &clientErr{message: appErr.Message, extensions: appErr.Extensions()}
}
