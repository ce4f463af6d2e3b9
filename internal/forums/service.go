package forums

import (
	"context"

	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/query"
	"forum-api/internal/store"
)

// PermissionShowForums grants read access to forum listings.
const PermissionShowForums = "showForums"

// Collections bundles the stores the service reads from.
type Collections struct {
	Forums      store.Collection[Forum]
	Topics      store.Collection[ForumTopic]
	Discussions store.Collection[ForumDiscussion]
	Comments    store.Collection[DiscussionComment]
	Reactions   store.Collection[ForumReaction]
}

// Service answers forum queries. Every method is scoped by the caller's
// base selector; access rules are applied by the registry built from
// Operations, not by the methods themselves.
type Service struct {
	colls  Collections
	pager  *query.Pager
	logger *zap.Logger
}

// NewService creates a new forum query service
func NewService(colls Collections, pager *query.Pager, logger *zap.Logger) *Service {
	return &Service{colls: colls, pager: pager, logger: logger}
}

func (s *Service) spec(kind query.Kind, scope access.Scope, filters map[string]any) (query.Spec, error) {
	return query.Build(kind, scope.Base(), filters)
}

// detail looks a record up by id within the caller's scope.
func detail[T any](ctx context.Context, s *Service, coll store.Collection[T], kind query.Kind, scope access.Scope, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	spec, err := s.spec(kind, scope, nil)
	if err != nil {
		return nil, err
	}
	if _, scoped := spec.Selector["_id"]; !scoped {
		spec.Selector["_id"] = id
	}
	s.logger.Debug("detail lookup", zap.String("kind", string(kind)), zap.String("id", id))
	return query.First(ctx, coll, spec)
}

// Forums lists forums, most recently modified first.
func (s *Service) Forums(ctx context.Context, scope access.Scope, req query.PageRequest) ([]Forum, error) {
	spec, err := s.spec(query.KindForum, scope, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing forums", zap.Int("page", req.Page), zap.Int("per_page", req.PerPage))
	return query.Paginate(ctx, s.pager, s.colls.Forums, spec, req)
}

func (s *Service) ForumDetail(ctx context.Context, scope access.Scope, id string) (*Forum, error) {
	return detail(ctx, s, s.colls.Forums, query.KindForum, scope, id)
}

func (s *Service) ForumsTotalCount(ctx context.Context, scope access.Scope) (int, error) {
	spec, err := s.spec(query.KindForum, scope, nil)
	if err != nil {
		return 0, err
	}
	return query.Count(ctx, s.colls.Forums, spec)
}

// ForumTopics lists the topics of a forum ordered by title.
func (s *Service) ForumTopics(ctx context.Context, scope access.Scope, forumID string, req query.PageRequest) ([]ForumTopic, error) {
	spec, err := s.spec(query.KindForumTopic, scope, optional("forumId", forumID))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing topics", zap.String("forum_id", forumID), zap.Int("page", req.Page), zap.Int("per_page", req.PerPage))
	return query.Paginate(ctx, s.pager, s.colls.Topics, spec, req)
}

func (s *Service) ForumTopicDetail(ctx context.Context, scope access.Scope, id string) (*ForumTopic, error) {
	return detail(ctx, s, s.colls.Topics, query.KindForumTopic, scope, id)
}

func (s *Service) ForumTopicsTotalCount(ctx context.Context, scope access.Scope, forumID string) (int, error) {
	spec, err := s.spec(query.KindForumTopic, scope, optional("forumId", forumID))
	if err != nil {
		return 0, err
	}
	return query.Count(ctx, s.colls.Topics, spec)
}

// ForumTopicsGetLast returns the newest topic in scope, or nil.
func (s *Service) ForumTopicsGetLast(ctx context.Context, scope access.Scope) (*ForumTopic, error) {
	spec, err := s.spec(query.KindForumTopic, scope, nil)
	if err != nil {
		return nil, err
	}
	spec.Sort = append(store.SortOrder(nil), query.LatestTopicSort...)
	return query.First(ctx, s.colls.Topics, spec)
}

// ForumDiscussions lists the discussions of a topic, newest first.
func (s *Service) ForumDiscussions(ctx context.Context, scope access.Scope, topicID string, req query.PageRequest) ([]ForumDiscussion, error) {
	spec, err := s.spec(query.KindForumDiscussion, scope, optional("topicId", topicID))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing discussions", zap.String("topic_id", topicID), zap.Int("page", req.Page), zap.Int("per_page", req.PerPage))
	return query.Paginate(ctx, s.pager, s.colls.Discussions, spec, req)
}

func (s *Service) ForumDiscussionDetail(ctx context.Context, scope access.Scope, id string) (*ForumDiscussion, error) {
	return detail(ctx, s, s.colls.Discussions, query.KindForumDiscussion, scope, id)
}

func (s *Service) ForumDiscussionsTotalCount(ctx context.Context, scope access.Scope, topicID string) (int, error) {
	spec, err := s.spec(query.KindForumDiscussion, scope, optional("topicId", topicID))
	if err != nil {
		return 0, err
	}
	return query.Count(ctx, s.colls.Discussions, spec)
}

// DiscussionComments returns every comment of a discussion in store order.
func (s *Service) DiscussionComments(ctx context.Context, scope access.Scope, discussionID string) ([]DiscussionComment, error) {
	spec, err := s.spec(query.KindDiscussionComment, scope, optional("discussionId", discussionID))
	if err != nil {
		return nil, err
	}
	return query.All(ctx, s.colls.Comments, spec)
}

func (s *Service) DiscussionCommentsTotalCount(ctx context.Context, scope access.Scope, discussionID string) (int, error) {
	spec, err := s.spec(query.KindDiscussionComment, scope, optional("discussionId", discussionID))
	if err != nil {
		return 0, err
	}
	return query.Count(ctx, s.colls.Comments, spec)
}

// IsUserReactForum reports whether the signed-in user reacted to target.
// An anonymous scope never has a reaction.
func (s *Service) IsUserReactForum(ctx context.Context, scope access.Scope, target ReactionTarget) (bool, error) {
	if !scope.Authenticated() {
		return false, nil
	}
	base := scope.Base()
	base["createdBy"] = scope.UserID()

	spec, err := query.Build(query.KindForumReaction, base, target.filters())
	if err != nil {
		return false, err
	}
	reaction, err := query.First(ctx, s.colls.Reactions, spec)
	if err != nil {
		return false, err
	}
	return reaction != nil, nil
}

func (s *Service) ForumReactionsTotalCount(ctx context.Context, scope access.Scope, target ReactionTarget) (int, error) {
	spec, err := s.spec(query.KindForumReaction, scope, target.filters())
	if err != nil {
		return 0, err
	}
	return query.Count(ctx, s.colls.Reactions, spec)
}

// Ping checks every collection that can report connectivity.
func (s *Service) Ping(ctx context.Context) error {
	for _, c := range []any{s.colls.Forums, s.colls.Topics, s.colls.Discussions, s.colls.Comments, s.colls.Reactions} {
		if p, ok := c.(store.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func optional(field, value string) map[string]any {
	if value == "" {
		return nil
	}
	return map[string]any{field: value}
}
