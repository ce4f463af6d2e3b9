package forums

import (
	"context"

	"forum-api/internal/access"
)

// Operation names as exposed on the query root.
const (
	OpForums                       = "forums"
	OpForumDetail                  = "forumDetail"
	OpForumsTotalCount             = "forumsTotalCount"
	OpForumTopics                  = "forumTopics"
	OpForumTopicDetail             = "forumTopicDetail"
	OpForumTopicsTotalCount        = "forumTopicsTotalCount"
	OpForumTopicsGetLast           = "forumTopicsGetLast"
	OpForumDiscussions             = "forumDiscussions"
	OpForumDiscussionDetail        = "forumDiscussionDetail"
	OpForumDiscussionsTotalCount   = "forumDiscussionsTotalCount"
	OpDiscussionComments           = "discussionComments"
	OpDiscussionCommentsTotalCount = "discussionCommentsTotalCount"
	OpIsUserReactForum             = "isUserReactForum"
	OpForumReactionsTotalCount     = "forumReactionsTotalCount"
)

// Operations is the full table of forum queries with their access rules.
func (s *Service) Operations() []access.Entry {
	showForums := access.Permission(PermissionShowForums)

	return []access.Entry{
		{Name: OpForums, Rule: showForums, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			req, err := pageArgs(args)
			if err != nil {
				return nil, err
			}
			return s.Forums(ctx, scope, req)
		}},
		{Name: OpForumDetail, Rule: access.Public, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			id, err := stringArg(args, "_id")
			if err != nil {
				return nil, err
			}
			return absentAsNil(s.ForumDetail(ctx, scope, id))
		}},
		{Name: OpForumsTotalCount, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, _ access.Args) (any, error) {
			return s.ForumsTotalCount(ctx, scope)
		}},

		{Name: OpForumTopics, Rule: showForums, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			req, err := pageArgs(args)
			if err != nil {
				return nil, err
			}
			forumID, err := stringArg(args, "forumId")
			if err != nil {
				return nil, err
			}
			return s.ForumTopics(ctx, scope, forumID, req)
		}},
		{Name: OpForumTopicDetail, Rule: access.Public, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			id, err := stringArg(args, "_id")
			if err != nil {
				return nil, err
			}
			return absentAsNil(s.ForumTopicDetail(ctx, scope, id))
		}},
		{Name: OpForumTopicsTotalCount, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			forumID, err := stringArg(args, "forumId")
			if err != nil {
				return nil, err
			}
			return s.ForumTopicsTotalCount(ctx, scope, forumID)
		}},
		{Name: OpForumTopicsGetLast, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, _ access.Args) (any, error) {
			return absentAsNil(s.ForumTopicsGetLast(ctx, scope))
		}},

		{Name: OpForumDiscussions, Rule: showForums, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			req, err := pageArgs(args)
			if err != nil {
				return nil, err
			}
			topicID, err := stringArg(args, "topicId")
			if err != nil {
				return nil, err
			}
			return s.ForumDiscussions(ctx, scope, topicID, req)
		}},
		{Name: OpForumDiscussionDetail, Rule: access.Public, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			id, err := stringArg(args, "_id")
			if err != nil {
				return nil, err
			}
			return absentAsNil(s.ForumDiscussionDetail(ctx, scope, id))
		}},
		{Name: OpForumDiscussionsTotalCount, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			topicID, err := stringArg(args, "topicId")
			if err != nil {
				return nil, err
			}
			return s.ForumDiscussionsTotalCount(ctx, scope, topicID)
		}},

		{Name: OpDiscussionComments, Rule: showForums, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			discussionID, err := stringArg(args, "discussionId")
			if err != nil {
				return nil, err
			}
			return s.DiscussionComments(ctx, scope, discussionID)
		}},
		{Name: OpDiscussionCommentsTotalCount, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			discussionID, err := stringArg(args, "discussionId")
			if err != nil {
				return nil, err
			}
			return s.DiscussionCommentsTotalCount(ctx, scope, discussionID)
		}},

		{Name: OpIsUserReactForum, Rule: showForums, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			target, err := reactionArgs(args)
			if err != nil {
				return nil, err
			}
			return s.IsUserReactForum(ctx, scope, target)
		}},
		{Name: OpForumReactionsTotalCount, Rule: access.LoginRequired, Op: func(ctx context.Context, scope access.Scope, args access.Args) (any, error) {
			target, err := reactionArgs(args)
			if err != nil {
				return nil, err
			}
			return s.ForumReactionsTotalCount(ctx, scope, target)
		}},
	}
}

// absentAsNil turns a nil record pointer into an untyped nil so callers
// checking result == nil see an absent record.
func absentAsNil[T any](v *T, err error) (any, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}
