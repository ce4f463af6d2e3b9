package forums

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/query"
	"forum-api/internal/store"
	"forum-api/internal/store/memory"
	apperrors "forum-api/pkg/errors"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	forums      *memory.Collection[Forum]
	topics      *memory.Collection[ForumTopic]
	discussions *memory.Collection[ForumDiscussion]
	comments    *memory.Collection[DiscussionComment]
	reactions   *memory.Collection[ForumReaction]
	service     *Service
	registry    *access.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		forums:      memory.NewCollection[Forum](),
		topics:      memory.NewCollection[ForumTopic](),
		discussions: memory.NewCollection[ForumDiscussion](),
		comments:    memory.NewCollection[DiscussionComment](),
		reactions:   memory.NewCollection[ForumReaction](),
	}
	f.service = NewService(Collections{
		Forums:      f.forums,
		Topics:      f.topics,
		Discussions: f.discussions,
		Comments:    f.comments,
		Reactions:   f.reactions,
	}, query.NewPager(nil), zap.NewNop())

	reg, err := access.NewRegistry(zap.NewNop(), f.service.Operations()...)
	require.NoError(t, err)
	f.registry = reg
	return f
}

func (f *fixture) failAll(err error) {
	f.forums.FailWith(err)
	f.topics.FailWith(err)
	f.discussions.FailWith(err)
	f.comments.FailWith(err)
	f.reactions.FailWith(err)
}

func reader() access.Scope {
	return access.NewScope(&access.User{ID: "u1"}, []string{PermissionShowForums}, nil)
}

func memberWithoutGrant() access.Scope {
	return access.NewScope(&access.User{ID: "u1"}, nil, nil)
}

func tenantReader(tenant string) access.Scope {
	return access.NewScope(&access.User{ID: "u1", TenantID: tenant}, []string{PermissionShowForums}, store.Selector{"tenantId": tenant})
}

func TestOperations_CoverEveryQuery(t *testing.T) {
	f := newFixture(t)

	assert.ElementsMatch(t, []string{
		"forums", "forumDetail", "forumsTotalCount",
		"forumTopics", "forumTopicDetail", "forumTopicsTotalCount", "forumTopicsGetLast",
		"forumDiscussions", "forumDiscussionDetail", "forumDiscussionsTotalCount",
		"discussionComments", "discussionCommentsTotalCount",
		"isUserReactForum", "forumReactionsTotalCount",
	}, f.registry.Names())
}

func TestOperations_Rules(t *testing.T) {
	f := newFixture(t)
	showForums := access.Permission(PermissionShowForums)

	want := map[string]access.Rule{
		OpForums:                       showForums,
		OpForumTopics:                  showForums,
		OpForumDiscussions:             showForums,
		OpDiscussionComments:           showForums,
		OpIsUserReactForum:             showForums,
		OpForumsTotalCount:             access.LoginRequired,
		OpForumTopicsTotalCount:        access.LoginRequired,
		OpForumTopicsGetLast:           access.LoginRequired,
		OpForumDiscussionsTotalCount:   access.LoginRequired,
		OpDiscussionCommentsTotalCount: access.LoginRequired,
		OpForumReactionsTotalCount:     access.LoginRequired,
		OpForumDetail:                  access.Public,
		OpForumTopicDetail:             access.Public,
		OpForumDiscussionDetail:        access.Public,
	}
	for name, rule := range want {
		got, ok := f.registry.Rule(name)
		require.True(t, ok, name)
		assert.Equal(t, rule, got, name)
	}
}

func TestForums_PagesByModifiedDate(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.forums.Insert(
		Forum{ID: "f1", Title: "T1", ModifiedDate: t0},
		Forum{ID: "f3", Title: "T3", ModifiedDate: t0.Add(2 * time.Hour)},
		Forum{ID: "f2", Title: "T2", ModifiedDate: t0.Add(time.Hour)},
	)
	ctx := context.Background()

	// Act
	page1, err := f.registry.Invoke(ctx, OpForums, reader(), access.Args{"page": 1, "perPage": 2})
	require.NoError(t, err)
	page2, err := f.registry.Invoke(ctx, OpForums, reader(), access.Args{"page": 2, "perPage": 2})
	require.NoError(t, err)
	total, err := f.registry.Invoke(ctx, OpForumsTotalCount, reader(), nil)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{"f3", "f2"}, forumIDs(page1.([]Forum)))
	assert.Equal(t, []string{"f1"}, forumIDs(page2.([]Forum)))
	assert.Equal(t, 3, total)
}

func TestForumTopics_SortedByTitle(t *testing.T) {
	f := newFixture(t)
	f.topics.Insert(
		ForumTopic{ID: "t1", ForumID: "F1", Title: "Zeta"},
		ForumTopic{ID: "t2", ForumID: "F1", Title: "Alpha"},
		ForumTopic{ID: "t3", ForumID: "F2", Title: "Beta"},
		ForumTopic{ID: "t4", ForumID: "F1", Title: "Mike"},
	)

	got, err := f.registry.Invoke(context.Background(), OpForumTopics, reader(), access.Args{"forumId": "F1", "page": 1, "perPage": 10})
	require.NoError(t, err)

	var titles []string
	for _, topic := range got.([]ForumTopic) {
		titles = append(titles, topic.Title)
	}
	assert.Equal(t, []string{"Alpha", "Mike", "Zeta"}, titles)

	count, err := f.registry.Invoke(context.Background(), OpForumTopicsTotalCount, reader(), access.Args{"forumId": "F1"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestForumTopicsGetLast(t *testing.T) {
	f := newFixture(t)

	none, err := f.registry.Invoke(context.Background(), OpForumTopicsGetLast, reader(), nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	f.topics.Insert(
		ForumTopic{ID: "old", CreatedDate: t0},
		ForumTopic{ID: "new", CreatedDate: t0.Add(time.Hour)},
		ForumTopic{ID: "mid", CreatedDate: t0.Add(time.Minute)},
	)
	got, err := f.registry.Invoke(context.Background(), OpForumTopicsGetLast, reader(), nil)
	require.NoError(t, err)
	assert.Equal(t, "new", got.(*ForumTopic).ID)
}

func TestForumDiscussions_NewestFirst(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.discussions.Insert(ForumDiscussion{ID: fmt.Sprintf("d%d", i), TopicID: "T1", CreatedDate: t0.Add(time.Duration(i) * time.Hour)})
	}
	f.discussions.Insert(ForumDiscussion{ID: "other", TopicID: "T2", CreatedDate: t0.Add(24 * time.Hour)})

	got, err := f.service.ForumDiscussions(context.Background(), reader(), "T1", query.PageRequest{Page: 1, PerPage: 3})
	require.NoError(t, err)

	var ids []string
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"d4", "d3", "d2"}, ids)

	count, err := f.service.ForumDiscussionsTotalCount(context.Background(), reader(), "T1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.GreaterOrEqual(t, count, len(got))
}

func TestDiscussionComments_StoreOrderUnpaged(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 30; i++ {
		f.comments.Insert(DiscussionComment{ID: fmt.Sprintf("c%02d", i), DiscussionID: "D1", CreatedDate: t0.Add(-time.Duration(i) * time.Minute)})
	}
	f.comments.Insert(DiscussionComment{ID: "x", DiscussionID: "D2"})

	got, err := f.registry.Invoke(context.Background(), OpDiscussionComments, reader(), access.Args{"discussionId": "D1"})
	require.NoError(t, err)
	comments := got.([]DiscussionComment)
	require.Len(t, comments, 30)
	assert.Equal(t, "c00", comments[0].ID)
	assert.Equal(t, "c29", comments[29].ID)

	count, err := f.registry.Invoke(context.Background(), OpDiscussionCommentsTotalCount, reader(), access.Args{"discussionId": "D1"})
	require.NoError(t, err)
	assert.Equal(t, 30, count)
}

func TestIsUserReactForum(t *testing.T) {
	// Arrange
	f := newFixture(t)
	args := access.Args{"type": "like", "contentTypeId": "D1", "contentType": "discussion"}
	ctx := context.Background()
	f.reactions.Insert(
		ForumReaction{ID: "r-other-user", Type: "like", ContentTypeID: "D1", ContentType: "discussion", CreatedBy: "u2"},
		ForumReaction{ID: "r-other-type", Type: "dislike", ContentTypeID: "D1", ContentType: "discussion", CreatedBy: "u1"},
	)

	// Act
	before, err := f.registry.Invoke(ctx, OpIsUserReactForum, reader(), args)
	require.NoError(t, err)
	f.reactions.Insert(ForumReaction{ID: "r1", Type: "like", ContentTypeID: "D1", ContentType: "discussion", CreatedBy: "u1"})
	after, err := f.registry.Invoke(ctx, OpIsUserReactForum, reader(), args)
	require.NoError(t, err)
	total, err := f.registry.Invoke(ctx, OpForumReactionsTotalCount, reader(), args)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, false, before)
	assert.Equal(t, true, after)
	assert.Equal(t, 2, total)
}

func TestIsUserReactForum_AnonymousServiceCall(t *testing.T) {
	f := newFixture(t)
	f.reactions.Insert(ForumReaction{ID: "r1", Type: "like", ContentTypeID: "D1", ContentType: "discussion", CreatedBy: ""})

	got, err := f.service.IsUserReactForum(context.Background(), access.Anonymous(), ReactionTarget{Type: "like", ContentTypeID: "D1", ContentType: "discussion"})

	require.NoError(t, err)
	assert.False(t, got)
}

func TestDetails_AbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.forums.Insert(Forum{ID: "f1"})
	f.topics.Insert(ForumTopic{ID: "t1"})
	f.discussions.Insert(ForumDiscussion{ID: "d1"})

	for _, op := range []string{OpForumDetail, OpForumTopicDetail, OpForumDiscussionDetail} {
		t.Run(op, func(t *testing.T) {
			got, err := f.registry.Invoke(context.Background(), op, access.Anonymous(), access.Args{"_id": "missing"})
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = f.registry.Invoke(context.Background(), op, access.Anonymous(), access.Args{})
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}

	got, err := f.registry.Invoke(context.Background(), OpForumDetail, access.Anonymous(), access.Args{"_id": "f1"})
	require.NoError(t, err)
	assert.Equal(t, "f1", got.(*Forum).ID)
}

func TestAccess_AnonymousIsUnauthenticatedBeforeAnyRead(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("store must not be reached")
	f.failAll(boom)

	for _, name := range f.registry.Names() {
		rule, _ := f.registry.Rule(name)
		if !rule.RequireAuth {
			continue
		}
		t.Run(name, func(t *testing.T) {
			_, err := f.registry.Invoke(context.Background(), name, access.Anonymous(), access.Args{"page": 1})
			assert.True(t, apperrors.IsUnauthenticated(err), "got %v", err)
		})
	}
}

func TestAccess_MissingPermissionIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("store must not be reached")
	f.failAll(boom)

	for _, name := range []string{OpForums, OpForumTopics, OpForumDiscussions, OpDiscussionComments, OpIsUserReactForum} {
		t.Run(name, func(t *testing.T) {
			_, err := f.registry.Invoke(context.Background(), name, memberWithoutGrant(), nil)
			assert.True(t, apperrors.IsUnauthorized(err), "got %v", err)
		})
	}

	t.Run("login only operations run without the grant", func(t *testing.T) {
		_, err := f.registry.Invoke(context.Background(), OpForumsTotalCount, memberWithoutGrant(), nil)
		assert.Same(t, boom, err)
	})
}

func TestStoreErrorsPropagateUnchanged(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")
	f.failAll(boom)

	for _, name := range f.registry.Names() {
		t.Run(name, func(t *testing.T) {
			_, err := f.registry.Invoke(context.Background(), name, reader(), access.Args{"_id": "x", "type": "like", "contentTypeId": "D1", "contentType": "discussion"})
			assert.Same(t, boom, err)
		})
	}
}

func TestTenantScoping(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.forums.Insert(
		Forum{ID: "a1", TenantID: "A", ModifiedDate: t0},
		Forum{ID: "b1", TenantID: "B", ModifiedDate: t0},
	)
	f.topics.Insert(
		ForumTopic{ID: "ta", TenantID: "A", ForumID: "F1", Title: "a"},
		ForumTopic{ID: "tb", TenantID: "B", ForumID: "F1", Title: "b"},
	)
	ctx := context.Background()

	// Act
	forums, err := f.registry.Invoke(ctx, OpForums, tenantReader("A"), access.Args{"tenantId": "B"})
	require.NoError(t, err)
	topics, err := f.registry.Invoke(ctx, OpForumTopics, tenantReader("A"), access.Args{"forumId": "F1", "tenantId": "B"})
	require.NoError(t, err)
	crossTenant, err := f.registry.Invoke(ctx, OpForumDetail, tenantReader("A"), access.Args{"_id": "b1"})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{"a1"}, forumIDs(forums.([]Forum)))
	require.Len(t, topics.([]ForumTopic), 1)
	assert.Equal(t, "ta", topics.([]ForumTopic)[0].ID)
	assert.Nil(t, crossTenant)
}

// Detail lookups are public and an anonymous scope has no base selector,
// so they are not tenant isolated.
func TestDetails_AnonymousReadsAreUnscoped(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.forums.Insert(Forum{ID: "b1", TenantID: "B", ModifiedDate: t0})
	ctx := context.Background()

	// Act
	anonymous, err := f.registry.Invoke(ctx, OpForumDetail, access.Anonymous(), access.Args{"_id": "b1"})
	require.NoError(t, err)
	scoped, err := f.registry.Invoke(ctx, OpForumDetail, tenantReader("A"), access.Args{"_id": "b1"})
	require.NoError(t, err)

	// Assert
	require.IsType(t, &Forum{}, anonymous)
	assert.Equal(t, "B", anonymous.(*Forum).TenantID)
	assert.Nil(t, scoped)
}

func TestInvalidArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		op   string
		args access.Args
	}{
		{"page not a number", OpForums, access.Args{"page": "two"}},
		{"fractional perPage", OpForums, access.Args{"perPage": 2.5}},
		{"forumId not a string", OpForumTopics, access.Args{"forumId": 7}},
		{"_id not a string", OpForumDetail, access.Args{"_id": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.registry.Invoke(context.Background(), tt.op, reader(), tt.args)
			assert.True(t, apperrors.IsInvalidArgument(err), "got %v", err)
		})
	}

	t.Run("float page from JSON variables is accepted", func(t *testing.T) {
		_, err := f.registry.Invoke(context.Background(), OpForums, reader(), access.Args{"page": float64(2), "perPage": float64(5)})
		assert.NoError(t, err)
	})
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.Ping(context.Background()))

	boom := errors.New("down")
	f.comments.FailWith(boom)
	assert.Same(t, boom, f.service.Ping(context.Background()))
}

func forumIDs(fs []Forum) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}
