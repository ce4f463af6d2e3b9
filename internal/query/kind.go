// Package query shapes forum reads: which records a kind may be filtered
// by, how each kind is ordered, and how a page maps to a window.
package query

import (
	"forum-api/internal/store"
	apperrors "forum-api/pkg/errors"
)

// Kind identifies a family of forum records.
type Kind string

const (
	KindForum             Kind = "Forum"
	KindForumTopic        Kind = "ForumTopic"
	KindForumDiscussion   Kind = "ForumDiscussion"
	KindDiscussionComment Kind = "DiscussionComment"
	KindForumReaction     Kind = "ForumReaction"
)

type kindRule struct {
	filters []string
	sort    store.SortOrder
}

var kindRules = map[Kind]kindRule{
	KindForum: {
		sort: store.SortOrder{{Field: "modifiedDate", Direction: store.Descending}},
	},
	KindForumTopic: {
		filters: []string{"forumId"},
		sort:    store.SortOrder{{Field: "title", Direction: store.Ascending}},
	},
	KindForumDiscussion: {
		filters: []string{"topicId"},
		sort:    store.SortOrder{{Field: "createdDate", Direction: store.Descending}},
	},
	// Comments are returned in store order.
	KindDiscussionComment: {
		filters: []string{"discussionId"},
	},
	KindForumReaction: {
		filters: []string{"type", "contentTypeId", "contentType"},
	},
}

// LatestTopicSort orders topics newest first for the latest-topic lookup.
var LatestTopicSort = store.SortOrder{{Field: "createdDate", Direction: store.Descending}}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindRules[k]
	return ok
}

// AllowedFilters lists the caller-supplied fields k may be narrowed by.
func (k Kind) AllowedFilters() []string {
	return append([]string(nil), kindRules[k].filters...)
}

// DefaultSort is the fixed listing order of k. It is nil for unordered kinds.
func (k Kind) DefaultSort() store.SortOrder {
	s := kindRules[k].sort
	if s == nil {
		return nil
	}
	return append(store.SortOrder(nil), s...)
}

func unknownKind(k Kind) error {
	return apperrors.NewInvalidArgumentError("unknown resource kind: " + string(k)).WithCode("UNKNOWN_KIND")
}
