// Package forums implements the read side of the helpdesk forums:
// forums, their topics, discussions, comments and reactions.
package forums

import (
	"time"
)

// Collection names shared by every backend.
const (
	CollectionForums      = "forums"
	CollectionTopics      = "forum_topics"
	CollectionDiscussions = "forum_discussions"
	CollectionComments    = "discussion_comments"
	CollectionReactions   = "forum_reactions"
)

// Forum is a top level board.
type Forum struct {
	ID           string    `bson:"_id" json:"_id" dynamodbav:"_id" yaml:"_id"`
	TenantID     string    `bson:"tenantId,omitempty" json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty" yaml:"tenantId"`
	Title        string    `bson:"title" json:"title" dynamodbav:"title" yaml:"title"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty" dynamodbav:"description,omitempty" yaml:"description"`
	Languages    []string  `bson:"languages,omitempty" json:"languages,omitempty" dynamodbav:"languages,omitempty" yaml:"languages"`
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty" dynamodbav:"createdBy,omitempty" yaml:"createdBy"`
	CreatedDate  time.Time `bson:"createdDate" json:"createdDate" dynamodbav:"createdDate" yaml:"createdDate"`
	ModifiedBy   string    `bson:"modifiedBy,omitempty" json:"modifiedBy,omitempty" dynamodbav:"modifiedBy,omitempty" yaml:"modifiedBy"`
	ModifiedDate time.Time `bson:"modifiedDate" json:"modifiedDate" dynamodbav:"modifiedDate" yaml:"modifiedDate"`
}

func (f Forum) Field(name string) (any, bool) {
	switch name {
	case "_id":
		return f.ID, true
	case "tenantId":
		return f.TenantID, f.TenantID != ""
	case "title":
		return f.Title, true
	case "description":
		return f.Description, true
	case "createdBy":
		return f.CreatedBy, f.CreatedBy != ""
	case "createdDate":
		return f.CreatedDate, true
	case "modifiedBy":
		return f.ModifiedBy, f.ModifiedBy != ""
	case "modifiedDate":
		return f.ModifiedDate, true
	}
	return nil, false
}

// ForumTopic groups discussions inside a forum.
type ForumTopic struct {
	ID           string    `bson:"_id" json:"_id" dynamodbav:"_id" yaml:"_id"`
	TenantID     string    `bson:"tenantId,omitempty" json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty" yaml:"tenantId"`
	ForumID      string    `bson:"forumId" json:"forumId" dynamodbav:"forumId" yaml:"forumId"`
	Title        string    `bson:"title" json:"title" dynamodbav:"title" yaml:"title"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty" dynamodbav:"description,omitempty" yaml:"description"`
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty" dynamodbav:"createdBy,omitempty" yaml:"createdBy"`
	CreatedDate  time.Time `bson:"createdDate" json:"createdDate" dynamodbav:"createdDate" yaml:"createdDate"`
	ModifiedBy   string    `bson:"modifiedBy,omitempty" json:"modifiedBy,omitempty" dynamodbav:"modifiedBy,omitempty" yaml:"modifiedBy"`
	ModifiedDate time.Time `bson:"modifiedDate" json:"modifiedDate" dynamodbav:"modifiedDate" yaml:"modifiedDate"`
}

func (t ForumTopic) Field(name string) (any, bool) {
	switch name {
	case "_id":
		return t.ID, true
	case "tenantId":
		return t.TenantID, t.TenantID != ""
	case "forumId":
		return t.ForumID, true
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "createdBy":
		return t.CreatedBy, t.CreatedBy != ""
	case "createdDate":
		return t.CreatedDate, true
	case "modifiedBy":
		return t.ModifiedBy, t.ModifiedBy != ""
	case "modifiedDate":
		return t.ModifiedDate, true
	}
	return nil, false
}

// ForumDiscussion is a thread inside a topic.
type ForumDiscussion struct {
	ID           string    `bson:"_id" json:"_id" dynamodbav:"_id" yaml:"_id"`
	TenantID     string    `bson:"tenantId,omitempty" json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty" yaml:"tenantId"`
	TopicID      string    `bson:"topicId" json:"topicId" dynamodbav:"topicId" yaml:"topicId"`
	ForumID      string    `bson:"forumId,omitempty" json:"forumId,omitempty" dynamodbav:"forumId,omitempty" yaml:"forumId"`
	Title        string    `bson:"title" json:"title" dynamodbav:"title" yaml:"title"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty" dynamodbav:"description,omitempty" yaml:"description"`
	Content      string    `bson:"content,omitempty" json:"content,omitempty" dynamodbav:"content,omitempty" yaml:"content"`
	Tags         []string  `bson:"tags,omitempty" json:"tags,omitempty" dynamodbav:"tags,omitempty" yaml:"tags"`
	Status       string    `bson:"status,omitempty" json:"status,omitempty" dynamodbav:"status,omitempty" yaml:"status"`
	Closed       bool      `bson:"closed" json:"closed" dynamodbav:"closed" yaml:"closed"`
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty" dynamodbav:"createdBy,omitempty" yaml:"createdBy"`
	CreatedDate  time.Time `bson:"createdDate" json:"createdDate" dynamodbav:"createdDate" yaml:"createdDate"`
	ModifiedBy   string    `bson:"modifiedBy,omitempty" json:"modifiedBy,omitempty" dynamodbav:"modifiedBy,omitempty" yaml:"modifiedBy"`
	ModifiedDate time.Time `bson:"modifiedDate" json:"modifiedDate" dynamodbav:"modifiedDate" yaml:"modifiedDate"`
}

func (d ForumDiscussion) Field(name string) (any, bool) {
	switch name {
	case "_id":
		return d.ID, true
	case "tenantId":
		return d.TenantID, d.TenantID != ""
	case "topicId":
		return d.TopicID, true
	case "forumId":
		return d.ForumID, d.ForumID != ""
	case "title":
		return d.Title, true
	case "status":
		return d.Status, d.Status != ""
	case "closed":
		return d.Closed, true
	case "createdBy":
		return d.CreatedBy, d.CreatedBy != ""
	case "createdDate":
		return d.CreatedDate, true
	case "modifiedBy":
		return d.ModifiedBy, d.ModifiedBy != ""
	case "modifiedDate":
		return d.ModifiedDate, true
	}
	return nil, false
}

// DiscussionComment is a reply in a discussion.
type DiscussionComment struct {
	ID           string    `bson:"_id" json:"_id" dynamodbav:"_id" yaml:"_id"`
	TenantID     string    `bson:"tenantId,omitempty" json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty" yaml:"tenantId"`
	DiscussionID string    `bson:"discussionId" json:"discussionId" dynamodbav:"discussionId" yaml:"discussionId"`
	ReplyTo      string    `bson:"replyTo,omitempty" json:"replyTo,omitempty" dynamodbav:"replyTo,omitempty" yaml:"replyTo"`
	Content      string    `bson:"content" json:"content" dynamodbav:"content" yaml:"content"`
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty" dynamodbav:"createdBy,omitempty" yaml:"createdBy"`
	CreatedDate  time.Time `bson:"createdDate" json:"createdDate" dynamodbav:"createdDate" yaml:"createdDate"`
	ModifiedDate time.Time `bson:"modifiedDate" json:"modifiedDate" dynamodbav:"modifiedDate" yaml:"modifiedDate"`
}

func (c DiscussionComment) Field(name string) (any, bool) {
	switch name {
	case "_id":
		return c.ID, true
	case "tenantId":
		return c.TenantID, c.TenantID != ""
	case "discussionId":
		return c.DiscussionID, true
	case "replyTo":
		return c.ReplyTo, c.ReplyTo != ""
	case "createdBy":
		return c.CreatedBy, c.CreatedBy != ""
	case "createdDate":
		return c.CreatedDate, true
	case "modifiedDate":
		return c.ModifiedDate, true
	}
	return nil, false
}

// ForumReaction records a user's reaction to a piece of forum content.
type ForumReaction struct {
	ID            string    `bson:"_id" json:"_id" dynamodbav:"_id" yaml:"_id"`
	TenantID      string    `bson:"tenantId,omitempty" json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty" yaml:"tenantId"`
	Type          string    `bson:"type" json:"type" dynamodbav:"type" yaml:"type"`
	ContentType   string    `bson:"contentType" json:"contentType" dynamodbav:"contentType" yaml:"contentType"`
	ContentTypeID string    `bson:"contentTypeId" json:"contentTypeId" dynamodbav:"contentTypeId" yaml:"contentTypeId"`
	CreatedBy     string    `bson:"createdBy" json:"createdBy" dynamodbav:"createdBy" yaml:"createdBy"`
	CreatedDate   time.Time `bson:"createdDate" json:"createdDate" dynamodbav:"createdDate" yaml:"createdDate"`
}

func (r ForumReaction) Field(name string) (any, bool) {
	switch name {
	case "_id":
		return r.ID, true
	case "tenantId":
		return r.TenantID, r.TenantID != ""
	case "type":
		return r.Type, true
	case "contentType":
		return r.ContentType, true
	case "contentTypeId":
		return r.ContentTypeID, true
	case "createdBy":
		return r.CreatedBy, true
	case "createdDate":
		return r.CreatedDate, true
	}
	return nil, false
}
