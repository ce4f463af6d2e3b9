package graphql

import (
	"github.com/graphql-go/graphql"
)

func auditFields(fields graphql.Fields) graphql.Fields {
	fields["_id"] = &graphql.Field{Type: graphql.NewNonNull(graphql.String)}
	fields["tenantId"] = &graphql.Field{Type: graphql.String}
	fields["createdBy"] = &graphql.Field{Type: graphql.String}
	fields["createdDate"] = &graphql.Field{Type: graphql.DateTime}
	fields["modifiedDate"] = &graphql.Field{Type: graphql.DateTime}
	return fields
}

var forumType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Forum",
	Fields: auditFields(graphql.Fields{
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"languages":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"modifiedBy":  &graphql.Field{Type: graphql.String},
	}),
})

var forumTopicType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ForumTopic",
	Fields: auditFields(graphql.Fields{
		"forumId":     &graphql.Field{Type: graphql.String},
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"modifiedBy":  &graphql.Field{Type: graphql.String},
	}),
})

var forumDiscussionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ForumDiscussion",
	Fields: auditFields(graphql.Fields{
		"topicId":     &graphql.Field{Type: graphql.String},
		"forumId":     &graphql.Field{Type: graphql.String},
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"content":     &graphql.Field{Type: graphql.String},
		"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
		"status":      &graphql.Field{Type: graphql.String},
		"closed":      &graphql.Field{Type: graphql.Boolean},
		"modifiedBy":  &graphql.Field{Type: graphql.String},
	}),
})

var discussionCommentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DiscussionComment",
	Fields: auditFields(graphql.Fields{
		"discussionId": &graphql.Field{Type: graphql.String},
		"replyTo":      &graphql.Field{Type: graphql.String},
		"content":      &graphql.Field{Type: graphql.String},
	}),
})

var pageArgs = graphql.FieldConfigArgument{
	"page":    &graphql.ArgumentConfig{Type: graphql.Int},
	"perPage": &graphql.ArgumentConfig{Type: graphql.Int},
}

func withPage(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for k, v := range pageArgs {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var idArgs = graphql.FieldConfigArgument{
	"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
}

var reactionArgs = graphql.FieldConfigArgument{
	"type":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	"contentTypeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	"contentType":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
}

func stringArg(name string) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{name: &graphql.ArgumentConfig{Type: graphql.String}}
}
