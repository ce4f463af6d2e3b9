package forums

import (
	"fmt"
	"math"

	"forum-api/internal/access"
	"forum-api/internal/query"
	apperrors "forum-api/pkg/errors"
)

// stringArg returns the named string argument, "" when absent or null.
func stringArg(args access.Args, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", apperrors.NewInvalidArgumentError(fmt.Sprintf("%s must be a string", name)).
			WithDetails(map[string]interface{}{"argument": name})
	}
	return s, nil
}

// intArg returns the named integer argument, 0 when absent or null.
// Whole floats are accepted since JSON variables decode to float64.
func intArg(args access.Args, name string) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n), nil
		}
	}
	return 0, apperrors.NewInvalidArgumentError(fmt.Sprintf("%s must be an integer", name)).
		WithDetails(map[string]interface{}{"argument": name})
}

func pageArgs(args access.Args) (query.PageRequest, error) {
	page, err := intArg(args, "page")
	if err != nil {
		return query.PageRequest{}, err
	}
	perPage, err := intArg(args, "perPage")
	if err != nil {
		return query.PageRequest{}, err
	}
	return query.PageRequest{Page: page, PerPage: perPage}, nil
}

// filterArgs copies the named string arguments that are present.
func filterArgs(args access.Args, names ...string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		s, err := stringArg(args, name)
		if err != nil {
			return nil, err
		}
		if _, present := args[name]; present && args[name] != nil {
			out[name] = s
		}
	}
	return out, nil
}

// ReactionTarget names the content a reaction points at.
type ReactionTarget struct {
	Type          string
	ContentTypeID string
	ContentType   string
}

func reactionArgs(args access.Args) (ReactionTarget, error) {
	f, err := filterArgs(args, "type", "contentTypeId", "contentType")
	if err != nil {
		return ReactionTarget{}, err
	}
	t := ReactionTarget{}
	t.Type, _ = f["type"].(string)
	t.ContentTypeID, _ = f["contentTypeId"].(string)
	t.ContentType, _ = f["contentType"].(string)
	return t, nil
}

func (t ReactionTarget) filters() map[string]any {
	return map[string]any{
		"type":          t.Type,
		"contentTypeId": t.ContentTypeID,
		"contentType":   t.ContentType,
	}
}
