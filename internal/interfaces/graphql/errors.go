package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

var (
	errBadBody      = errors.New("request body must be a JSON object with a query")
	errBadVariables = errors.New("variables must be a JSON object")
	errMethod       = errors.New("only GET and POST are supported")
	errNoQuery      = errors.New("query is required")
)

func errorResult(err error) *graphql.Result {
	return &graphql.Result{
		Errors: []gqlerrors.FormattedError{{Message: err.Error()}},
	}
}
