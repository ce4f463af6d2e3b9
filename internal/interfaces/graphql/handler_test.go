package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/forums"
	"forum-api/internal/query"
	"forum-api/internal/store/memory"
)

type recorded struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorded) RecordOperation(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, operation+":"+outcome)
}

type testServer struct {
	forums   *memory.Collection[forums.Forum]
	recorder *recorded
	handler  *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := &testServer{
		forums: memory.NewCollection(
			forums.Forum{ID: "f1", Title: "General", ModifiedDate: t0},
			forums.Forum{ID: "f2", Title: "Billing", ModifiedDate: t0.Add(time.Hour)},
		),
		recorder: &recorded{},
	}
	svc := forums.NewService(forums.Collections{
		Forums:      ts.forums,
		Topics:      memory.NewCollection[forums.ForumTopic](),
		Discussions: memory.NewCollection[forums.ForumDiscussion](),
		Comments:    memory.NewCollection[forums.DiscussionComment](),
		Reactions:   memory.NewCollection[forums.ForumReaction](),
	}, query.NewPager(nil), zap.NewNop())

	registry, err := access.NewRegistry(zap.NewNop(), svc.Operations()...)
	require.NoError(t, err)

	schema, err := NewSchema(NewResolver(registry, ts.recorder, zap.NewNop()))
	require.NoError(t, err)
	ts.handler = NewHandler(schema, zap.NewNop())
	return ts
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (ts *testServer) post(t *testing.T, scope access.Scope, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req = req.WithContext(access.WithScope(req.Context(), scope))
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (int, response) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func reader() access.Scope {
	return access.NewScope(&access.User{ID: "u1"}, []string{forums.PermissionShowForums}, nil)
}

func TestHandler_Forums(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.post(t, reader(), `{"query":"{ forums(page: 1, perPage: 10) { _id title modifiedDate } }"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Errors)

	var got []struct {
		ID           string `json:"_id"`
		Title        string `json:"title"`
		ModifiedDate string `json:"modifiedDate"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["forums"], &got))
	require.Len(t, got, 2)
	assert.Equal(t, "f2", got[0].ID)
	assert.Equal(t, "f1", got[1].ID)
	assert.Equal(t, "2024-03-01T13:00:00Z", got[0].ModifiedDate)

	assert.Equal(t, []string{"forums:ok"}, ts.recorder.calls)
}

func TestHandler_ErrorCodes(t *testing.T) {
	tests := []struct {
		name  string
		scope access.Scope
		query string
		code  string
	}{
		{
			name:  "anonymous listing",
			scope: access.Anonymous(),
			query: `{"query":"{ forums { _id } }"}`,
			code:  "UNAUTHENTICATED",
		},
		{
			name:  "anonymous count",
			scope: access.Anonymous(),
			query: `{"query":"{ forumsTotalCount }"}`,
			code:  "UNAUTHENTICATED",
		},
		{
			name:  "missing permission",
			scope: access.NewScope(&access.User{ID: "u1"}, nil, nil),
			query: `{"query":"{ forums { _id } }"}`,
			code:  "UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			status, resp := ts.post(t, tt.scope, tt.query)

			assert.Equal(t, http.StatusOK, status)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tt.code, resp.Errors[0].Extensions["code"])
		})
	}
}

func TestHandler_MissingDetailIsNull(t *testing.T) {
	ts := newTestServer(t)

	_, resp := ts.post(t, access.Anonymous(), `{"query":"{ forumDetail(_id: \"nope\") { _id } }"}`)

	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, "null", string(resp.Data["forumDetail"]))
}

func TestHandler_StoreFailureIsOpaque(t *testing.T) {
	ts := newTestServer(t)
	ts.forums.FailWith(errors.New("connection reset by 10.0.0.7"))

	_, resp := ts.post(t, reader(), `{"query":"{ forumsTotalCount }"}`)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "UPSTREAM", resp.Errors[0].Extensions["code"])
	assert.NotContains(t, resp.Errors[0].Message, "10.0.0.7")
	assert.Equal(t, []string{"forumsTotalCount:UPSTREAM"}, ts.recorder.calls)
}

func TestHandler_GetWithVariables(t *testing.T) {
	ts := newTestServer(t)
	q := url.Values{}
	q.Set("query", `query Detail($id: String!) { forumDetail(_id: $id) { title } }`)
	q.Set("variables", `{"id":"f1"}`)
	q.Set("operationName", "Detail")
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)

	status, resp := ts.serve(t, req)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"title":"General"}`, string(resp.Data["forumDetail"]))
}

func TestHandler_RejectsMalformedRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{
			name:   "invalid json",
			req:    httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")),
			status: http.StatusBadRequest,
		},
		{
			name:   "empty query",
			req:    httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":""}`)),
			status: http.StatusBadRequest,
		},
		{
			name:   "bad variables",
			req:    httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bforums%7B_id%7D%7D&variables=%5B", nil),
			status: http.StatusBadRequest,
		},
		{
			name:   "method",
			req:    httptest.NewRequest(http.MethodPut, "/graphql", nil),
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ts.serve(t, tt.req)

			assert.Equal(t, tt.status, status)
			assert.Len(t, resp.Errors, 1)
		})
	}
}

func TestNewSchema_RequiresEveryOperation(t *testing.T) {
	registry, err := access.NewRegistry(zap.NewNop(), access.Entry{
		Name: forums.OpForums,
		Rule: access.Public,
		Op: func(context.Context, access.Scope, access.Args) (any, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)

	_, err = NewSchema(NewResolver(registry, nil, zap.NewNop()))

	assert.Error(t, err)
}
