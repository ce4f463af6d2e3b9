package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves GraphQL over HTTP.
type Handler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewHandler creates a GraphQL HTTP handler for schema.
func NewHandler(schema graphql.Schema, logger *zap.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err == nil && req.Query == "" {
		err = errNoQuery
	}
	if err != nil {
		h.logger.Debug("rejecting graphql request", zap.Error(err))
		status := http.StatusBadRequest
		if err == errMethod {
			w.Header().Set("Allow", "GET, POST")
			status = http.StatusMethodNotAllowed
		}
		writeResult(w, status, errorResult(err))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if len(result.Errors) > 0 {
		h.logger.Debug("graphql errors",
			zap.String("operation_name", req.OperationName),
			zap.Int("count", len(result.Errors)),
		)
	}
	writeResult(w, http.StatusOK, result)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, errBadVariables
			}
		}
		return req, nil
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return req, errBadBody
		}
		return req, nil
	default:
		return req, errMethod
	}
}

func writeResult(w http.ResponseWriter, status int, result *graphql.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
