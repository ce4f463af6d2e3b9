package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_StoreCalls(t *testing.T) {
	c := NewCollector("forum")

	c.RecordStoreCall("forums", "find", time.Millisecond, nil)
	c.RecordStoreCall("forums", "find", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreCalls.WithLabelValues("find", "forums", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreCalls.WithLabelValues("find", "forums", "error")))
}

func TestCollector_ConfigReloads(t *testing.T) {
	c := NewCollector("forum")

	c.RecordConfigReload()
	c.RecordConfigReload()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ConfigReloads))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("forum")
	b := NewCollector("forum")

	a.RecordOperation("forums", "ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Operations.WithLabelValues("forums", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Operations.WithLabelValues("forums", "ok")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("forum")
	c.RecordHTTPRequest("POST", "/graphql", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `forum_http_requests_total{method="POST",route="/graphql",status="200"} 1`)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "development")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", "production")
	assert.Error(t, err)
}
