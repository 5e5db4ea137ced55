package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveDecision(t *testing.T) {
	m := New()

	m.ObserveDecision("post:drinks", "ok")
	m.ObserveDecision("post:drinks", "ok")
	m.ObserveDecision("post:drinks", "no_permission")

	assert.InDelta(t, 2, testutil.ToFloat64(m.authDecisions.WithLabelValues("post:drinks", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.authDecisions.WithLabelValues("post:drinks", "no_permission")), 0)
}

func TestMetrics_ObserveJWKSFetch(t *testing.T) {
	m := New()

	m.ObserveJWKSFetch(20*time.Millisecond, nil)
	m.ObserveJWKSFetch(time.Second, errors.New("timeout"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.jwksFetches.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.jwksFetches.WithLabelValues("error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.jwksLatency))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/drinks/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/drinks/1", "/drinks/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.httpRequests.WithLabelValues("204", "GET", "/drinks/:id")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.httpRequests.WithLabelValues("404", "GET", "unmatched")), 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coffeeshop_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
