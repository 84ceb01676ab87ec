package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.Observe("students", "create", 3, nil)
	c.Observe("students", "create", 4, errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("students", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("students", "create")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.size.WithLabelValues("students")))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/api/:kind", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	for _, path := range []string{"/api/students", "/api/movies", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("/api/:kind", "GET", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("unmatched", "GET", "404")))
}
