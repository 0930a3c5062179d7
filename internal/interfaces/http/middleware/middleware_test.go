package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nadifnugraha/dicowi/internal/infrastructure/logger"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

func serve(engine *gin.Engine, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	newEngine := func(origins ...string) *gin.Engine {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = origins
		r := gin.New()
		r.Use(CORSWithConfig(cfg))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		return r
	}

	t.Run("wildcard allows any origin", func(t *testing.T) {
		w := serve(newEngine("*"), http.MethodGet, "/ping", map[string]string{"Origin": "http://example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("whitelisted origin is echoed", func(t *testing.T) {
		w := serve(newEngine("http://dash.local"), http.MethodGet, "/ping", map[string]string{"Origin": "http://dash.local"})
		assert.Equal(t, "http://dash.local", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		w := serve(newEngine("http://dash.local"), http.MethodGet, "/ping", map[string]string{"Origin": "http://evil.local"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight returns no content", func(t *testing.T) {
		w := serve(newEngine(), http.MethodOptions, "/ping", map[string]string{"Origin": "http://dash.local"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(logger.RequestIDKey)) })

	t.Run("generates a uuid", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/id", nil)
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/id", map[string]string{RequestIDHeader: "req-42"})
		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-42", w.Body.String())
	})
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestValidation(t *testing.T) {
	bind := func(query string) (dto.RevenueRequest, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		var req dto.RevenueRequest
		err := c.ShouldBindQuery(&req)
		return req, err
	}

	tests := []struct {
		name      string
		query     string
		wantField string
	}{
		{name: "valid selections", query: "season=winter&month=2018-01&granularity=season&start_date=2018-01-01&end_date=2018-02-01"},
		{name: "All is accepted", query: "season=All&month=All"},
		{name: "unknown season", query: "season=monsoon", wantField: "season"},
		{name: "bad month", query: "month=2018-13", wantField: "month"},
		{name: "bad granularity", query: "granularity=week", wantField: "granularity"},
		{name: "bad date", query: "start_date=01/02/2018", wantField: "start_date"},
		{name: "non numeric zip", query: "zip_prefix=abc", wantField: "zip_prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bind(tt.query)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			details := ValidationDetails(err)
			require.Len(t, details, 1)
			assert.Equal(t, tt.wantField, details[0].Field)
			assert.NotEqual(t, "Invalid value", details[0].Message)
		})
	}

	t.Run("non validation error has no details", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(errors.New("boom")))
	})
}

func TestHTTPMetrics(t *testing.T) {
	m := NewHTTPMetrics("dicowi")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/dashboard/panels/:name", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, http.MethodGet, "/api/v1/dashboard/panels/overview", nil)
	serve(r, http.MethodGet, "/api/v1/dashboard/panels/top_selling", nil)
	serve(r, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/dashboard/panels/:name", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	w := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "dicowi_http_requests_total"))
}
