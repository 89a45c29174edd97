package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		origin      string
		wantOrigin  string
		wantCredits string
	}{
		{"exact match", []string{"https://app.example.com"}, "https://app.example.com", "https://app.example.com", "true"},
		{"wildcard subdomain", []string{"*.example.com"}, "https://beta.example.com", "https://beta.example.com", "true"},
		{"not allowed", []string{"https://app.example.com"}, "https://evil.com", "", ""},
		{"allow all", []string{"*"}, "https://any.dev", "*", ""},
		{"nothing configured", nil, "https://any.dev", "*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(&config.ServerConfig{AllowedOrigins: tt.allowed}))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredits, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.ServerConfig{AllowedOrigins: []string{"https://app.example.com"}}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	for _, env := range []config.Environment{config.EnvDevelopment, config.EnvProduction} {
		t.Run(string(env), func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Environment: env}}
			r := gin.New()
			r.Use(SecurityHeadersMiddleware(cfg))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, env == config.EnvProduction, w.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-123", w.Header().Get("X-Request-ID"))
}

func TestMetricsMiddleware(t *testing.T) {
	resetHTTPMetricsForTesting()
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/groups/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/groups/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	m := newHTTPMetrics()
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("/groups/:id", "GET", "200")))
}
