package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// corsRequest runs a request with the given Origin through a router
// wrapped in CORSWithConfig and returns the recorder.
func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/ledger/orders", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, "/ledger/orders", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSDefaults(t *testing.T) {
	t.Run("config ships with an empty origin whitelist", func(t *testing.T) {
		cfg := DefaultCORSConfig()

		assert.Empty(t, cfg.AllowOrigins)
		assert.Contains(t, cfg.AllowMethods, "GET")
		assert.Contains(t, cfg.AllowMethods, "POST")
		assert.Contains(t, cfg.AllowHeaders, "Content-Type")
		assert.Contains(t, cfg.AllowHeaders, "X-Employee-ID")
		assert.Contains(t, cfg.AllowHeaders, "Idempotency-Key")
		assert.True(t, cfg.AllowCredentials)
		assert.Equal(t, 12*time.Hour, cfg.MaxAge)
	})

	t.Run("cross-origin requests get no CORS headers until configured", func(t *testing.T) {
		w := corsRequest(DefaultCORSConfig(), "GET", "http://somewhere.else")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin requests are untouched", func(t *testing.T) {
		w := corsRequest(DefaultCORSConfig(), "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	whitelist := CORSConfig{
		AllowOrigins:     []string{"http://pos.local:3000", "http://backoffice.local"},
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	t.Run("whitelisted origin is echoed back with credentials", func(t *testing.T) {
		w := corsRequest(whitelist, "GET", "http://pos.local:3000")

		assert.Equal(t, "http://pos.local:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Idempotency-Key", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("every whitelisted origin works", func(t *testing.T) {
		w := corsRequest(whitelist, "GET", "http://backoffice.local")
		assert.Equal(t, "http://backoffice.local", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no CORS headers but still reaches the handler", func(t *testing.T) {
		w := corsRequest(whitelist, "GET", "http://unknown.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard allows any origin but never credentials", func(t *testing.T) {
		cfg := whitelist
		cfg.AllowOrigins = []string{"*"}

		w := corsRequest(cfg, "GET", "http://anywhere.example")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight from a whitelisted origin", func(t *testing.T) {
		w := corsRequest(whitelist, "OPTIONS", "http://pos.local:3000")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://pos.local:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight from an unlisted origin still gets 204", func(t *testing.T) {
		w := corsRequest(whitelist, "OPTIONS", "http://unknown.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("max-age is rendered in whole seconds", func(t *testing.T) {
		for duration, want := range map[time.Duration]string{
			time.Hour:        "3600",
			24 * time.Hour:   "86400",
			time.Minute:      "60",
			30 * time.Second: "30",
		} {
			cfg := whitelist
			cfg.MaxAge = duration
			w := corsRequest(cfg, "GET", "http://pos.local:3000")
			assert.Equal(t, want, w.Header().Get("Access-Control-Max-Age"))
		}
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ledger/orders", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("mints an id when the caller sends none", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ledger/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String(),
			"the handler sees the same id as the response header")
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ledger/orders", nil)
		req.Header.Set("X-Request-ID", "pos-terminal-7f3a")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "pos-terminal-7f3a", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "pos-terminal-7f3a", w.Body.String())
	})

	t.Run("minted ids are unique 128-bit hex", func(t *testing.T) {
		id1, id2 := newRequestID(), newRequestID()

		assert.Len(t, id1, 32)
		assert.NotEqual(t, id1, id2)
	})
}

func secureRequest(cfg SecurityConfig) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/ledger/orders", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ledger/orders", nil))
	return w
}

func TestSecure(t *testing.T) {
	t.Run("defaults set CSP and Permissions-Policy but not HSTS", func(t *testing.T) {
		w := secureRequest(DefaultSecurityConfig())

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

		csp := w.Header().Get("Content-Security-Policy")
		assert.Contains(t, csp, "default-src 'self'")
		assert.Contains(t, csp, "frame-ancestors 'none'")

		assert.Empty(t, w.Header().Get("Strict-Transport-Security"),
			"HSTS stays off until HTTPS is in place")

		policy := w.Header().Get("Permissions-Policy")
		assert.Contains(t, policy, "camera=()")
		assert.Contains(t, policy, "payment=()")
	})

	t.Run("HSTS renders its flags", func(t *testing.T) {
		w := secureRequest(SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		})

		assert.Equal(t, "max-age=63072000; includeSubDomains; preload",
			w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS without optional flags", func(t *testing.T) {
		w := secureRequest(SecurityConfig{HSTSEnabled: true, HSTSMaxAge: 31536000})

		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("custom directives override the defaults", func(t *testing.T) {
		w := secureRequest(SecurityConfig{
			CSPEnabled:                 true,
			CSPDirective:               "default-src 'none'; script-src 'self'",
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self)",
		})

		assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "geolocation=(self)", w.Header().Get("Permissions-Policy"))
	})

	t.Run("opt-out keeps only the baseline headers", func(t *testing.T) {
		w := secureRequest(SecurityConfig{})

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})
}
