package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyLimitRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/ledger/orders", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil && !errors.Is(err, io.EOF) {
			c.String(http.StatusBadRequest, "body too large")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ledger/orders", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("accepts a body within the limit", func(t *testing.T) {
		router := newBodyLimitRouter(1024)

		req := httptest.NewRequest("POST", "/ledger/orders", strings.NewReader(`{"type":"SALE"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversized declared length", func(t *testing.T) {
		router := newBodyLimitRouter(100)

		req := httptest.NewRequest("POST", "/ledger/orders", strings.NewReader(strings.Repeat("x", 200)))
		req.ContentLength = 200
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("bodyless requests pass untouched", func(t *testing.T) {
		router := newBodyLimitRouter(10)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ledger/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps chunked uploads while reading", func(t *testing.T) {
		router := newBodyLimitRouter(50)

		// No declared length, so the up-front check cannot apply.
		req := httptest.NewRequest("POST", "/ledger/orders", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
