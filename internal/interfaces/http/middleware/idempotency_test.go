package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/joyeria/backend/internal/domain/shared"
)

// fakeIdempotencyStore is an in-memory shared.IdempotencyStore that can
// simulate store outages.
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	enabled := shared.IdempotencyConfig{TTL: time.Minute, Enabled: true}

	newRouter := func(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) *gin.Engine {
		router := gin.New()
		router.Use(Idempotency(store, cfg))
		router.POST("/orders", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		router.POST("/credit-notes", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		router.GET("/orders", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	post := func(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", path, nil)
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("first request passes, replay is rejected", func(t *testing.T) {
		router := newRouter(newFakeIdempotencyStore(), enabled)

		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)

		replay := post(router, "/orders", "abc-123")
		assert.Equal(t, http.StatusConflict, replay.Code)
		assert.Contains(t, replay.Body.String(), "already processed")
	})

	t.Run("same key is scoped per operation", func(t *testing.T) {
		router := newRouter(newFakeIdempotencyStore(), enabled)

		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
		assert.Equal(t, http.StatusOK, post(router, "/credit-notes", "abc-123").Code)
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		router := newRouter(store, enabled)

		assert.Equal(t, http.StatusOK, post(router, "/orders", "").Code)
		assert.Equal(t, http.StatusOK, post(router, "/orders", "").Code)
		assert.Empty(t, store.seen)
	})

	t.Run("read requests are never guarded", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		router := newRouter(store, enabled)

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set(IdempotencyKeyHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, store.seen)
	})

	t.Run("disabled config passes everything through", func(t *testing.T) {
		router := newRouter(newFakeIdempotencyStore(), shared.IdempotencyConfig{Enabled: false})

		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
	})

	t.Run("nil store passes everything through", func(t *testing.T) {
		router := newRouter(nil, enabled)

		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
	})

	t.Run("store outage fails open", func(t *testing.T) {
		store := newFakeIdempotencyStore()
		store.err = assert.AnError
		router := newRouter(store, enabled)

		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
		assert.Equal(t, http.StatusOK, post(router, "/orders", "abc-123").Code)
	})
}
