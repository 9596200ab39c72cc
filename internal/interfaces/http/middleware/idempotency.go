package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joyeria/backend/internal/domain/shared"
	"github.com/joyeria/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader lets clients retry mutating requests safely
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects replays of mutating requests that carry an
// Idempotency-Key header already seen within the configured TTL. Requests
// without the header pass through untouched; the store decides atomically,
// so two concurrent replays cannot both win.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || store == nil {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		// Scope the key by method and path so the same client key can be
		// reused across different operations.
		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key

		fresh, err := store.MarkProcessed(c.Request.Context(), scoped, cfg.TTL)
		if err != nil {
			// The store being unreachable must not take the counter down;
			// let the request through without the replay guard.
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeConflict, "Request with this Idempotency-Key was already processed"))
			return
		}

		c.Next()
	}
}
