package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEmployeeIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(required bool, captured *uuid.UUID) *gin.Engine {
		router := gin.New()
		router.Use(EmployeeIdentity(required))
		router.POST("/test", func(c *gin.Context) {
			if captured != nil {
				*captured = GetEmployeeID(c)
			}
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("extracts employee ID from header", func(t *testing.T) {
		employeeID := uuid.New()
		var captured uuid.UUID
		router := newRouter(true, &captured)

		req := httptest.NewRequest("POST", "/test", nil)
		req.Header.Set(EmployeeIDHeader, employeeID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, employeeID, captured)
	})

	t.Run("rejects missing header when required", func(t *testing.T) {
		router := newRouter(true, nil)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "X-Employee-ID header is required")
	})

	t.Run("allows missing header when optional", func(t *testing.T) {
		var captured uuid.UUID
		router := newRouter(false, &captured)

		req := httptest.NewRequest("POST", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uuid.Nil, captured)
	})

	t.Run("rejects malformed employee ID even when optional", func(t *testing.T) {
		router := newRouter(false, nil)

		req := httptest.NewRequest("POST", "/test", nil)
		req.Header.Set(EmployeeIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be a valid UUID")
	})
}

func TestGetEmployeeID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns stored employee ID", func(t *testing.T) {
		employeeID := uuid.New()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(EmployeeIDContextKey, employeeID.String())

		assert.Equal(t, employeeID, GetEmployeeID(c))
	})

	t.Run("returns nil UUID when unset", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.Equal(t, uuid.Nil, GetEmployeeID(c))
	})

	t.Run("returns nil UUID for garbage in context", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(EmployeeIDContextKey, "garbage")

		assert.Equal(t, uuid.Nil, GetEmployeeID(c))
	})
}
