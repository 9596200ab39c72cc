package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joyeria/backend/internal/interfaces/http/dto"
)

const (
	// EmployeeIDHeader carries the acting employee on every mutating request
	EmployeeIDHeader = "X-Employee-ID"
	// EmployeeIDContextKey is the gin context key the extracted ID is stored under
	EmployeeIDContextKey = "employee_id"
)

// EmployeeIdentity extracts the acting employee from the X-Employee-ID
// header and stores it in the request context. Requests without a valid
// employee UUID are rejected when required is true; read-only routes can
// mount it with required false.
func EmployeeIdentity(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(EmployeeIDHeader)
		if raw == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeValidationRequired, "X-Employee-ID header is required"))
				return
			}
			c.Next()
			return
		}

		employeeID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeValidationFormat, "X-Employee-ID must be a valid UUID"))
			return
		}

		c.Set(EmployeeIDContextKey, employeeID.String())
		c.Next()
	}
}

// GetEmployeeID returns the employee ID extracted by EmployeeIdentity,
// or uuid.Nil when no identity was provided.
func GetEmployeeID(c *gin.Context) uuid.UUID {
	raw := c.GetString(EmployeeIDContextKey)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
