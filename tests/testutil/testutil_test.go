package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)

	// No queries scripted and none issued.
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	t.Run("starts with a plain GET request", func(t *testing.T) {
		tc := NewTestContext(t)

		assert.NotNil(t, tc.Context)
		assert.NotNil(t, tc.Recorder)
		assert.NotNil(t, tc.Engine)
		assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
	})

	t.Run("stores the request id under the middleware key", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.SetRequestID("req-123")

		val, exists := tc.Context.Get("X-Request-ID")
		assert.True(t, exists)
		assert.Equal(t, "req-123", val)
	})

	t.Run("stores the employee id under the middleware key", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.SetEmployeeID("a2f1c3d4-0000-4000-8000-000000000001")

		val, exists := tc.Context.Get("employee_id")
		assert.True(t, exists)
		assert.Equal(t, "a2f1c3d4-0000-4000-8000-000000000001", val)
	})

	t.Run("sets request headers", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.SetHeader("X-Request-ID", "req-abc")

		assert.Equal(t, "req-abc", tc.Context.Request.Header.Get("X-Request-ID"))
	})

	t.Run("echoes the recorded status", func(t *testing.T) {
		tc := NewTestContext(t)
		tc.Recorder.WriteHeader(http.StatusCreated)

		assert.Equal(t, http.StatusCreated, tc.ResponseCode())
	})
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("clerk-ana"), NewTestUUID("clerk-ana"))
	assert.NotEqual(t, NewTestUUID("clerk-ana"), NewTestUUID("clerk-luis"))
}

func TestTestEmployeeID(t *testing.T) {
	employeeID := TestEmployeeID()

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", employeeID.String())
	assert.Equal(t, TestEmployeeID(), employeeID)
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
	defer cancel()

	require.NotNil(t, ctx)

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestAssertEventually(t *testing.T) {
	counter := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		counter = 1
	}()

	AssertEventually(t, func() bool {
		return counter == 1
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	value := false

	AssertNever(t, func() bool {
		return value
	}, 50*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCase(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "hello",
		})
	}

	RunHTTPTestCase(t, handler, HTTPTestCase{
		Name:           "success envelope",
		Method:         http.MethodGet,
		Path:           "/ledger/orders",
		ExpectedStatus: http.StatusOK,
		ExpectedBody: map[string]any{
			"success": true,
		},
	})
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{Name: "first", ExpectedStatus: http.StatusOK},
		{Name: "second", ExpectedStatus: http.StatusOK},
	})
}

func TestJSONResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"order_number": "NT-20260815-00001"})

	resp := JSONResponse(t, tc)
	assert.Equal(t, "NT-20260815-00001", resp["order_number"])
}

func TestJSONResponseAs(t *testing.T) {
	type orderRef struct {
		OrderNumber string `json:"order_number"`
	}

	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"order_number": "NT-20260815-00001"})

	resp := JSONResponseAs[orderRef](t, tc)
	assert.Equal(t, "NT-20260815-00001", resp.OrderNumber)
}

func TestAssertSuccessResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"success": true})

	AssertSuccessResponse(t, tc)
}

func TestToJSONReader(t *testing.T) {
	reader := ToJSONReader(t, map[string]string{"note_number": "NC-20260815-00001"})
	require.NotNil(t, reader)
}
