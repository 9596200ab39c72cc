package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joyeria/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callSystem invokes a SystemHandler method directly, outside the router.
func callSystem(t *testing.T, path string, fn func(*gin.Context)) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, path, nil)

	fn(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	return resp
}

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler()
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandlerGetSystemInfo(t *testing.T) {
	h := NewSystemHandler()
	resp := callSystem(t, "/system/info", h.GetSystemInfo)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Joyeria Back Office API", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandlerPing(t *testing.T) {
	h := NewSystemHandler()
	resp := callSystem(t, "/system/ping", h.Ping)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])

	ts, ok := data["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}
