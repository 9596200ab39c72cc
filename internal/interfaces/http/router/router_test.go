package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve issues a request against the engine and returns the recorder.
func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textHandler(status int, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(status, body)
	}
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("ledger", "/ledger"))
	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("system", "/system")
	group.GET("/ping", textHandler(http.StatusOK, "pong"))

	r.Register(group)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/system/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("carries name and prefix", func(t *testing.T) {
		g := NewDomainGroup("ledger", "/ledger")
		assert.Equal(t, "ledger", g.Name())
		assert.Equal(t, "/ledger", g.Prefix())
	})

	t.Run("replays each HTTP method", func(t *testing.T) {
		methods := map[string]int{
			http.MethodGet:    http.StatusOK,
			http.MethodPost:   http.StatusCreated,
			http.MethodPut:    http.StatusOK,
			http.MethodPatch:  http.StatusOK,
			http.MethodDelete: http.StatusNoContent,
		}

		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")
		g.GET("/orders", textHandler(http.StatusOK, "list"))
		g.POST("/orders", textHandler(http.StatusCreated, "opened"))
		g.PUT("/orders/:id", textHandler(http.StatusOK, "replaced"))
		g.PATCH("/orders/:id", textHandler(http.StatusOK, "amended"))
		g.DELETE("/orders/:id", textHandler(http.StatusNoContent, ""))

		g.RegisterRoutes(engine.Group("/api/v1"))

		for method, wantStatus := range methods {
			path := "/api/v1/ledger/orders"
			if method != http.MethodGet && method != http.MethodPost {
				path += "/123"
			}
			w := serve(engine, method, path)
			assert.Equal(t, wantStatus, w.Code, "method %s", method)
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")

		g.Use(func(c *gin.Context) {
			c.Header("X-Store", "centro")
			c.Next()
		})
		g.GET("/orders", textHandler(http.StatusOK, "ok"))

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/ledger/orders")
		assert.Equal(t, "centro", w.Header().Get("X-Store"))
	})

	t.Run("nests subgroups under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "/ledger")

		orders := g.Group("orders", "/orders")
		orders.GET("", textHandler(http.StatusOK, "orders list"))

		notes := g.Group("credit-notes", "/credit-notes")
		notes.GET("", textHandler(http.StatusOK, "credit notes list"))

		g.RegisterRoutes(engine.Group("/api/v1"))

		w1 := serve(engine, http.MethodGet, "/api/v1/ledger/orders")
		assert.Equal(t, http.StatusOK, w1.Code)
		assert.Equal(t, "orders list", w1.Body.String())

		w2 := serve(engine, http.MethodGet, "/api/v1/ledger/credit-notes")
		assert.Equal(t, http.StatusOK, w2.Code)
		assert.Equal(t, "credit notes list", w2.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.GET("/orders", textHandler(http.StatusOK, "orders"))

	system := NewDomainGroup("system", "/system")
	system.GET("/info", textHandler(http.StatusOK, "system info"))

	r.Register(ledger).Register(system)
	r.Setup()

	w1 := serve(engine, http.MethodGet, "/api/v1/ledger/orders")
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "orders", w1.Body.String())

	w2 := serve(engine, http.MethodGet, "/api/v1/system/info")
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "system info", w2.Body.String())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("ledger", "/ledger")
	g.GET("/a", textHandler(http.StatusOK, "a")).
		POST("/b", textHandler(http.StatusOK, "b")).
		PUT("/c", textHandler(http.StatusOK, "c"))

	r.Register(g).Setup()

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/ledger/a"},
		{http.MethodPost, "/api/v1/ledger/b"},
		{http.MethodPut, "/api/v1/ledger/c"},
	} {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "route %s %s", tt.method, tt.path)
	}
}
