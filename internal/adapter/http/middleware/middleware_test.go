package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), RequestLogger(), APIKey(key, "/healthz", "/checkout/"))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/checkout/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path, key string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAPIKey(t *testing.T) {
	r := newRouter("secret")

	cases := []struct {
		name string
		path string
		key  string
		want int
	}{
		{name: "missing key", path: "/users", want: http.StatusUnauthorized},
		{name: "wrong key", path: "/users", key: "nope", want: http.StatusUnauthorized},
		{name: "valid key", path: "/users", key: "secret", want: http.StatusOK},
		{name: "health is public", path: "/healthz", want: http.StatusOK},
		{name: "redirect is public", path: "/checkout/o-1", want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := do(r, tc.path, tc.key); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestAPIKey_DisabledWhenEmpty(t *testing.T) {
	if got := do(newRouter(""), "/users", ""); got != http.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestRecovery(t *testing.T) {
	if got := do(newRouter(""), "/panic", ""); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
