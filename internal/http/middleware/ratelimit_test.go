package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Handler())
	r.POST("/submit", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := limitedRouter(NewRateLimiter(0, 2, KeyByUserOrIP()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-burst status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(0, 1, func(c *gin.Context) string {
		return c.GetHeader("X-Tenant")
	})
	r := limitedRouter(rl)

	for _, tenant := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("X-Tenant", tenant)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("tenant %s blocked on first request: %d", tenant, w.Code)
		}
	}
}

func TestRateLimiterReplayBypass(t *testing.T) {
	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ctxKeyRateBypass, true) })
	r.Use(rl.Handler())
	r.POST("/submit", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("replay %d limited: %d", i+1, w.Code)
		}
	}
}

func TestKeyByUserOrIPPrefersUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn := KeyByUserOrIP()
	if key := fn(c); key[:3] != "ip:" {
		t.Fatalf("anonymous key = %q, want ip-prefixed", key)
	}
	c.Set("userID", "u-42")
	if key := fn(c); key != "user:u-42" {
		t.Fatalf("key = %q, want user:u-42", key)
	}
}
