package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/model"
)

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewInMemIdempotencyStore()
	product := &model.Product{ID: "perps", ApiKey: "pk"}

	var calls atomic.Int64
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextProductKey, product)
	})
	r.Use(IdempotencyMiddleware(store))
	r.POST("/hook", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"call": n})
	})

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send("fill-123")
	second := send("fill-123")

	if calls.Load() != 1 {
		t.Fatalf("handler executed %d times, want 1", calls.Load())
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", first.Body.String(), second.Body.String())
	}

	// A different key executes the handler again.
	send("fill-456")
	if calls.Load() != 2 {
		t.Fatalf("handler executed %d times, want 2", calls.Load())
	}

	// No key: always executes.
	send("")
	if calls.Load() != 3 {
		t.Fatalf("handler executed %d times, want 3", calls.Load())
	}
}

func TestIdempotencyDoesNotCacheServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewInMemIdempotencyStore()
	product := &model.Product{ID: "perps", ApiKey: "pk"}

	var calls atomic.Int64
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextProductKey, product)
	})
	r.Use(IdempotencyMiddleware(store))
	r.POST("/hook", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transient"})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set(HeaderIdempotencyKey, "retry-me")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status %d, want 500", w.Code)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("handler executed %d times, want 2 (500s must not be cached)", calls.Load())
	}
}
