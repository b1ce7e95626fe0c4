package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/unxversal/pointgate/internal/config"
	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/service"
)

func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	pm := service.NewProductManager(cfg)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, pm))
	r.Use(RateLimitMiddleware(pm))
	r.POST("/ping", func(c *gin.Context) {
		product := c.MustGet(ContextProductKey).(*model.Product)
		c.JSON(http.StatusOK, gin.H{"product": product.ID})
	})
	return r
}

func do(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	if key != "" {
		req.Header.Set(HeaderGatewayKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiresKeyWhenConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.RequireAPIKey = true
	cfg.Products = []model.Product{
		{ID: "perps", Name: "Perps Engine", ApiKey: "pk-perps", Rate: model.RateLimitConfig{QPS: 100, Burst: 100}},
	}
	r := newAuthRouter(cfg)

	if w := do(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: status %d, want 401", w.Code)
	}
	if w := do(r, "wrong-key"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: status %d, want 401", w.Code)
	}
	if w := do(r, "pk-perps"); w.Code != http.StatusOK {
		t.Fatalf("valid key: status %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestAuthFallsBackToDefaultProduct(t *testing.T) {
	cfg := &config.Config{} // no products, require_api_key=false
	r := newAuthRouter(cfg)

	w := do(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous request: status %d, want 200", w.Code)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.RequireAPIKey = true
	cfg.Products = []model.Product{
		{ID: "options", Name: "Options Engine", ApiKey: "pk-options", Rate: model.RateLimitConfig{QPS: 0.001, Burst: 2}},
	}
	r := newAuthRouter(cfg)

	for i := 0; i < 2; i++ {
		if w := do(r, "pk-options"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, w.Code)
		}
	}
	if w := do(r, "pk-options"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded: status %d, want 429", w.Code)
	}
}
