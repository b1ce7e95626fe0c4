package service

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/unxversal/pointgate/internal/config"
	"github.com/unxversal/pointgate/internal/model"
)

// ProductManager 管理上游产品接入方（永续、期权、借贷、清算引擎）
// 及其限流器。产品来自配置文件，启动时注册，之后可由管理接口替换。
type ProductManager struct {
	mu             sync.RWMutex
	products       map[string]*model.Product // Key: Gateway ApiKey
	limiters       map[string]*rate.Limiter  // Key: ProductID
	defaultProduct *model.Product
}

func NewProductManager(cfg *config.Config) *ProductManager {
	pm := &ProductManager{
		products: make(map[string]*model.Product),
		limiters: make(map[string]*rate.Limiter),
	}

	for i := range cfg.Products {
		pm.RegisterProduct(&cfg.Products[i])
	}

	// 单产品/演示模式：没有配置任何产品时注册一个默认接入方，
	// 配合 auth.require_api_key=false 使用。
	if len(cfg.Products) == 0 {
		def := &model.Product{
			ID:     "default-product",
			Name:   "Default Product",
			ApiKey: "pk-default-12345",
			Rate:   model.RateLimitConfig{QPS: 50, Burst: 100},
		}
		pm.RegisterProduct(def)
		pm.defaultProduct = def
	}

	return pm
}

func (pm *ProductManager) RegisterProduct(p *model.Product) {
	if p == nil {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.products[p.ApiKey] = p

	// QPS 为 0 表示不限流
	limit := rate.Limit(p.Rate.QPS)
	if limit == 0 {
		limit = rate.Inf
	}
	burst := p.Rate.Burst
	if burst == 0 {
		burst = 1
	}
	pm.limiters[p.ID] = rate.NewLimiter(limit, burst)
}

func (pm *ProductManager) ReplaceProduct(p *model.Product) {
	pm.RemoveProductByID(p.ID)
	pm.RegisterProduct(p)
}

func (pm *ProductManager) RemoveProductByID(id string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for key, p := range pm.products {
		if p != nil && p.ID == id {
			delete(pm.products, key)
			delete(pm.limiters, p.ID)
		}
	}
}

func (pm *ProductManager) GetProductByApiKey(apiKey string) (*model.Product, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.products[apiKey]
	return p, ok
}

func (pm *ProductManager) GetProductByID(id string) (*model.Product, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, p := range pm.products {
		if p != nil && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (pm *ProductManager) ListProducts() []*model.Product {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	results := make([]*model.Product, 0, len(pm.products))
	for _, p := range pm.products {
		if p != nil {
			results = append(results, p)
		}
	}
	return results
}

func (pm *ProductManager) DefaultProduct() *model.Product {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.defaultProduct
}

// GetLimiterForProduct 获取产品的限流器
func (pm *ProductManager) GetLimiterForProduct(productID string) *rate.Limiter {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.limiters[productID]
}
