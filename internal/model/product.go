package model

// RateLimitConfig 定义调用方的限流规则
type RateLimitConfig struct {
	QPS   float64 `json:"qps" mapstructure:"qps"`     // 每秒查询数
	Burst int     `json:"burst" mapstructure:"burst"` // 突发桶大小
}

// Product 代表一个上游产品接入方 (永续、期权、借贷、清算引擎等)。
// 每个 hook 调用都必须携带某个产品的 Access Key。
type Product struct {
	ID     string          `json:"id" mapstructure:"id"`
	Name   string          `json:"name" mapstructure:"name"`
	ApiKey string          `json:"api_key" mapstructure:"api_key"` // 网关颁发给产品的 Access Key
	Rate   RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`
}
