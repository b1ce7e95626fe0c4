package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/unxversal/pointgate/internal/model"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Faucet   FaucetConfig    `mapstructure:"faucet"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Engine   model.Params    `mapstructure:"engine"`
	Products []model.Product `mapstructure:"products"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	ReadOnly bool   `mapstructure:"read_only"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	AdminKey      string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	EventRetentionDays int    `mapstructure:"event_retention_days"`
	WeekRetentionWeeks int64  `mapstructure:"week_retention_weeks"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

// FaucetConfig points at the external faucet service that performs the
// actual mint; the engine only gates whether to call it.
type FaucetConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. POINTGATE_SERVER_PORT, POINTGATE_REDIS_ADDR
	viper.SetEnvPrefix("pointgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.read_only", false)
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("auth.admin_key", "")
	viper.SetDefault("database.event_retention_days", 30)
	// 与 Redis 周积分 hash 的 9 周过期保持一致
	viper.SetDefault("database.week_retention_weeks", 9)
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("faucet.timeout_ms", 5000)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// Engine parameter defaults. 权重为 1e6-scaled；这里的默认值对应
	// volume 因子 0.23、maker 因子 0.1 等，可被配置文件或 admin 接口整体替换。
	viper.SetDefault("engine.weights.volume", 230_000)
	viper.SetDefault("engine.weights.maker", 100_000)
	viper.SetDefault("engine.weights.pnl", 150_000)
	viper.SetDefault("engine.weights.funding", 50_000)
	viper.SetDefault("engine.weights.borrow", 80_000)
	viper.SetDefault("engine.weights.lend", 60_000)
	viper.SetDefault("engine.weights.liquidation", 40_000)
	viper.SetDefault("engine.referral.l1_bps", 1000)
	viper.SetDefault("engine.referral.l2_bps", 300)
	viper.SetDefault("engine.referral.l3_bps", 100)
	viper.SetDefault("engine.referral.week_cap_bps", 10000)
	viper.SetDefault("engine.faucet.day_mint_cap", 100_000_000) // 100 tokens/day
	viper.SetDefault("engine.faucet.tier_loss_budgets", []int64{50_000_000, 200_000_000, 500_000_000, 2_000_000_000})
	viper.SetDefault("engine.faucet.cooldown_days", 3)
	viper.SetDefault("engine.tier_thresholds", []int64{0, 10_000, 50_000, 250_000})
	viper.SetDefault("engine.leaderboard_k", 100)
	viper.SetDefault("engine.hist_bucket_edges", []int64{0, 100, 500, 1_000, 5_000, 10_000, 50_000, 100_000, 500_000})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
