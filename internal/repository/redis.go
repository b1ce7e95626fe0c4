package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"github.com/unxversal/pointgate/internal/config"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// SaveWeekPoints mirrors the per-(week, user) snapshot into a hash per week
// so read replicas can serve point queries without touching the engine.
func (r *RedisClient) SaveWeekPoints(ctx context.Context, week int64, user common.Address, total int64) error {
	key := weekPointsKey(week)
	pipe := r.Client.Pipeline()
	pipe.HSet(ctx, key, user.Hex(), total)
	// 9 周后自动过期，保留足够的历史榜单窗口
	pipe.Expire(ctx, key, 9*7*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetWeekPoints reads the mirrored snapshot. found 为 false 时调用方应该回退到
// Postgres（hash 可能已过期，也可能该用户那周没有积分）。
func (r *RedisClient) GetWeekPoints(ctx context.Context, week int64, user common.Address) (points int64, found bool, err error) {
	val, err := r.Client.HGet(ctx, weekPointsKey(week), user.Hex()).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	points, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return points, true, nil
}

func weekPointsKey(week int64) string {
	return fmt.Sprintf("points:week:%d", week)
}
