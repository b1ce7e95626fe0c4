package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unxversal/pointgate/internal/middleware"
)

// RedisIdempotencyStore backs the idempotency middleware with Redis so that
// retried hook deliveries dedupe across gateway replicas.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(rc *RedisClient, ttlSeconds int) *RedisIdempotencyStore {
	if ttlSeconds <= 0 {
		ttlSeconds = 86400
	}
	return &RedisIdempotencyStore{
		client: rc.Client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

type storedRecord struct {
	Status     int    `json:"status"`
	Body       []byte `json:"body"`
	Processing bool   `json:"processing"`
	CreatedAt  int64  `json:"created_at"`
}

func idemKey(key string) string {
	return "idem:" + key
}

// GetOrLock 先尝试 SET NX 占坑；占坑失败说明已有记录（处理中或已完成）。
// Redis 不可达时按未命中处理，宁可重复计也不能拒绝 hook。
func (s *RedisIdempotencyStore) GetOrLock(key string) (*middleware.IdempotencyRecord, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	placeholder, _ := json.Marshal(storedRecord{
		Processing: true,
		CreatedAt:  time.Now().Unix(),
	})

	// 处理中的锁给一个短 TTL，崩溃的 worker 不会永久卡住这个 Key
	ok, err := s.client.SetNX(ctx, idemKey(key), placeholder, 30*time.Second).Result()
	if err != nil {
		return nil, false
	}
	if ok {
		return nil, false // 占坑成功，调用方是第一个
	}

	raw, err := s.client.Get(ctx, idemKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false
		}
		return nil, false
	}

	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &middleware.IdempotencyRecord{
		Status:     rec.Status,
		Body:       rec.Body,
		Processing: rec.Processing,
		CreatedAt:  time.Unix(rec.CreatedAt, 0),
	}, true
}

func (s *RedisIdempotencyStore) Save(key string, status int, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(storedRecord{
		Status:    status,
		Body:      body,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return
	}
	s.client.Set(ctx, idemKey(key), raw, s.ttl)
}

func (s *RedisIdempotencyStore) Unlock(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.client.Del(ctx, idemKey(key))
}
