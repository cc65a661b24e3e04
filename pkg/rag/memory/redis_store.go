package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps conversation memory in Redis so multiple instances can
// share it. Each user's history is a list of JSON-encoded turns under one
// key; every touch resets the key's TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *RedisStore) key(userID string) string {
	return "chat:memory:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) ([]Turn, error) {
	key := s.key(userID)

	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis memory read: %w", err)
	}
	if len(raw) > 0 {
		s.rdb.Expire(ctx, key, s.ttl)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("redis memory decode: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, userID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	key := s.key(userID)

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("redis memory encode: %w", err)
		}
		values = append(values, raw)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis memory append: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, s.key(userID)).Err()
}
