package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "creatorverse:session:"

// RedisStore keeps sessions in Redis so several server processes can share
// them. Expiry is delegated to the key TTL.
type RedisStore struct {
	client redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. The caller owns the client's lifecycle.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, handle string, p Principal, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("session: encoding principal: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+handle, data, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, handle string) (Principal, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+handle).Bytes()
	if errors.Is(err, redis.Nil) {
		return Anonymous(), ErrNoSession
	}
	if err != nil {
		return Anonymous(), fmt.Errorf("session: redis get: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return Anonymous(), fmt.Errorf("session: decoding principal: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Delete(ctx context.Context, handle string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+handle).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
