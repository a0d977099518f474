package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisEventDedupStore records gateway event IDs that have already been
// processed so redelivered webhooks are acknowledged without re-running
// side effects.
type RedisEventDedupStore struct {
	client *redis.Client
}

// NewRedisEventDedupStore creates an event dedup store backed by Redis.
func NewRedisEventDedupStore(client *redis.Client) *RedisEventDedupStore {
	return &RedisEventDedupStore{client: client}
}

func (s *RedisEventDedupStore) MarkIfFirst(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return s.client.SetNX(ctx, "payments:event:"+eventID, "1", ttl).Result()
}

func (s *RedisEventDedupStore) Forget(ctx context.Context, eventID string) error {
	return s.client.Del(ctx, "payments:event:"+eventID).Err()
}
