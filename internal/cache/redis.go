package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "contractpay:query:"

// Redis is the shared Cache backing the API's response cache. Entries expire
// after the TTL even without an invalidation.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, parts ...string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, redisNamespace+Join(parts...)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, value []byte, parts ...string) error {
	return r.rdb.Set(ctx, redisNamespace+Join(parts...), value, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, prefix ...string) error {
	pattern := redisNamespace + Join(prefix...) + "*"
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		// SCAN matches raw strings; keep only true segment-prefix matches
		// so ["…","5"] does not take out ["…","55"].
		var doomed []string
		for _, k := range keys {
			if matchesPrefix(split(k[len(redisNamespace):]), prefix) {
				doomed = append(doomed, k)
			}
		}
		if len(doomed) > 0 {
			if err := r.rdb.Del(ctx, doomed...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
