package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dajiagoods/storefront/internal/redisx"
)

// Redis persists the fallback collections across restarts. Concurrent
// writers race with last-writer-wins semantics, which is accepted.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) Load(ctx context.Context, key string, dest any) error {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return decode(key, raw, dest)
}

func (r *Redis) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	// Session carts expire, backup collections do not.
	var ttl time.Duration
	if strings.HasPrefix(key, redisx.CartKey("")) {
		ttl = redisx.TTLCart
	}
	return r.rdb.Set(ctx, key, raw, ttl).Err()
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
