package counter

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-pethotel-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
)

type RedisAllocator struct {
	rdb *redis.Client
}

func NewRedisAllocator(rdb *redis.Client) *RedisAllocator {
	return &RedisAllocator{rdb: rdb}
}

func (a *RedisAllocator) Next(ctx context.Context, kind Kind) (string, error) {
	n, err := a.rdb.Incr(ctx, fmt.Sprintf(redisx.KeyCounter, kind)).Result()
	if err != nil {
		return "", fmt.Errorf("allocate %s id: %w", kind, err)
	}
	return Format(kind, n), nil
}
