// Package ratelimit 提供基于 Redis 的分布式限流器
package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limiter 按 key 限流，所有 key 共享同一规则
type Limiter struct {
	limiter *redis_rate.Limiter
	rps     int
	burst   int
	prefix  string
}

// New 创建限流器，rps 为每秒配额，burst 为突发容量
func New(rdb *redis.Client, prefix string, rps, burst int) *Limiter {
	if burst < rps {
		burst = rps
	}
	return &Limiter{
		limiter: redis_rate.NewLimiter(rdb),
		rps:     rps,
		burst:   burst,
		prefix:  prefix,
	}
}

// Allow 检查 key 是否允许一次请求
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	limit := redis_rate.PerSecond(l.rps)
	limit.Burst = l.burst

	res, err := l.limiter.Allow(ctx, fmt.Sprintf("%s:%s", l.prefix, key), limit)
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return res.Allowed > 0, nil
}
