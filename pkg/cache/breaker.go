package cache

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// BreakerConfig 缓存熔断配置
type BreakerConfig struct {
	// 半开状态允许的探测请求数
	MaxRequests uint32
	// 打开后的冷却时间（秒）
	OpenTimeout int
	// 触发熔断的连续失败次数
	ConsecutiveFailures uint32
}

// BreakerCache 带熔断保护的 Redis 缓存。
// Redis 持续失败时快速拒绝后续请求，避免慢调用拖垮主流程；
// 调用方将熔断错误视作未命中并回源。
type BreakerCache struct {
	inner *RedisCache
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerCache 包装已有缓存实例，附加熔断保护
func NewBreakerCache(inner *RedisCache, cfg BreakerConfig) *BreakerCache {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: cfg.MaxRequests,
		Timeout:     time.Duration(cfg.OpenTimeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "cache circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerCache{inner: inner, cb: cb}
}

// GetJSON 读取 JSON 缓存值，熔断打开时直接返回 gobreaker.ErrOpenState
func (b *BreakerCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.GetJSON(ctx, key, dest)
	})
	return err
}

// SetJSON 写入 JSON 缓存值
func (b *BreakerCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.SetJSON(ctx, key, value, expiration)
	})
	return err
}

// Delete 删除缓存
func (b *BreakerCache) Delete(ctx context.Context, keys ...string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Delete(ctx, keys...)
	})
	return err
}

// Close 关闭底层连接
func (b *BreakerCache) Close() error {
	return b.inner.Close()
}
