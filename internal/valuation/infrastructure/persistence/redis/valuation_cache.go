package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
)

// JSONCache 序列化缓存的最小依赖，*cache.RedisCache 与 *cache.BreakerCache 均满足
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// ValuationCache 最新估值结果的 Redis 缓存
type ValuationCache struct {
	cache  JSONCache
	prefix string
	ttl    time.Duration
}

// NewValuationCache 创建估值缓存，ttl 非正时取 15 分钟
func NewValuationCache(c JSONCache, ttl time.Duration) *ValuationCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ValuationCache{
		cache:  c,
		prefix: "valuation:latest:",
		ttl:    ttl,
	}
}

// SaveLatest 写入最新估值
func (r *ValuationCache) SaveLatest(ctx context.Context, result *domain.ValuationResult) error {
	if result == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, r.key(result.Symbol), result, r.ttl)
}

// GetLatest 读取最新估值，未命中时返回 nil
func (r *ValuationCache) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	if symbol == "" {
		return nil, nil
	}
	var result domain.ValuationResult
	if err := r.cache.GetJSON(ctx, r.key(symbol), &result); err != nil {
		return nil, err
	}
	if result.Symbol == "" {
		return nil, nil
	}
	return &result, nil
}

func (r *ValuationCache) key(symbol string) string {
	return fmt.Sprintf("%s%s", r.prefix, symbol)
}
