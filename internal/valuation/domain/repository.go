package domain

import "context"

// ValuationRepository 估值结果仓储接口
type ValuationRepository interface {
	Save(ctx context.Context, result *ValuationResult) error
	GetLatest(ctx context.Context, symbol string) (*ValuationResult, error)
	GetHistory(ctx context.Context, symbol string, offset, limit int) ([]*ValuationResult, int64, error)
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ValuationCache 估值结果缓存接口
type ValuationCache interface {
	SaveLatest(ctx context.Context, result *ValuationResult) error
	GetLatest(ctx context.Context, symbol string) (*ValuationResult, error)
}
