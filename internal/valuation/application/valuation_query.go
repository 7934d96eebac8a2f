package application

import (
	"context"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/utils"
)

// ValuationQueryService 处理估值相关的查询操作，读路径走缓存旁路
type ValuationQueryService struct {
	repo    domain.ValuationRepository
	cache   domain.ValuationCache
	metrics *metrics.Metrics
}

// NewValuationQueryService 创建查询服务，cache 可为空
func NewValuationQueryService(repo domain.ValuationRepository, cache domain.ValuationCache, m *metrics.Metrics) *ValuationQueryService {
	return &ValuationQueryService{
		repo:    repo,
		cache:   cache,
		metrics: m,
	}
}

// GetLatest 查询最新估值，先查缓存，未命中回源并回填
func (s *ValuationQueryService) GetLatest(ctx context.Context, symbol string) (*ValuationDTO, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "valuation cache read failed", "symbol", symbol, "error", err)
		} else if cached != nil {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return toValuationDTO(cached), nil
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}

	result, err := s.repo.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.SaveLatest(ctx, result); err != nil {
			logger.Warn(ctx, "valuation cache write failed", "symbol", symbol, "error", err)
		}
	}
	return toValuationDTO(result), nil
}

// ListHistory 分页查询估值历史
func (s *ValuationQueryService) ListHistory(ctx context.Context, symbol string, page, pageSize int) (*HistoryDTO, error) {
	p := utils.NewPagination(page, pageSize, 0)

	results, total, err := s.repo.GetHistory(ctx, symbol, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}

	items := make([]*ValuationDTO, len(results))
	for i, r := range results {
		items[i] = toValuationDTO(r)
	}
	return &HistoryDTO{
		Items:    items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    total,
	}, nil
}
