package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
)

// queryRepository 可配置返回值的只读仓储
type queryRepository struct {
	fakeRepository
	latest      *domain.ValuationResult
	history     []*domain.ValuationResult
	total       int64
	latestCalls int
	gotOffset   int
	gotLimit    int
}

func (q *queryRepository) GetLatest(context.Context, string) (*domain.ValuationResult, error) {
	q.latestCalls++
	return q.latest, nil
}

func (q *queryRepository) GetHistory(_ context.Context, _ string, offset, limit int) ([]*domain.ValuationResult, int64, error) {
	q.gotOffset = offset
	q.gotLimit = limit
	return q.history, q.total, nil
}

// fakeCache 内存缓存，可注入读错误
type fakeCache struct {
	store   map[string]*domain.ValuationResult
	readErr error
	writes  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]*domain.ValuationResult)}
}

func (f *fakeCache) SaveLatest(_ context.Context, result *domain.ValuationResult) error {
	f.writes++
	f.store[result.Symbol] = result
	return nil
}

func (f *fakeCache) GetLatest(_ context.Context, symbol string) (*domain.ValuationResult, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.store[symbol], nil
}

func sampleResult(symbol string) *domain.ValuationResult {
	return &domain.ValuationResult{
		Symbol:     symbol,
		Method:     domain.MethodFiniteDifference,
		OptionType: domain.OptionTypeCall,
		Exercise:   domain.ExerciseEuropean,
		Underlying: decimal.NewFromInt(100),
		Strike:     decimal.NewFromInt(100),
		Price:      decimal.NewFromFloat(10.45),
	}
}

func TestGetLatestCacheMissBackfills(t *testing.T) {
	repo := &queryRepository{latest: sampleResult("AAPL")}
	cache := newFakeCache()
	svc := NewValuationQueryService(repo, cache, nil)

	dto, err := svc.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, dto)
	assert.Equal(t, "AAPL", dto.Symbol)
	assert.Equal(t, 1, repo.latestCalls)
	assert.Equal(t, 1, cache.writes)

	// 第二次命中缓存，不再回源
	dto, err = svc.GetLatest(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, dto)
	assert.Equal(t, 1, repo.latestCalls)
}

func TestGetLatestCacheErrorFallsThrough(t *testing.T) {
	repo := &queryRepository{latest: sampleResult("MSFT")}
	cache := newFakeCache()
	cache.readErr = errors.New("redis unavailable")
	svc := NewValuationQueryService(repo, cache, nil)

	dto, err := svc.GetLatest(context.Background(), "MSFT")
	require.NoError(t, err)
	require.NotNil(t, dto)
	assert.Equal(t, "10.45", dto.Price)
	assert.Equal(t, 1, repo.latestCalls)
}

func TestGetLatestWithoutCache(t *testing.T) {
	repo := &queryRepository{}
	svc := NewValuationQueryService(repo, nil, nil)

	dto, err := svc.GetLatest(context.Background(), "UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, dto)
}

func TestListHistoryPagination(t *testing.T) {
	repo := &queryRepository{
		history: []*domain.ValuationResult{sampleResult("AAPL"), sampleResult("AAPL")},
		total:   42,
	}
	svc := NewValuationQueryService(repo, nil, nil)

	out, err := svc.ListHistory(context.Background(), "AAPL", 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, repo.gotOffset)
	assert.Equal(t, 20, repo.gotLimit)
	assert.Equal(t, 3, out.Page)
	assert.Equal(t, 20, out.PageSize)
	assert.Equal(t, int64(42), out.Total)
	assert.Len(t, out.Items, 2)
}

func TestListHistoryNormalizesPaging(t *testing.T) {
	repo := &queryRepository{}
	svc := NewValuationQueryService(repo, nil, nil)

	out, err := svc.ListHistory(context.Background(), "AAPL", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.gotOffset)
	assert.Equal(t, 10, repo.gotLimit)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 10, out.PageSize)
}
