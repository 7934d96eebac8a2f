package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
)

type txMarkerKey struct{}

// fakeRepository 内存仓储，WithTx 通过 ctx 标记模拟事务边界
type fakeRepository struct {
	mu      sync.Mutex
	saved   []*domain.ValuationResult
	savedTx []bool
	saveErr error
}

func (f *fakeRepository) Save(ctx context.Context, result *domain.ValuationResult) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, result)
	f.savedTx = append(f.savedTx, ctx.Value(txMarkerKey{}) != nil)
	return nil
}

func (f *fakeRepository) GetLatest(context.Context, string) (*domain.ValuationResult, error) {
	return nil, nil
}

func (f *fakeRepository) GetHistory(context.Context, string, int, int) ([]*domain.ValuationResult, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txMarkerKey{}, true))
}

// fakePublisher 记录发布的事件及其是否处于事务上下文中
type fakePublisher struct {
	mu             sync.Mutex
	valued         []domain.OptionValuedEvent
	greeks         []domain.GreeksCalculatedEvent
	failed         []domain.ValuationFailedEvent
	batchCompleted []domain.BatchValuationCompletedEvent
	inTx           []bool
}

func (f *fakePublisher) PublishOptionValued(ctx context.Context, event domain.OptionValuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valued = append(f.valued, event)
	f.inTx = append(f.inTx, ctx.Value(txMarkerKey{}) != nil)
	return nil
}

func (f *fakePublisher) PublishGreeksCalculated(ctx context.Context, event domain.GreeksCalculatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.greeks = append(f.greeks, event)
	f.inTx = append(f.inTx, ctx.Value(txMarkerKey{}) != nil)
	return nil
}

func (f *fakePublisher) PublishValuationFailed(_ context.Context, event domain.ValuationFailedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, event)
	return nil
}

func (f *fakePublisher) PublishBatchValuationCompleted(_ context.Context, event domain.BatchValuationCompletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCompleted = append(f.batchCompleted, event)
	return nil
}

func validCommand(symbol string) ValueOptionCommand {
	return ValueOptionCommand{
		Symbol:       symbol,
		OptionType:   "CALL",
		Exercise:     "EUROPEAN",
		Underlying:   100,
		Strike:       100,
		RiskFreeRate: 0.05,
		ResidualTime: 1.0,
		Volatility:   0.2,
		Dividends:    []float64{5},
		ExDates:      []float64{0.5},
	}
}

func newTestService(repo *fakeRepository, pub *fakePublisher) *ValuationCommandService {
	return NewValuationCommandService(repo, pub, nil, EngineDefaults{
		GridPoints:       51,
		TimeSteps:        50,
		BatchParallelism: 4,
	})
}

func TestValueOptionPersistsAndPublishesInTx(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	result, err := svc.ValueOption(context.Background(), validCommand("AAPL-C-100"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "AAPL-C-100", result.Symbol)
	assert.Equal(t, domain.MethodFiniteDifference, result.Method)
	assert.True(t, result.Price.IsPositive())

	require.Len(t, repo.saved, 1)
	assert.True(t, repo.savedTx[0], "save must run inside the transaction")

	require.Len(t, pub.valued, 1)
	require.Len(t, pub.greeks, 1)
	for i, inTx := range pub.inTx {
		assert.True(t, inTx, "event %d must be published inside the transaction", i)
	}
	assert.Equal(t, "AAPL-C-100", pub.valued[0].Symbol)
	assert.Equal(t, result.CalculatedAt, pub.greeks[0].CalculatedAt)
	assert.Empty(t, pub.failed)
}

func TestValueOptionAppliesEngineDefaults(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo, &fakePublisher{})

	cmd := validCommand("DEFAULTS")
	cmd.Exercise = ""
	cmd.TimeSteps = 0
	cmd.GridPoints = 0

	result, err := svc.ValueOption(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseEuropean, result.Exercise)
}

func TestValueOptionValidationFailurePublishesFailedEvent(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	cmd := validCommand("BAD-DIV")
	cmd.Dividends = []float64{150}

	_, err := svc.ValueOption(context.Background(), cmd)
	require.Error(t, err)
	var confErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &confErr)

	assert.Empty(t, repo.saved)
	require.Len(t, pub.failed, 1)
	assert.Equal(t, "BAD-DIV", pub.failed[0].Symbol)
	assert.Equal(t, "CONFIGURATION", pub.failed[0].ErrorCode)
}

func TestValueOptionRejectsEmptySymbol(t *testing.T) {
	svc := newTestService(&fakeRepository{}, &fakePublisher{})

	_, err := svc.ValueOption(context.Background(), ValueOptionCommand{})
	require.Error(t, err)
}

func TestValueBatchAggregatesMixedOutcomes(t *testing.T) {
	repo := &fakeRepository{}
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	bad := validCommand("BAD")
	bad.Volatility = 0

	batch, err := svc.ValueBatch(context.Background(), ValueBatchCommand{
		Contracts: []ValueOptionCommand{validCommand("A"), bad, validCommand("C")},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.Len(t, batch.Results, 2)
	assert.Contains(t, batch.Errors, "BAD")

	require.Len(t, pub.batchCompleted, 1)
	completed := pub.batchCompleted[0]
	assert.Equal(t, batch.BatchID, completed.BatchID)
	assert.Equal(t, 2, completed.SuccessCount)
	assert.Equal(t, 1, completed.FailureCount)
	assert.ElementsMatch(t, []string{"A", "BAD", "C"}, completed.Symbols)

	// 单笔失败不影响其余合约落库
	assert.Len(t, repo.saved, 2)
}

func TestValueBatchRejectsEmptyBatch(t *testing.T) {
	svc := newTestService(&fakeRepository{}, &fakePublisher{})

	_, err := svc.ValueBatch(context.Background(), ValueBatchCommand{})
	require.Error(t, err)
}
