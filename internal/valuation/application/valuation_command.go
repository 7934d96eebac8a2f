package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/utils"
)

// EngineDefaults 估值引擎默认离散化参数
type EngineDefaults struct {
	GridPoints       int
	TimeSteps        int
	BatchParallelism int
}

// ValuationCommandService 处理估值相关的命令操作，领域事件经 Outbox 发布
type ValuationCommandService struct {
	repo      domain.ValuationRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	defaults  EngineDefaults
	idGen     *utils.IDGenerator
}

// NewValuationCommandService 创建命令服务
func NewValuationCommandService(repo domain.ValuationRepository, publisher domain.EventPublisher, m *metrics.Metrics, defaults EngineDefaults) *ValuationCommandService {
	if defaults.BatchParallelism <= 0 {
		defaults.BatchParallelism = 1
	}
	idGen, err := utils.NewIDGenerator(1)
	if err != nil {
		logger.Warn(context.Background(), "snowflake id generator unavailable, batch ids fall back to uuid", "error", err)
	}
	return &ValuationCommandService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		defaults:  defaults,
		idGen:     idGen,
	}
}

// ValueOption 单笔估值：运行有限差分引擎，结果与事件在同一事务内落库
func (c *ValuationCommandService) ValueOption(ctx context.Context, cmd ValueOptionCommand) (*domain.ValuationResult, error) {
	if cmd.Symbol == "" {
		return nil, errors.New("symbol is required")
	}

	input := c.toEngineInput(cmd)

	start := time.Now()
	pricer, err := domain.NewFDDividendPricer(input, nil)
	if err != nil {
		c.recordFailure(ctx, cmd.Symbol, err)
		return nil, err
	}
	out, err := pricer.Calculate()
	if err != nil {
		c.recordFailure(ctx, cmd.Symbol, err)
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.ValuationsTotal.Inc()
		c.metrics.ValuationDuration.Observe(time.Since(start).Seconds())
	}

	result := domain.NewValuationResult(cmd.Symbol, input, out)

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.Save(txCtx, result); err != nil {
			return err
		}
		if c.publisher == nil {
			return nil
		}

		valuedEvent := domain.OptionValuedEvent{
			Symbol:       cmd.Symbol,
			OptionType:   input.Type,
			Exercise:     input.Exercise,
			Method:       domain.MethodFiniteDifference,
			Underlying:   input.Underlying,
			Strike:       input.Strike,
			Price:        out.Value,
			CVCorrection: out.ControlVariateCorrection,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		if err := c.publisher.PublishOptionValued(txCtx, valuedEvent); err != nil {
			return err
		}

		greeksEvent := domain.GreeksCalculatedEvent{
			Symbol:       cmd.Symbol,
			OptionType:   input.Type,
			Underlying:   input.Underlying,
			Delta:        out.Delta,
			Gamma:        out.Gamma,
			Theta:        out.Theta,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		return c.publisher.PublishGreeksCalculated(txCtx, greeksEvent)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ValueBatch 批量估值：各合约相互独立，有界并发执行；单笔失败不中断整批
func (c *ValuationCommandService) ValueBatch(ctx context.Context, cmd ValueBatchCommand) (*BatchResultDTO, error) {
	if len(cmd.Contracts) == 0 {
		return nil, errors.New("batch must contain at least one contract")
	}
	if c.metrics != nil {
		c.metrics.BatchSize.Observe(float64(len(cmd.Contracts)))
	}

	batch := &BatchResultDTO{
		BatchID: c.nextBatchID(),
		Total:   len(cmd.Contracts),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.defaults.BatchParallelism)

	for _, contract := range cmd.Contracts {
		contract := contract
		g.Go(func() error {
			result, err := c.ValueOption(gctx, contract)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.FailureCount++
				batch.Errors[contract.Symbol] = err.Error()
				return nil
			}
			batch.SuccessCount++
			batch.Results = append(batch.Results, toValuationDTO(result))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.publisher != nil {
		symbols := make([]string, 0, len(cmd.Contracts))
		for _, contract := range cmd.Contracts {
			symbols = append(symbols, contract.Symbol)
		}
		event := domain.BatchValuationCompletedEvent{
			BatchID:      batch.BatchID,
			Symbols:      symbols,
			Total:        batch.Total,
			SuccessCount: batch.SuccessCount,
			FailureCount: batch.FailureCount,
			CompletedAt:  time.Now().UnixMilli(),
			OccurredOn:   time.Now(),
		}
		if err := c.publisher.PublishBatchValuationCompleted(ctx, event); err != nil {
			logger.Error(ctx, "failed to publish batch completion event", "batch_id", batch.BatchID, "error", err)
		}
	}
	return batch, nil
}

// nextBatchID 生成批次标识
func (c *ValuationCommandService) nextBatchID() string {
	if c.idGen != nil {
		return fmt.Sprintf("BATCH-%d", c.idGen.NextID())
	}
	return uuid.New().String()
}

// toEngineInput 填充默认离散化参数并转换为引擎输入
func (c *ValuationCommandService) toEngineInput(cmd ValueOptionCommand) domain.DividendOptionInput {
	timeSteps := cmd.TimeSteps
	if timeSteps <= 0 {
		timeSteps = c.defaults.TimeSteps
	}
	gridPoints := cmd.GridPoints
	if gridPoints <= 0 {
		gridPoints = c.defaults.GridPoints
	}
	exercise := domain.ExerciseType(cmd.Exercise)
	if exercise == "" {
		exercise = domain.ExerciseEuropean
	}
	return domain.DividendOptionInput{
		Type:          domain.OptionType(cmd.OptionType),
		Exercise:      exercise,
		Underlying:    cmd.Underlying,
		Strike:        cmd.Strike,
		DividendYield: cmd.DividendYield,
		RiskFreeRate:  cmd.RiskFreeRate,
		ResidualTime:  cmd.ResidualTime,
		Volatility:    cmd.Volatility,
		Dividends:     cmd.Dividends,
		ExDates:       cmd.ExDates,
		TimeSteps:     timeSteps,
		GridPoints:    gridPoints,
	}
}

// recordFailure 上报失败指标并发布失败事件
func (c *ValuationCommandService) recordFailure(ctx context.Context, symbol string, cause error) {
	if c.metrics != nil {
		c.metrics.ValuationErrorsTotal.Inc()
	}
	if c.publisher == nil {
		return
	}
	code := "INTERNAL"
	var confErr *domain.ConfigurationError
	var gridErr *domain.DegenerateGridError
	switch {
	case errors.As(cause, &confErr):
		code = "CONFIGURATION"
	case errors.As(cause, &gridErr):
		code = "DEGENERATE_GRID"
	}
	event := domain.ValuationFailedEvent{
		Symbol:     symbol,
		Method:     domain.MethodFiniteDifference,
		Error:      cause.Error(),
		ErrorCode:  code,
		OccurredOn: time.Now(),
	}
	if err := c.publisher.PublishValuationFailed(ctx, event); err != nil {
		logger.Error(ctx, "failed to publish valuation failure event", "symbol", symbol, "error", err)
	}
}

// toValuationDTO 实体转传输对象
func toValuationDTO(r *domain.ValuationResult) *ValuationDTO {
	if r == nil {
		return nil
	}
	return &ValuationDTO{
		Symbol:       r.Symbol,
		Method:       r.Method,
		OptionType:   string(r.OptionType),
		Exercise:     string(r.Exercise),
		Underlying:   r.Underlying.String(),
		Strike:       r.Strike.String(),
		Price:        r.Price.String(),
		Delta:        r.Delta.String(),
		Gamma:        r.Gamma.String(),
		Theta:        r.Theta.String(),
		CVCorrection: r.CVCorrection.String(),
		CalculatedAt: r.CalculatedAt,
	}
}
