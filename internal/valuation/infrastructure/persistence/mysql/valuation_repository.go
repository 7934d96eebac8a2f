package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/contextx"
)

type valuationRepository struct {
	db *gorm.DB
}

// NewValuationRepository 创建并返回一个新的 valuationRepository 实例。
func NewValuationRepository(db *gorm.DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

// WithTx 在单一事务内执行 fn，事务句柄经 context 传递给同仓储的后续调用
func (r *valuationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// Save 保存估值结果，已存在时按主键更新
func (r *valuationRepository) Save(ctx context.Context, result *domain.ValuationResult) error {
	model := toValuationResultModel(result)
	if model == nil {
		return nil
	}
	db := r.getDB(ctx).WithContext(ctx)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
		result.ID = model.ID
		result.CreatedAt = model.CreatedAt
		result.UpdatedAt = model.UpdatedAt
		return nil
	}
	return db.Model(&ValuationResultModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"symbol":        model.Symbol,
			"method":        model.Method,
			"option_type":   model.OptionType,
			"exercise":      model.Exercise,
			"underlying":    model.Underlying,
			"strike":        model.Strike,
			"price":         model.Price,
			"delta":         model.Delta,
			"gamma":         model.Gamma,
			"theta":         model.Theta,
			"cv_correction": model.CVCorrection,
			"calculated_at": model.CalculatedAt,
			"updated_at":    time.Now(),
		}).Error
}

// GetLatest 查询标的的最新估值，不存在时返回 nil
func (r *valuationRepository) GetLatest(ctx context.Context, symbol string) (*domain.ValuationResult, error) {
	var m ValuationResultModel
	err := r.getDB(ctx).WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("calculated_at desc").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toValuationResult(&m), nil
}

// GetHistory 分页查询估值历史，按计算时间倒序
func (r *valuationRepository) GetHistory(ctx context.Context, symbol string, offset, limit int) ([]*domain.ValuationResult, int64, error) {
	db := r.getDB(ctx).WithContext(ctx).Model(&ValuationResultModel{}).
		Where("symbol = ?", symbol)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ValuationResultModel
	if err := db.Order("calculated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	results := make([]*domain.ValuationResult, len(models))
	for i := range models {
		results[i] = toValuationResult(&models[i])
	}
	return results, total, nil
}

func (r *valuationRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
