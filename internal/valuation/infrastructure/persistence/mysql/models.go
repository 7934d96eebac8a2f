package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
)

// ValuationResultModel 估值结果数据库模型
type ValuationResultModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Symbol       string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	Method       string    `gorm:"column:method;type:varchar(32);not null"`
	OptionType   string    `gorm:"column:option_type;type:varchar(8);not null"`
	Exercise     string    `gorm:"column:exercise;type:varchar(16);not null"`
	Underlying   string    `gorm:"column:underlying;type:decimal(32,18);not null"`
	Strike       string    `gorm:"column:strike;type:decimal(32,18);not null"`
	Price        string    `gorm:"column:price;type:decimal(32,18);not null"`
	Delta        string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma        string    `gorm:"column:gamma;type:decimal(32,18)"`
	Theta        string    `gorm:"column:theta;type:decimal(32,18)"`
	CVCorrection string    `gorm:"column:cv_correction;type:decimal(32,18)"`
	CalculatedAt int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
}

func (ValuationResultModel) TableName() string { return "valuation_results" }

// mapping helpers

func toValuationResultModel(r *domain.ValuationResult) *ValuationResultModel {
	if r == nil {
		return nil
	}
	return &ValuationResultModel{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
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

func toValuationResult(m *ValuationResultModel) *domain.ValuationResult {
	if m == nil {
		return nil
	}
	underlying, _ := decimal.NewFromString(m.Underlying)
	strike, _ := decimal.NewFromString(m.Strike)
	price, _ := decimal.NewFromString(m.Price)
	delta, _ := decimal.NewFromString(m.Delta)
	gamma, _ := decimal.NewFromString(m.Gamma)
	theta, _ := decimal.NewFromString(m.Theta)
	correction, _ := decimal.NewFromString(m.CVCorrection)

	return &domain.ValuationResult{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Symbol:       m.Symbol,
		Method:       m.Method,
		OptionType:   domain.OptionType(m.OptionType),
		Exercise:     domain.ExerciseType(m.Exercise),
		Underlying:   underlying,
		Strike:       strike,
		Price:        price,
		Delta:        delta,
		Gamma:        gamma,
		Theta:        theta,
		CVCorrection: correction,
		CalculatedAt: m.CalculatedAt,
	}
}
