package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// ExerciseType 行权方式
type ExerciseType string

const (
	ExerciseEuropean ExerciseType = "EUROPEAN" // 欧式
	ExerciseAmerican ExerciseType = "AMERICAN" // 美式
	ExerciseShout    ExerciseType = "SHOUT"    // 喊价式
)

// Greeks 希腊字母
type Greeks struct {
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Theta decimal.Decimal
}

// ValuationResult 估值结果实体
type ValuationResult struct {
	ID           uint            `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Symbol       string          `json:"symbol"`
	Method       string          `json:"method"`
	OptionType   OptionType      `json:"option_type"`
	Exercise     ExerciseType    `json:"exercise"`
	Underlying   decimal.Decimal `json:"underlying"`
	Strike       decimal.Decimal `json:"strike"`
	Price        decimal.Decimal `json:"price"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Theta        decimal.Decimal `json:"theta"`
	CVCorrection decimal.Decimal `json:"cv_correction"`
	CalculatedAt int64           `json:"calculated_at"`
}

// MethodFiniteDifference 有限差分估值方法标识
const MethodFiniteDifference = "FD_DIVIDEND"

// NewValuationResult 由有限差分定价输出构建估值结果
func NewValuationResult(symbol string, input DividendOptionInput, out *DividendOptionResult) *ValuationResult {
	return &ValuationResult{
		Symbol:       symbol,
		Method:       MethodFiniteDifference,
		OptionType:   input.Type,
		Exercise:     input.Exercise,
		Underlying:   decimal.NewFromFloat(input.Underlying),
		Strike:       decimal.NewFromFloat(input.Strike),
		Price:        decimal.NewFromFloat(out.Value),
		Delta:        decimal.NewFromFloat(out.Delta),
		Gamma:        decimal.NewFromFloat(out.Gamma),
		Theta:        decimal.NewFromFloat(out.Theta),
		CVCorrection: decimal.NewFromFloat(out.ControlVariateCorrection),
		CalculatedAt: time.Now().UnixMilli(),
	}
}
