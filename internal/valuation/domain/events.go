package domain

import (
	"context"
	"time"
)

const (
	OptionValuedEventType            = "OptionValued"
	GreeksCalculatedEventType        = "GreeksCalculated"
	ValuationFailedEventType         = "ValuationFailed"
	BatchValuationCompletedEventType = "BatchValuationCompleted"
)

// OptionValuedEvent 期权估值完成事件
type OptionValuedEvent struct {
	Symbol       string       `json:"symbol"`
	OptionType   OptionType   `json:"option_type"`
	Exercise     ExerciseType `json:"exercise"`
	Method       string       `json:"method"`
	Underlying   float64      `json:"underlying"`
	Strike       float64      `json:"strike"`
	Price        float64      `json:"price"`
	CVCorrection float64      `json:"cv_correction"`
	CalculatedAt int64        `json:"calculated_at"`
	OccurredOn   time.Time    `json:"occurred_on"`
}

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	Symbol       string     `json:"symbol"`
	OptionType   OptionType `json:"option_type"`
	Underlying   float64    `json:"underlying"`
	Delta        float64    `json:"delta"`
	Gamma        float64    `json:"gamma"`
	Theta        float64    `json:"theta"`
	CalculatedAt int64      `json:"calculated_at"`
	OccurredOn   time.Time  `json:"occurred_on"`
}

// ValuationFailedEvent 估值失败事件
type ValuationFailedEvent struct {
	Symbol     string    `json:"symbol"`
	Method     string    `json:"method"`
	Error      string    `json:"error"`
	ErrorCode  string    `json:"error_code"`
	OccurredOn time.Time `json:"occurred_on"`
}

// BatchValuationCompletedEvent 批量估值完成事件
type BatchValuationCompletedEvent struct {
	BatchID      string    `json:"batch_id"`
	Symbols      []string  `json:"symbols"`
	Total        int       `json:"total"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	CompletedAt  int64     `json:"completed_at"`
	OccurredOn   time.Time `json:"occurred_on"`
}

// EventPublisher 事件发布者接口，实现方在 ctx 携带事务时应在同一事务内写入
type EventPublisher interface {
	// PublishOptionValued 发布期权估值完成事件
	PublishOptionValued(ctx context.Context, event OptionValuedEvent) error

	// PublishGreeksCalculated 发布希腊字母计算完成事件
	PublishGreeksCalculated(ctx context.Context, event GreeksCalculatedEvent) error

	// PublishValuationFailed 发布估值失败事件
	PublishValuationFailed(ctx context.Context, event ValuationFailedEvent) error

	// PublishBatchValuationCompleted 发布批量估值完成事件
	PublishBatchValuationCompleted(ctx context.Context, event BatchValuationCompletedEvent) error
}
