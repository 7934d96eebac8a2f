package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionpricing/internal/valuation/domain"
	"github.com/wyfcoding/optionpricing/pkg/contextx"
)

// 消息状态
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// OutboxMessage 事务性发件箱记录
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	EventID   string    `gorm:"type:varchar(36);index"`
	EventType string    `gorm:"type:varchar(100);index"`
	Key       string    `gorm:"type:varchar(64)"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "valuation_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式。
// ctx 携带事务句柄时消息与业务数据写入同一事务。
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// PublishOptionValued 发布期权估值完成事件
func (p *OutboxEventPublisher) PublishOptionValued(ctx context.Context, event domain.OptionValuedEvent) error {
	return p.publishEvent(ctx, domain.OptionValuedEventType, event.Symbol, event)
}

// PublishGreeksCalculated 发布希腊字母计算完成事件
func (p *OutboxEventPublisher) PublishGreeksCalculated(ctx context.Context, event domain.GreeksCalculatedEvent) error {
	return p.publishEvent(ctx, domain.GreeksCalculatedEventType, event.Symbol, event)
}

// PublishValuationFailed 发布估值失败事件
func (p *OutboxEventPublisher) PublishValuationFailed(ctx context.Context, event domain.ValuationFailedEvent) error {
	return p.publishEvent(ctx, domain.ValuationFailedEventType, event.Symbol, event)
}

// PublishBatchValuationCompleted 发布批量估值完成事件
func (p *OutboxEventPublisher) PublishBatchValuationCompleted(ctx context.Context, event domain.BatchValuationCompletedEvent) error {
	return p.publishEvent(ctx, domain.BatchValuationCompletedEventType, event.BatchID, event)
}

// publishEvent 通用事件发布方法
func (p *OutboxEventPublisher) publishEvent(ctx context.Context, eventType, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := OutboxMessage{
		ID:        uuid.New().String(),
		EventID:   uuid.New().String(),
		EventType: eventType,
		Key:       key,
		Payload:   string(payload),
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return p.getDB(ctx).WithContext(ctx).Create(&message).Error
}

func (p *OutboxEventPublisher) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return p.db
}
