package messaging

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/utils"
)

// MessageSender 消息代理发送接口，由 Kafka 生产者实现
type MessageSender interface {
	SendRaw(ctx context.Context, topic string, key string, payload []byte) error
}

// OutboxRelay 发件箱中继：轮询待发送消息，发布到消息代理后标记已发送
type OutboxRelay struct {
	db           *gorm.DB
	sender       MessageSender
	metrics      *metrics.Metrics
	topic        string
	pollInterval time.Duration
	batchSize    int
	retention    time.Duration
}

// RelayConfig 中继配置
type RelayConfig struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
	Retention    time.Duration
}

// NewOutboxRelay 创建发件箱中继
func NewOutboxRelay(db *gorm.DB, sender MessageSender, m *metrics.Metrics, cfg RelayConfig) *OutboxRelay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	return &OutboxRelay{
		db:           db,
		sender:       sender,
		metrics:      m,
		topic:        cfg.Topic,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		retention:    cfg.Retention,
	}
}

// Run 阻塞运行轮询循环，ctx 取消后退出
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	logger.Info(ctx, "outbox relay started", "topic", r.topic, "poll_interval", r.pollInterval)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.ProcessPending(ctx); err != nil {
				logger.Error(ctx, "outbox relay poll failed", "error", err)
			}
		case <-cleanupTicker.C:
			if err := r.CleanupSent(ctx); err != nil {
				logger.Error(ctx, "outbox cleanup failed", "error", err)
			}
		}
	}
}

// ProcessPending 发送一批待处理消息，单条失败重试后跳过，留待下一轮
func (r *OutboxRelay) ProcessPending(ctx context.Context) error {
	var messages []OutboxMessage
	if err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at").
		Limit(r.batchSize).
		Find(&messages).Error; err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.OutboxPending.Set(float64(len(messages)))
	}

	for _, message := range messages {
		err := utils.Retry(3, 100*time.Millisecond, func() error {
			return r.sender.SendRaw(ctx, r.topic, message.Key, []byte(message.Payload))
		})
		if err != nil {
			if r.metrics != nil {
				r.metrics.OutboxFailedTotal.Inc()
			}
			logger.Error(ctx, "failed to relay outbox message",
				"message_id", message.ID,
				"event_type", message.EventType,
				"error", err,
			)
			continue
		}

		if err := r.db.WithContext(ctx).Model(&OutboxMessage{}).
			Where("id = ?", message.ID).
			Updates(map[string]any{
				"status":     StatusSent,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		if r.metrics != nil {
			r.metrics.OutboxPublishedTotal.Inc()
		}
	}
	return nil
}

// CleanupSent 清理超过保留期的已发送消息
func (r *OutboxRelay) CleanupSent(ctx context.Context) error {
	cutoff := time.Now().Add(-r.retention)
	return r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", StatusSent, cutoff).
		Delete(&OutboxMessage{}).Error
}
