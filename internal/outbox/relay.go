// Package outbox 实现事务外发件箱：抽取结果与完成事件同事务落库，
// relay 轮询未发送的事件并投递到消息队列。
package outbox

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/storage/models"
	"resume-extractor/internal/tracing"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
	defaultMaxRetries   = 5
)

// Publisher relay 只需要发布能力
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

// MessageRelay 轮询 outbox_messages 并发布
type MessageRelay struct {
	db           *gorm.DB
	publisher    Publisher
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
	tracer       trace.Tracer
}

// NewMessageRelay 按配置创建 relay，零值字段使用默认值
func NewMessageRelay(db *gorm.DB, publisher Publisher, cfg config.OutboxConfig) *MessageRelay {
	r := &MessageRelay{
		db:           db,
		publisher:    publisher,
		pollInterval: config.GetDuration(cfg.PollInterval, defaultPollInterval),
		batchSize:    cfg.BatchSize,
		maxRetries:   cfg.MaxRetries,
		tracer:       otel.Tracer("resume-extractor/outbox"),
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.maxRetries <= 0 {
		r.maxRetries = defaultMaxRetries
	}
	return r
}

// Run 阻塞轮询直到 ctx 取消
func (r *MessageRelay) Run(ctx context.Context) {
	logger.Info().Dur("interval", r.pollInterval).Int("batch_size", r.batchSize).Msg("MessageRelay starting")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("MessageRelay stopped")
			return
		case <-ticker.C:
			if err := r.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("处理待发送外发消息失败")
			}
		}
	}
}

// ProcessPending 取一批 PENDING 消息逐条发布并回写状态。
// FOR UPDATE SKIP LOCKED 保证多实例不会重复处理同一行。
func (r *MessageRelay) ProcessPending(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}
	// 空轮询不建 span
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(messages))))
	defer span.End()

	sent := 0
	for i := range messages {
		msg := &messages[i]
		pubErr := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
		if pubErr != nil {
			logger.Warn().Err(pubErr).
				Uint64("id", msg.ID).
				Str("aggregate_id", msg.AggregateID).
				Int("retry", msg.RetryCount+1).
				Msg("外发消息发布失败")
			tracing.RecordError(span, pubErr, tracing.ErrorTypeRabbitMQ, attribute.Int64("outbox.id", int64(msg.ID)))
		} else {
			sent++
		}
		applyPublishResult(msg, pubErr, r.maxRetries, time.Now())

		if err := tx.Save(msg).Error; err != nil {
			// 整批回滚，下次轮询重新拾取
			return err
		}
	}

	span.SetAttributes(attribute.Int("outbox.sent", sent))
	return tx.Commit().Error
}

// applyPublishResult 按发布结果推进消息状态
func applyPublishResult(msg *models.OutboxMessage, pubErr error, maxRetries int, now time.Time) {
	if pubErr != nil {
		msg.RetryCount++
		msg.ErrorMessage = pubErr.Error()
		if msg.RetryCount >= maxRetries {
			msg.Status = models.OutboxFailed
		}
		return
	}
	msg.Status = models.OutboxSent
	msg.ProcessedAt = &now
	msg.ErrorMessage = ""
}
