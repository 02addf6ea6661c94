package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/tracing"
)

// 每次取当前全局 provider 的 tracer
func rabbitTracer() trace.Tracer { return otel.Tracer("resume-extractor/storage/rabbitmq") }

// MessageQueue 发布端接口，外发件箱与异步提交共用
type MessageQueue interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
	Close() error
}

var _ MessageQueue = (*RabbitMQ)(nil)

// DeliveryHandler 返回 true 表示确认，false 表示拒绝并重新入队
type DeliveryHandler func(ctx context.Context, body []byte) bool

// RabbitMQ 消息队列客户端
type RabbitMQ struct {
	conn        *amqp.Connection
	channelPool sync.Pool
	cfg         *config.RabbitMQConfig

	mu       sync.Mutex
	declared map[string]bool // exchange:/queue:/bind: 前缀区分

	publishMu sync.Mutex
}

// NewRabbitMQ 建立连接并声明抽取交换机、队列与绑定
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{
		conn:     conn,
		cfg:      cfg,
		declared: make(map[string]bool),
	}
	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, chErr := conn.Channel()
			if chErr != nil {
				logger.Error().Err(chErr).Msg("创建RabbitMQ通道失败")
				return nil
			}
			return ch
		},
	}

	if err := mq.declareTopology(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Info().
		Str("exchange", cfg.ExtractionExchange).
		Str("queue", cfg.ExtractionQueue).
		Msg("RabbitMQ 连接成功")
	return mq, nil
}

func (r *RabbitMQ) declareTopology() error {
	if r.cfg.ExtractionExchange == "" {
		return nil
	}
	if err := r.EnsureExchange(r.cfg.ExtractionExchange, "direct", true); err != nil {
		return err
	}
	if r.cfg.ExtractionQueue == "" {
		return nil
	}
	if err := r.EnsureQueue(r.cfg.ExtractionQueue, true); err != nil {
		return err
	}
	return r.BindQueue(r.cfg.ExtractionQueue, r.cfg.ExtractionExchange, r.cfg.RequestRoutingKey)
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	if ch, ok := r.channelPool.Get().(*amqp.Channel); ok && ch != nil && !ch.IsClosed() {
		return ch
	}
	ch, err := r.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("创建新RabbitMQ通道失败")
		return nil
	}
	return ch
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// withDeclare 同名对象只声明一次
func (r *RabbitMQ) withDeclare(key string, declare func(ch *amqp.Channel) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.declared[key] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	if err := declare(ch); err != nil {
		return err
	}
	r.declared[key] = true
	return nil
}

// EnsureExchange 确保交换机存在
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", exchangeName)
	}
	return r.withDeclare("exchange:"+exchangeName, func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(exchangeName, exchangeType, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明exchange失败: %w", err)
		}
		return nil
	})
}

// EnsureQueue 确保队列存在
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	return r.withDeclare("queue:"+queueName, func(ch *amqp.Channel) error {
		if _, err := ch.QueueDeclare(queueName, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明队列失败: %w", err)
		}
		return nil
	})
}

// BindQueue 绑定队列到交换机
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	key := fmt.Sprintf("bind:%s:%s:%s", exchangeName, queueName, routingKey)
	return r.withDeclare(key, func(ch *amqp.Channel) error {
		if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
			return fmt.Errorf("绑定队列到exchange失败: %w", err)
		}
		return nil
	})
}

// PublishMessage 发布消息，trace 上下文写入消息头
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	return ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		Headers:      headers,
		DeliveryMode: deliveryMode,
		ContentType:  "application/json",
		Body:         message,
		Timestamp:    time.Now(),
	})
}

// PublishJSON 序列化后发布
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, body, persistent)
}

// StartConsumer 以 workers 个协程消费队列，ctx 取消后停止。返回的通道在所有协程退出后关闭。
func (r *RabbitMQ) StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler DeliveryHandler) (<-chan struct{}, error) {
	if workers <= 0 {
		workers = 1
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("无法获取RabbitMQ通道: %w", err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						logger.Warn().Str("queue", queueName).Msg("RabbitMQ投递通道已关闭")
						return
					}
					processDelivery(ctx, queueName, worker, d, handler)
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		_ = ch.Close()
		logger.Info().Str("queue", queueName).Msg("RabbitMQ消费者已停止")
		close(done)
	}()

	logger.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Int("workers", workers).Msg("RabbitMQ消费者已启动")
	return done, nil
}

// processDelivery 为单条消息开消费 span，按 handler 结果 ack 或 nack 重新入队
func processDelivery(ctx context.Context, queueName string, worker int, d amqp.Delivery, handler DeliveryHandler) {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(d.Headers))
	msgCtx, span := rabbitTracer().Start(msgCtx, "rabbitmq.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", queueName),
			attribute.String("messaging.message_id", d.MessageId),
			attribute.Int("messaging.worker", worker),
		),
	)
	defer span.End()

	if handler(msgCtx, d.Body) {
		if err := d.Ack(false); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
			logger.Ctx(msgCtx).Error().Err(err).Int("worker", worker).Msg("确认消息失败")
		}
		return
	}

	tracing.RecordRabbitMQNack(span, d.MessageId, "处理未完成，消息重新入队")
	if err := d.Nack(false, true); err != nil {
		logger.Ctx(msgCtx).Error().Err(err).Int("worker", worker).Msg("拒绝消息失败")
	}
}

// amqpHeaderCarrier 让 otel 传播器读写 AMQP 消息头
type amqpHeaderCarrier amqp.Table

var _ propagation.TextMapCarrier = amqpHeaderCarrier(nil)

func (c amqpHeaderCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c amqpHeaderCarrier) Set(key, value string) {
	c[key] = value
}

func (c amqpHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
