package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// RateLimitedModel 给底层模型加上令牌桶限流与重试
type RateLimitedModel struct {
	original model.ToolCallingChatModel
	limiter  *TokenBucket
}

// NewRateLimitedModel 容量取 QPM 的一半，允许少量突发
func NewRateLimitedModel(original model.ToolCallingChatModel, qpm int) *RateLimitedModel {
	return &RateLimitedModel{
		original: original,
		limiter:  NewTokenBucket(qpm, qpm/2),
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedModel) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedModel {
	rl.limiter.WithRetryPolicy(waitTime, maxRetries)
	return rl
}

func (rl *RateLimitedModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	var out *schema.Message
	err := rl.limiter.RetryWithBackoff(ctx, func() error {
		var genErr error
		out, genErr = rl.original.Generate(ctx, messages, opts...)
		return genErr
	})
	return out, err
}

func (rl *RateLimitedModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var out *schema.StreamReader[*schema.Message]
	err := rl.limiter.RetryWithBackoff(ctx, func() error {
		var streamErr error
		out, streamErr = rl.original.Stream(ctx, messages, opts...)
		return streamErr
	})
	return out, err
}

// WithTools 新代理共享同一个令牌桶
func (rl *RateLimitedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := rl.original.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &RateLimitedModel{original: inner, limiter: rl.limiter}, nil
}

// NewWithRateLimit 按模型名查 QPM 表，命中时取 90% 作为安全值，否则用 customQPM
func NewWithRateLimit(original model.ToolCallingChatModel, modelName string, qpmTable map[string]int, customQPM int, maxRetries int, retryWait time.Duration) model.ToolCallingChatModel {
	qpm := customQPM
	if modelQPM, ok := qpmTable[modelName]; ok && modelQPM > 0 {
		qpm = int(float64(modelQPM) * 0.9)
	}
	if qpm <= 0 {
		qpm = 30
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryWait <= 0 {
		retryWait = time.Second
	}
	return NewRateLimitedModel(original, qpm).WithRetryPolicy(retryWait, maxRetries)
}

var _ model.ToolCallingChatModel = (*RateLimitedModel)(nil)
