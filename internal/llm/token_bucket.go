package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// TokenBucket 令牌桶限流器，附带指数退避重试
type TokenBucket struct {
	rate           float64 // 每秒生成令牌数
	capacity       float64
	tokens         float64
	lastRefillTime time.Time
	mutex          sync.Mutex
	retryWaitTime  time.Duration
	maxRetries     int
}

// NewTokenBucket 按每分钟请求数创建令牌桶，capacity<=0 时取 qpm/2
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	if qpm <= 0 {
		qpm = 30
	}
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}
	return &TokenBucket{
		rate:           float64(qpm) / 60.0,
		capacity:       float64(capacity),
		tokens:         float64(capacity),
		lastRefillTime: time.Now(),
		retryWaitTime:  time.Second,
		maxRetries:     3,
	}
}

// WithRetryPolicy 设置重试等待基数与最大重试次数
func (tb *TokenBucket) WithRetryPolicy(waitTime time.Duration, maxRetries int) *TokenBucket {
	tb.retryWaitTime = waitTime
	tb.maxRetries = maxRetries
	return tb
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.lastRefillTime = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 非阻塞地尝试消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Wait 阻塞直到拿到令牌或 ctx 结束
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mutex.Lock()
		tb.refill()
		if tb.tokens >= 1.0 {
			tb.tokens -= 1.0
			tb.mutex.Unlock()
			return nil
		}
		waitTime := time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mutex.Unlock()

		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryWithBackoff 取令牌后执行 fn，遇到可重试错误按 2^n 退避
func (tb *TokenBucket) RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for retry := 0; retry <= tb.maxRetries; retry++ {
		if err = tb.Wait(ctx); err != nil {
			return err
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) || retry >= tb.maxRetries {
			return err
		}

		backoff := tb.retryWaitTime * time.Duration(1<<uint(retry))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

var retryableMarkers = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"EOF",
	"connection refused",
	"429",
	"rate limit",
	"no such host",
	"服务器繁忙",
	"请求超过限额",
}

// IsRetryableError 按错误信息判断是否值得重试，调用方主动取消的不重试
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	msg := err.Error()
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
