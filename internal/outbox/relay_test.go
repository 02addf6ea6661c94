package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/config"
	"resume-extractor/internal/storage/models"
)

func TestApplyPublishResult(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("成功发布", func(t *testing.T) {
		msg := &models.OutboxMessage{Status: models.OutboxPending, RetryCount: 2, ErrorMessage: "old"}
		applyPublishResult(msg, nil, 5, now)
		assert.Equal(t, models.OutboxSent, msg.Status)
		require.NotNil(t, msg.ProcessedAt)
		assert.Equal(t, now, *msg.ProcessedAt)
		assert.Empty(t, msg.ErrorMessage)
	})

	t.Run("失败未达上限保持PENDING", func(t *testing.T) {
		msg := &models.OutboxMessage{Status: models.OutboxPending}
		applyPublishResult(msg, errors.New("channel closed"), 3, now)
		assert.Equal(t, models.OutboxPending, msg.Status)
		assert.Equal(t, 1, msg.RetryCount)
		assert.Equal(t, "channel closed", msg.ErrorMessage)
		assert.Nil(t, msg.ProcessedAt)
	})

	t.Run("达到上限标记FAILED", func(t *testing.T) {
		msg := &models.OutboxMessage{Status: models.OutboxPending, RetryCount: 2}
		applyPublishResult(msg, errors.New("boom"), 3, now)
		assert.Equal(t, models.OutboxFailed, msg.Status)
		assert.Equal(t, 3, msg.RetryCount)
	})
}

func TestNewMessageRelayDefaults(t *testing.T) {
	r := NewMessageRelay(nil, nil, config.OutboxConfig{})
	assert.Equal(t, defaultPollInterval, r.pollInterval)
	assert.Equal(t, defaultBatchSize, r.batchSize)
	assert.Equal(t, defaultMaxRetries, r.maxRetries)

	r = NewMessageRelay(nil, nil, config.OutboxConfig{BatchSize: 7, PollInterval: "500ms", MaxRetries: 2})
	assert.Equal(t, 500*time.Millisecond, r.pollInterval)
	assert.Equal(t, 7, r.batchSize)
	assert.Equal(t, 2, r.maxRetries)
}
