package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-extractor/internal/config"
	"resume-extractor/internal/storage"
)

func TestAsyncDisabledReason(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "minio/mysql/rabbitmq 未全部启用", asyncDisabledReason(cfg, &storage.Storage{}))
	assert.Equal(t, "minio/mysql/rabbitmq 未全部启用", asyncDisabledReason(cfg, nil))

	cfg.MinIO.Enabled, cfg.MySQL.Enabled, cfg.RabbitMQ.Enabled = true, true, true
	assert.Equal(t, "存储组件已启用但初始化失败", asyncDisabledReason(cfg, &storage.Storage{MinIO: &storage.MinIO{}}))

	ready := &storage.Storage{MinIO: &storage.MinIO{}, MySQL: &storage.MySQL{}, RabbitMQ: &storage.RabbitMQ{}}
	assert.Empty(t, asyncDisabledReason(cfg, ready))
}
