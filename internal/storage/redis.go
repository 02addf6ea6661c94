package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"resume-extractor/internal/config"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/tracing"
	"resume-extractor/internal/types"
)

var redisTracer = otel.Tracer("resume-extractor/storage/redis")

// claimFileScript 原子地认领文件 MD5：已存在返回已有 UUID，否则写入并返回空串
const claimFileScript = `
local existing = redis.call('GET', KEYS[1])
if existing then
	return existing
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
return ''
`

// Redis 结果缓存与文件去重
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedis 建立连接并挂上 OpenTelemetry 钩子
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}
	return &Redis{Client: client, config: cfg}, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// RecordTTL 结果缓存时长
func (r *Redis) RecordTTL() time.Duration {
	return config.GetDuration(r.config.RecordTTL, constants.DefaultRecordTTL)
}

// MD5ExpireDuration 文件去重记录保留时长
func (r *Redis) MD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetRecord 读取按文本 MD5 缓存的结构化结果，未命中返回 (nil, false, nil)
func (r *Redis) GetRecord(ctx context.Context, textMD5 string) (*types.ResumeRecord, bool, error) {
	key := fmt.Sprintf(constants.KeyRecordByTextMD5, textMD5)
	raw, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取结果缓存失败: %w", err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// 缓存内容损坏按未命中处理，后续写入会覆盖
		return nil, false, nil
	}
	return &record, true, nil
}

// SetRecord 写入结果缓存
func (r *Redis) SetRecord(ctx context.Context, textMD5 string, record *types.ResumeRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyRecordByTextMD5, textMD5)
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入结果缓存失败: %w", err)
	}
	return nil
}

// ClaimFileMD5 原子地登记文件 MD5。文件已提交过时 exists 为 true 并返回已有 UUID。
func (r *Redis) ClaimFileMD5(ctx context.Context, md5Hex, submissionUUID string) (exists bool, existingUUID string, err error) {
	ctx, span := redisTracer.Start(ctx, "Redis.ClaimFileMD5", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	key := fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex)
	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.operation", "EVAL"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	res, err := r.Client.Eval(ctx, claimFileScript, []string{key}, submissionUUID, int64(r.MD5ExpireDuration().Seconds())).Result()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", fmt.Errorf("执行原子去重脚本失败: %w", err)
	}
	existing, ok := res.(string)
	if !ok {
		err = fmt.Errorf("意外的Redis返回类型: %T", res)
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, "", err
	}

	exists = existing != ""
	span.SetAttributes(attribute.Bool("already_exists", exists))
	span.SetStatus(codes.Ok, "")
	return exists, existing, nil
}

// ReleaseFileMD5 提交失败时撤销去重登记
func (r *Redis) ReleaseFileMD5(ctx context.Context, md5Hex string) error {
	key := fmt.Sprintf(constants.KeyFileMD5ToSubmissionUUID, md5Hex)
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("删除去重记录失败: %w", err)
	}
	return nil
}
