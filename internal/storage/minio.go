package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/tracing"
)

var minioTracer = otel.Tracer("resume-extractor/storage/minio")

// ObjectStorage 原始文件与解析文本的对象存储
type ObjectStorage interface {
	// UploadOriginal 流式上传原始文件并同时计算 MD5，返回对象键与 MD5
	UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, size int64) (string, string, error)
	DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error)
	UploadParsedText(ctx context.Context, submissionUUID, text string) (string, error)
	GetParsedText(ctx context.Context, objectKey string) (string, error)
	DeleteOriginal(ctx context.Context, objectKey string) error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 对象存储实现
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
}

// NewMinIO 创建客户端，确保两个存储桶存在并按配置设置过期规则
func NewMinIO(cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		parsedBucket:   cfg.ParsedTextBucket,
	}

	ctx := context.Background()
	for _, bucket := range []string{m.originalBucket, m.parsedBucket} {
		if err := m.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	if cfg.OriginalFileExpireDays > 0 {
		if err := m.setExpiry(ctx, m.originalBucket, "expire-originals", cfg.OriginalFileExpireDays); err != nil {
			logger.Warn().Err(err).Str("bucket", m.originalBucket).Msg("设置生命周期规则失败")
		}
	}
	if cfg.ParsedTextExpireDays > 0 {
		if err := m.setExpiry(ctx, m.parsedBucket, "expire-parsed-text", cfg.ParsedTextExpireDays); err != nil {
			logger.Warn().Err(err).Str("bucket", m.parsedBucket).Msg("设置生命周期规则失败")
		}
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO 客户端初始化完成")
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucket, err)
	}
	logger.Info().Str("bucket", bucket).Msg("已创建存储桶")
	return nil
}

func (m *MinIO) setExpiry(ctx context.Context, bucket, ruleID string, days int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{{
		ID:         ruleID,
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(days)},
	}}
	return m.client.SetBucketLifecycle(ctx, bucket, lc)
}

// OriginalObjectKey 原始文件对象键
func OriginalObjectKey(submissionUUID, fileExt string) string {
	return fmt.Sprintf("resume/%s/original%s", submissionUUID, strings.ToLower(fileExt))
}

// ParsedTextObjectKey 解析文本对象键
func ParsedTextObjectKey(submissionUUID string) string {
	return fmt.Sprintf("resume/%s/parsed_text.txt", submissionUUID)
}

func (m *MinIO) UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, size int64) (string, string, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.UploadOriginal", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	objectKey := OriginalObjectKey(submissionUUID, fileExt)
	span.SetAttributes(
		attribute.String("bucket", m.originalBucket),
		attribute.String("object_key", objectKey),
		attribute.Int64("size", size),
	)

	hash := md5.New()
	tee := io.TeeReader(reader, hash)
	if _, err := m.client.PutObject(ctx, m.originalBucket, objectKey, tee, size,
		minio.PutObjectOptions{ContentType: ContentTypeFor(fileExt)}); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", "", fmt.Errorf("上传原始文件 %s 失败: %w", objectKey, err)
	}
	return objectKey, hex.EncodeToString(hash.Sum(nil)), nil
}

func (m *MinIO) DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.originalBucket, objectKey)
}

func (m *MinIO) UploadParsedText(ctx context.Context, submissionUUID, text string) (string, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.UploadParsedText", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	objectKey := ParsedTextObjectKey(submissionUUID)
	span.SetAttributes(attribute.String("object_key", objectKey), attribute.Int("text_length", len(text)))

	data := []byte(text)
	if _, err := m.client.PutObject(ctx, m.parsedBucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"}); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传解析文本 %s 失败: %w", objectKey, err)
	}
	return objectKey, nil
}

func (m *MinIO) GetParsedText(ctx context.Context, objectKey string) (string, error) {
	data, err := m.download(ctx, m.parsedBucket, objectKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *MinIO) DeleteOriginal(ctx context.Context, objectKey string) error {
	if err := m.client.RemoveObject(ctx, m.originalBucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectKey, err)
	}
	return nil
}

func (m *MinIO) download(ctx context.Context, bucket, objectKey string) ([]byte, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.Download", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("bucket", bucket), attribute.String("object_key", objectKey))

	obj, err := m.client.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucket, objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("读取对象 %s/%s 失败: %w", bucket, objectKey, err)
	}
	return data, nil
}

// ContentTypeFor 按扩展名给出 MIME 类型
func ContentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
