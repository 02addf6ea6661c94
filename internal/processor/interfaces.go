package processor

import (
	"context"
	"io"
	"time"

	"resume-extractor/internal/storage"
	"resume-extractor/internal/storage/models"
	"resume-extractor/internal/types"
)

// 以下接口由 parser 与 storage 包的具体类型实现，测试中替换为内存实现。

// TextDispatcher 文档转文本
type TextDispatcher interface {
	ExtractBytes(ctx context.Context, filename string, data []byte) (string, error)
	CheckFile(filename string) error
	SupportedExtensions() []string
}

// RecordCache 按文本 MD5 缓存结构化结果
type RecordCache interface {
	GetRecord(ctx context.Context, textMD5 string) (*types.ResumeRecord, bool, error)
	SetRecord(ctx context.Context, textMD5 string, record *types.ResumeRecord, ttl time.Duration) error
}

// FileDeduper 原始文件 MD5 去重
type FileDeduper interface {
	ClaimFileMD5(ctx context.Context, md5Hex, submissionUUID string) (bool, string, error)
	ReleaseFileMD5(ctx context.Context, md5Hex string) error
}

// ObjectStore 原始文件与解析文本存储
type ObjectStore interface {
	UploadOriginal(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, size int64) (string, string, error)
	DownloadOriginal(ctx context.Context, objectKey string) ([]byte, error)
	UploadParsedText(ctx context.Context, submissionUUID, text string) (string, error)
	DeleteOriginal(ctx context.Context, objectKey string) error
}

// SubmissionStore 提交记录持久化
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub *models.ExtractionSubmission) error
	GetSubmission(ctx context.Context, submissionUUID string) (*models.ExtractionSubmission, error)
	ListSubmissions(ctx context.Context, offset, limit int, status string) ([]models.ExtractionSubmission, int64, error)
	UpdateSubmissionStatus(ctx context.Context, submissionUUID, status, errMsg string) error
	CompleteSubmission(ctx context.Context, submissionUUID string, updates map[string]interface{}, msg *models.OutboxMessage) error
}

// Publisher 发布抽取请求
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

var (
	_ RecordCache     = (*storage.Redis)(nil)
	_ FileDeduper     = (*storage.Redis)(nil)
	_ ObjectStore     = (*storage.MinIO)(nil)
	_ SubmissionStore = (*storage.MySQL)(nil)
	_ Publisher       = (*storage.RabbitMQ)(nil)
)
