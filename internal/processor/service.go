// Package processor 把文本提取、结构化核心、缓存与持久化串成抽取服务。
// 同步路径只依赖解析器与核心；异步路径额外需要对象存储、数据库和消息队列。
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/storage"
	"resume-extractor/internal/storage/models"
	"resume-extractor/internal/tracing"
	"resume-extractor/internal/types"
	"resume-extractor/pkg/utils"
)

var tracer = otel.Tracer("resume-extractor/processor")

// ExtractResult 同步抽取结果
type ExtractResult struct {
	Filename string              `json:"filename"`
	TextMD5  string              `json:"text_md5"`
	Record   *types.ResumeRecord `json:"data"`
	Cached   bool                `json:"cached"`
}

// Submission 异步提交的对外视图
type Submission struct {
	SubmissionUUID string              `json:"submission_uuid"`
	Status         string              `json:"status"`
	Filename       string              `json:"filename,omitempty"`
	TextMD5        string              `json:"text_md5,omitempty"`
	ErrorMessage   string              `json:"error_message,omitempty"`
	Record         *types.ResumeRecord `json:"record,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
}

// SubmissionPage 分页结果
type SubmissionPage struct {
	Items    []Submission `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// ExtractionService 抽取服务
type ExtractionService struct {
	dispatcher TextDispatcher
	core       *extractor.Extractor

	cache       RecordCache
	recordTTL   time.Duration
	deduper     FileDeduper
	objects     ObjectStore
	submissions SubmissionStore
	publisher   Publisher

	queue         config.RabbitMQConfig
	retryInterval time.Duration
	maxRetries    int

	now func() time.Time
}

// NewExtractionService dispatcher 与 core 必填，其余组件通过选项按需启用
func NewExtractionService(dispatcher TextDispatcher, core *extractor.Extractor, opts ...ServiceOption) *ExtractionService {
	s := defaultService()
	s.dispatcher = dispatcher
	s.core = core
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AsyncEnabled 异步提交所需组件是否齐全
func (s *ExtractionService) AsyncEnabled() bool {
	return s.objects != nil && s.submissions != nil && s.publisher != nil
}

// SupportedExtensions 可接受的文件扩展名
func (s *ExtractionService) SupportedExtensions() []string {
	return s.dispatcher.SupportedExtensions()
}

// ExtractText 只运行结构化核心
func (s *ExtractionService) ExtractText(ctx context.Context, text string) *types.ResumeRecord {
	return s.core.ToStructuredRecord(ctx, text)
}

// ExtractFile 同步抽取：文档转文本、查缓存、结构化、回写缓存
func (s *ExtractionService) ExtractFile(ctx context.Context, filename string, data []byte) (*ExtractResult, error) {
	ctx, span := tracer.Start(ctx, "processor.ExtractFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.name", tracing.SafeAttributeValue("file.name", filepath.Base(filename), tracing.DefaultMaxLength)),
		attribute.String("file.extension", strings.ToLower(filepath.Ext(filename))),
		attribute.Int("file.size", len(data)),
	)

	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}

	text, err := s.dispatcher.ExtractBytes(ctx, filename, data)
	if err != nil {
		return nil, dispatchError(span, err)
	}

	textMD5 := utils.CalculateMD5([]byte(text))
	span.SetAttributes(attribute.String("text.md5", textMD5), attribute.Int("text.length", len(text)))
	log := logger.Ctx(ctx).With().Str("file", tracing.SafeFilename(filename)).Str("text_md5", textMD5).Logger()

	if s.cache != nil {
		record, ok, cacheErr := s.cache.GetRecord(ctx, textMD5)
		if cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("读取结果缓存失败，继续处理")
		} else if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			log.Debug().Msg("结果缓存命中")
			return &ExtractResult{Filename: filename, TextMD5: textMD5, Record: record, Cached: true}, nil
		}
	}

	record := s.core.ToStructuredRecord(ctx, text)

	if s.cache != nil {
		if cacheErr := s.cache.SetRecord(ctx, textMD5, record, s.recordTTL); cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("写入结果缓存失败")
		}
	}

	log.Info().
		Int("skills", len(record.Skills)).
		Int("experience", len(record.Experience)).
		Int("education", len(record.Education)).
		Msg("简历抽取完成")
	span.SetStatus(codes.Ok, "")
	return &ExtractResult{Filename: filename, TextMD5: textMD5, Record: record}, nil
}

// SubmitAsync 上传原文件、登记 PENDING 记录并发布抽取请求。
// 同一文件已提交过时返回已有 UUID，状态为 DUPLICATE。
func (s *ExtractionService) SubmitAsync(ctx context.Context, filename string, data []byte) (*Submission, error) {
	ctx, span := tracer.Start(ctx, "processor.SubmitAsync", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	if !s.AsyncEnabled() {
		return nil, ErrAsyncUnavailable
	}
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if err := s.dispatcher.CheckFile(filename); err != nil {
		return nil, dispatchError(span, err)
	}
	if len(data) == 0 {
		return nil, parser.ErrEmptyDocument
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, NewPersistenceError("", "uuid", err)
	}
	submissionUUID := id.String()
	rawMD5 := utils.CalculateMD5(data)
	span.SetAttributes(attribute.String("submission_uuid", submissionUUID), attribute.String("file.md5", rawMD5))
	log := logger.Ctx(ctx).With().Str("submission_uuid", submissionUUID).Str("file", tracing.SafeFilename(filename)).Logger()

	claimed := false
	if s.deduper != nil {
		exists, existingUUID, claimErr := s.deduper.ClaimFileMD5(ctx, rawMD5, submissionUUID)
		switch {
		case claimErr != nil:
			log.Warn().Err(claimErr).Msg("文件去重检查失败，跳过去重")
		case exists:
			span.SetAttributes(attribute.Bool("duplicate", true))
			log.Info().Str("existing_uuid", existingUUID).Msg("文件已提交过")
			return &Submission{SubmissionUUID: existingUUID, Status: models.StatusDuplicate, Filename: filename}, nil
		default:
			claimed = true
		}
	}

	rollback := func() {
		if claimed {
			if relErr := s.deduper.ReleaseFileMD5(context.WithoutCancel(ctx), rawMD5); relErr != nil {
				log.Warn().Err(relErr).Msg("撤销去重登记失败")
			}
		}
	}

	objectKey, _, err := s.objects.UploadOriginal(ctx, submissionUUID, ext, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		rollback()
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, NewPersistenceError(submissionUUID, "upload_original", err)
	}

	now := s.now()
	sub := &models.ExtractionSubmission{
		SubmissionUUID:   submissionUUID,
		OriginalFilename: filepath.Base(filename),
		FileExtension:    ext,
		RawFileMD5:       rawMD5,
		OriginalFilePath: objectKey,
		Status:           models.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		rollback()
		if delErr := s.objects.DeleteOriginal(context.WithoutCancel(ctx), objectKey); delErr != nil {
			log.Warn().Err(delErr).Msg("清理原始文件失败")
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, NewPersistenceError(submissionUUID, "create_submission", err)
	}

	msg := storage.ExtractionRequestMessage{
		SubmissionUUID:   submissionUUID,
		OriginalFilename: sub.OriginalFilename,
		FileExtension:    ext,
		OriginalFilePath: objectKey,
		RawFileMD5:       rawMD5,
		SubmittedAt:      now,
	}
	if err := s.publisher.PublishJSON(ctx, s.queue.ExtractionExchange, s.queue.RequestRoutingKey, msg, true); err != nil {
		rollback()
		s.markFailed(ctx, submissionUUID, err)
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return nil, NewPersistenceError(submissionUUID, "publish", err)
	}

	log.Info().Str("object_key", objectKey).Msg("异步抽取已提交")
	span.SetStatus(codes.Ok, "")
	return &Submission{
		SubmissionUUID: submissionUUID,
		Status:         models.StatusPending,
		Filename:       sub.OriginalFilename,
		CreatedAt:      now,
	}, nil
}

// HandleExtractionMessage 消费抽取请求：下载、提取文本、保存文本、结构化，
// 然后在一个事务里写入结果并登记 extraction.completed 外发事件。失败时标记 FAILED。
func (s *ExtractionService) HandleExtractionMessage(ctx context.Context, msg storage.ExtractionRequestMessage) (err error) {
	ctx, span := tracer.Start(ctx, "processor.HandleExtractionMessage", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("submission_uuid", msg.SubmissionUUID))

	if !s.AsyncEnabled() {
		return ErrAsyncUnavailable
	}

	ctx = logger.WithFields(ctx, map[string]string{"submission_uuid": msg.SubmissionUUID})
	log := logger.Ctx(ctx)

	defer func() {
		if err != nil {
			s.markFailed(ctx, msg.SubmissionUUID, err)
		}
	}()

	if updErr := s.submissions.UpdateSubmissionStatus(ctx, msg.SubmissionUUID, models.StatusProcessing, ""); updErr != nil {
		tracing.RecordError(span, updErr, tracing.ErrorTypeDB)
		return NewPersistenceError(msg.SubmissionUUID, "mark_processing", updErr)
	}

	data, err := s.objects.DownloadOriginal(ctx, msg.OriginalFilePath)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return NewPersistenceError(msg.SubmissionUUID, "download_original", err)
	}

	text, err := s.dispatcher.ExtractBytes(ctx, msg.OriginalFilename, data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeParse)
		return NewTextExtractionError(msg.SubmissionUUID, err)
	}
	textMD5 := utils.CalculateMD5([]byte(text))

	textKey, err := s.objects.UploadParsedText(ctx, msg.SubmissionUUID, text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return NewPersistenceError(msg.SubmissionUUID, "upload_text", err)
	}

	record := s.core.ToStructuredRecord(ctx, text)
	recordJSON, err := json.Marshal(record)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return NewStructuringError(msg.SubmissionUUID, err)
	}
	if s.cache != nil {
		if cacheErr := s.cache.SetRecord(ctx, textMD5, record, s.recordTTL); cacheErr != nil {
			log.Warn().Err(cacheErr).Msg("写入结果缓存失败")
		}
	}

	completedAt := s.now()
	event := storage.ExtractionCompletedEvent{
		SubmissionUUID: msg.SubmissionUUID,
		Status:         models.StatusCompleted,
		TextMD5:        textMD5,
		ParsedTextPath: textKey,
		SkillCount:     len(record.Skills),
		CompletedAt:    completedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return NewStructuringError(msg.SubmissionUUID, err)
	}

	outboxMsg := &models.OutboxMessage{
		AggregateID:      msg.SubmissionUUID,
		EventType:        models.EventExtractionCompleted,
		Payload:          string(payload),
		TargetExchange:   s.queue.ExtractionExchange,
		TargetRoutingKey: s.queue.CompletedRoutingKey,
		Status:           models.OutboxPending,
	}
	updates := map[string]interface{}{
		"status":           models.StatusCompleted,
		"text_md5":         textMD5,
		"parsed_text_path": textKey,
		"record":           datatypes.JSON(recordJSON),
		"error_message":    "",
		"completed_at":     completedAt,
	}
	if err := s.submissions.CompleteSubmission(ctx, msg.SubmissionUUID, updates, outboxMsg); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return NewPersistenceError(msg.SubmissionUUID, "complete_submission", err)
	}

	log.Info().Str("text_md5", textMD5).Int("skills", len(record.Skills)).Msg("异步抽取完成")
	span.SetStatus(codes.Ok, "")
	return nil
}

// HandleDelivery 适配 RabbitMQ 消费者。处理失败按配置重试，
// 最终仍失败的消息已标记 FAILED，同样确认，避免毒消息反复投递。
func (s *ExtractionService) HandleDelivery(ctx context.Context, body []byte) bool {
	var msg storage.ExtractionRequestMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.SubmissionUUID == "" {
		logger.Ctx(ctx).Error().Err(err).Str("body", tracing.SafeResumeContent(string(body))).Msg("无法解析抽取请求消息，丢弃")
		return true
	}

	for attempt := 0; ; attempt++ {
		err := s.HandleExtractionMessage(ctx, msg)
		if err == nil {
			return true
		}
		if IsClientError(err) || attempt >= s.maxRetries {
			logger.Ctx(ctx).Error().Err(err).Str("submission_uuid", msg.SubmissionUUID).Int("attempts", attempt+1).Msg("抽取请求处理失败")
			return true
		}
		select {
		case <-ctx.Done():
			// 关闭中，交还给队列
			return false
		case <-time.After(s.retryInterval):
		}
	}
}

// GetSubmission 查询单个提交
func (s *ExtractionService) GetSubmission(ctx context.Context, submissionUUID string) (*Submission, error) {
	if s.submissions == nil {
		return nil, ErrAsyncUnavailable
	}
	sub, err := s.submissions.GetSubmission(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, storage.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, NewPersistenceError(submissionUUID, "get_submission", err)
	}
	view := toSubmission(sub)
	return &view, nil
}

// ListSubmissions page 从 1 开始；status 为空时不过滤
func (s *ExtractionService) ListSubmissions(ctx context.Context, page, pageSize int, status string) (*SubmissionPage, error) {
	if s.submissions == nil {
		return nil, ErrAsyncUnavailable
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	offset, limit := utils.Paginate(page, pageSize)
	subs, total, err := s.submissions.ListSubmissions(ctx, offset, limit, status)
	if err != nil {
		return nil, NewPersistenceError("", "list_submissions", err)
	}

	items := make([]Submission, 0, len(subs))
	for i := range subs {
		items = append(items, toSubmission(&subs[i]))
	}
	return &SubmissionPage{Items: items, Total: total, Page: offset/limit + 1, PageSize: limit}, nil
}

func (s *ExtractionService) markFailed(ctx context.Context, submissionUUID string, cause error) {
	if s.submissions == nil {
		return
	}
	if err := s.submissions.UpdateSubmissionStatus(context.WithoutCancel(ctx), submissionUUID, models.StatusFailed, cause.Error()); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("submission_uuid", submissionUUID).Msg("标记提交失败状态出错")
	}
}

// dispatchError 同步与异步入口共用：客户端错误原样返回，其余包装为文本提取错误
func dispatchError(span trace.Span, err error) error {
	if IsClientError(err) {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return err
	}
	tracing.RecordError(span, err, tracing.ErrorTypeParse)
	return NewTextExtractionError("", err)
}

func validStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusProcessing, models.StatusCompleted, models.StatusFailed:
		return true
	}
	return false
}

func toSubmission(m *models.ExtractionSubmission) Submission {
	view := Submission{
		SubmissionUUID: m.SubmissionUUID,
		Status:         m.Status,
		Filename:       m.OriginalFilename,
		TextMD5:        m.TextMD5,
		ErrorMessage:   m.ErrorMessage,
		CreatedAt:      m.CreatedAt,
		CompletedAt:    m.CompletedAt,
	}
	if len(m.Record) > 0 && string(m.Record) != "null" {
		var record types.ResumeRecord
		if err := json.Unmarshal(m.Record, &record); err == nil {
			view.Record = &record
		}
	}
	return view
}
