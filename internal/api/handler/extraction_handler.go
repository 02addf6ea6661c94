package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/schema"
	"resume-extractor/internal/storage/models"
	"resume-extractor/internal/tracing"
	"resume-extractor/internal/types"
)

// ExtractionService handler 依赖的抽取服务，由 *processor.ExtractionService 实现
type ExtractionService interface {
	ExtractFile(ctx context.Context, filename string, data []byte) (*processor.ExtractResult, error)
	ExtractText(ctx context.Context, text string) *types.ResumeRecord
	SubmitAsync(ctx context.Context, filename string, data []byte) (*processor.Submission, error)
	GetSubmission(ctx context.Context, submissionUUID string) (*processor.Submission, error)
	ListSubmissions(ctx context.Context, page, pageSize int, status string) (*processor.SubmissionPage, error)
	AsyncEnabled() bool
	SupportedExtensions() []string
}

var _ ExtractionService = (*processor.ExtractionService)(nil)

// ExtractionHandler 简历抽取接口
type ExtractionHandler struct {
	svc ExtractionService
}

// NewExtractionHandler 创建处理器
func NewExtractionHandler(svc ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{svc: svc}
}

// ExtractTextRequest 纯文本抽取请求
type ExtractTextRequest struct {
	Text string `json:"text"`
}

// AsyncSubmitResponse 异步提交响应
type AsyncSubmitResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
}

// Root 服务说明
func (h *ExtractionHandler) Root(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"message": "Resume Extractor API",
		"endpoints": utils.H{
			"POST /extract":                 "Upload a resume file (PDF/DOCX) to extract structured data",
			"GET /health":                   "Health check endpoint",
			"POST /api/v1/extract/text":     "Extract structured data from raw resume text",
			"POST /api/v1/extract/async":    "Submit a resume file for asynchronous extraction",
			"GET /api/v1/extractions/:uuid": "Get an asynchronous extraction result",
			"GET /api/v1/extractions":       "List asynchronous extractions",
		},
		"supported_extensions": h.svc.SupportedExtensions(),
	})
}

// Health 健康检查
func (h *ExtractionHandler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "healthy"})
}

// Extract 同步抽取上传文件
func (h *ExtractionHandler) Extract(ctx context.Context, c *app.RequestContext) {
	filename, data, ok := readUpload(ctx, c)
	if !ok {
		return
	}

	res, err := h.svc.ExtractFile(ctx, filename, data)
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	debugValidate(ctx, res.Record)

	c.JSON(consts.StatusOK, utils.H{
		"status":   "success",
		"filename": res.Filename,
		"data":     res.Record,
	})
}

// ExtractText 只跑结构化核心
func (h *ExtractionHandler) ExtractText(ctx context.Context, c *app.RequestContext) {
	var req ExtractTextRequest
	if err := json.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "Invalid JSON body"})
		return
	}

	record := h.svc.ExtractText(ctx, req.Text)
	debugValidate(ctx, record)
	c.JSON(consts.StatusOK, utils.H{"status": "success", "data": record})
}

// SubmitAsync 异步提交，返回 202；同一文件重复提交时返回 200 和已有 UUID
func (h *ExtractionHandler) SubmitAsync(ctx context.Context, c *app.RequestContext) {
	if !h.svc.AsyncEnabled() {
		writeError(ctx, c, processor.ErrAsyncUnavailable)
		return
	}
	filename, data, ok := readUpload(ctx, c)
	if !ok {
		return
	}

	sub, err := h.svc.SubmitAsync(ctx, filename, data)
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	code := consts.StatusAccepted
	if sub.Status == models.StatusDuplicate {
		code = consts.StatusOK
	}
	c.JSON(code, AsyncSubmitResponse{SubmissionUUID: sub.SubmissionUUID, Status: sub.Status})
}

// GetSubmission 查询异步抽取结果
func (h *ExtractionHandler) GetSubmission(ctx context.Context, c *app.RequestContext) {
	sub, err := h.svc.GetSubmission(ctx, c.Param("uuid"))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, sub)
}

// ListSubmissions 分页列出异步抽取
func (h *ExtractionHandler) ListSubmissions(ctx context.Context, c *app.RequestContext) {
	page := queryInt(c, "page")
	pageSize := queryInt(c, "page_size")

	result, err := h.svc.ListSubmissions(ctx, page, pageSize, c.Query("status"))
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	c.JSON(consts.StatusOK, result)
}

// readUpload 读取 multipart 中的 file 字段，失败时已写好响应
func readUpload(ctx context.Context, c *app.RequestContext) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"detail": processor.ErrNoFile.Error()})
		return "", nil, false
	}

	data, err := readFileHeader(fileHeader)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("filename", tracing.SafeFilename(fileHeader.Filename)).Msg("读取上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"detail": "Processing error: " + err.Error()})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func queryInt(c *app.RequestContext, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

// writeError 错误到 HTTP 状态码的映射
func writeError(ctx context.Context, c *app.RequestContext, err error) {
	status, detail := consts.StatusInternalServerError, "Processing error: "+err.Error()
	switch {
	case processor.IsClientError(err):
		status, detail = consts.StatusBadRequest, err.Error()
	case errors.Is(err, processor.ErrSubmissionNotFound):
		status, detail = consts.StatusNotFound, "Submission not found"
	case errors.Is(err, processor.ErrAsyncUnavailable):
		status, detail = consts.StatusServiceUnavailable, err.Error()
	default:
		logger.Ctx(ctx).Error().Err(err).Msg("请求处理失败")
	}
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	c.JSON(status, utils.H{"detail": detail})
}

// debugValidate debug 级别下用 schema 校验输出，只记日志不影响响应
func debugValidate(ctx context.Context, record *types.ResumeRecord) {
	log := logger.Ctx(ctx)
	if log.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	if err := schema.ValidateRecord(record); err != nil {
		log.Warn().Err(err).Msg("抽取结果未通过 schema 校验")
	}
}
