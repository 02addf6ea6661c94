package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/tracing"
)

// 元数据模式
const (
	MetadataFull    = "full"
	MetadataMinimal = "minimal"
	MetadataNone    = "none"
)

// TikaExtractor 通过 Apache Tika 服务提取文本，负责图片 OCR、旧版 .doc 以及可选的 PDF
type TikaExtractor struct {
	serverURL    string
	client       *http.Client
	ocrLanguage  string
	metadataMode string
}

// TikaOption Tika 提取器选项
type TikaOption func(*TikaExtractor)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) TikaOption {
	return func(t *TikaExtractor) { t.client = c }
}

// WithOCRLanguage 设置 Tesseract 语言，例如 "eng" 或 "eng+chi_sim"
func WithOCRLanguage(lang string) TikaOption {
	return func(t *TikaExtractor) { t.ocrLanguage = lang }
}

// WithMetadataMode 设置元数据模式：full、minimal 或 none
func WithMetadataMode(mode string) TikaOption {
	return func(t *TikaExtractor) { t.metadataMode = mode }
}

// NewTikaExtractor 创建 Tika 提取器，默认 60 秒超时、精简元数据
func NewTikaExtractor(serverURL string, opts ...TikaOption) *TikaExtractor {
	t := &TikaExtractor{
		serverURL:    strings.TrimRight(serverURL, "/"),
		client:       &http.Client{Timeout: 60 * time.Second},
		metadataMode: MetadataMinimal,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTikaExtractorFromConfig ServerURL 为空时返回 nil
func NewTikaExtractorFromConfig(cfg config.TikaConfig) *TikaExtractor {
	if cfg.ServerURL == "" {
		return nil
	}
	opts := []TikaOption{WithOCRLanguage(cfg.OCRLanguage)}
	if cfg.Timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second}))
	}
	if cfg.MetadataMode != "" {
		opts = append(opts, WithMetadataMode(cfg.MetadataMode))
	}
	return NewTikaExtractor(cfg.ServerURL, opts...)
}

func (t *TikaExtractor) Name() string { return "tika" }

func (t *TikaExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	start := time.Now()
	body, err := t.put(ctx, "/tika", filename, data, "text/plain")
	if err != nil {
		return "", err
	}
	text := string(body)

	event := logger.Ctx(ctx).Debug().
		Str("file", tracing.SafeFilename(filename)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start))
	if t.metadataMode != MetadataNone {
		if meta, metaErr := t.Metadata(ctx, filename, data); metaErr == nil {
			event = event.Interface("metadata", meta)
		} else {
			event = event.AnErr("metadata_error", metaErr)
		}
	}
	event.Msg("Tika 文本提取完成")
	return text, nil
}

// Metadata 取文档元数据，minimal 模式只保留常用字段
func (t *TikaExtractor) Metadata(ctx context.Context, filename string, data []byte) (map[string]interface{}, error) {
	body, err := t.put(ctx, "/meta", filename, data, "application/json")
	if err != nil {
		return nil, err
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	if t.metadataMode == MetadataFull {
		return meta, nil
	}
	filtered := make(map[string]interface{})
	for k, v := range meta {
		if importantMetadata[k] {
			filtered[k] = v
		}
	}
	return filtered, nil
}

func (t *TikaExtractor) put(ctx context.Context, path, filename string, data []byte, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.serverURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", mimeForExt(filepath.Ext(filename)))
	req.Header.Set("Accept", accept)
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filepath.Base(filename))
	}
	if t.ocrLanguage != "" {
		req.Header.Set("X-Tika-OCRLanguage", t.ocrLanguage)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}
	return body, nil
}

var importantMetadata = map[string]bool{
	"Content-Type":        true,
	"xmpTPg:NPages":       true,
	"dcterms:created":     true,
	"dc:title":            true,
	"language":            true,
	"pdf:PDFVersion":      true,
	"pdf:docinfo:title":   true,
	"pdf:docinfo:created": true,
	"X-TIKA:Parsed-By":    true,
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
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
