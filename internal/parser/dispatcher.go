// Package parser 把上传的文档解码为纯文本。按扩展名选择后端：
// PDF 走 eino（或 ledongthuc / Tika），DOCX 走 nguyenthenguyen/docx，
// 图片 OCR 与旧版 .doc 走 Apache Tika。
package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/tracing"
)

// TextExtractor 单一格式的文本提取后端
type TextExtractor interface {
	Name() string
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".bmp"}

// Dispatcher 按扩展名分派文本提取
type Dispatcher struct {
	pdf         TextExtractor
	pdfFallback TextExtractor // pdf 只得到空白时再试一次
	docx        TextExtractor
	tika        TextExtractor // 可为 nil
}

// DispatcherOption 调度器选项
type DispatcherOption func(*Dispatcher)

// WithPDFExtractor 替换 PDF 后端
func WithPDFExtractor(e TextExtractor) DispatcherOption {
	return func(d *Dispatcher) { d.pdf = e }
}

// WithPDFFallback 设置 PDF 兜底后端，nil 表示不兜底
func WithPDFFallback(e TextExtractor) DispatcherOption {
	return func(d *Dispatcher) { d.pdfFallback = e }
}

// WithDocxExtractor 替换 DOCX 后端
func WithDocxExtractor(e TextExtractor) DispatcherOption {
	return func(d *Dispatcher) { d.docx = e }
}

// WithTika 设置 Tika 后端
func WithTika(e TextExtractor) DispatcherOption {
	return func(d *Dispatcher) { d.tika = e }
}

// NewDispatcher 默认使用 native PDF 与 DOCX 后端，不带 Tika
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		pdf:  NewNativePDFExtractor(),
		docx: NewDocxExtractor(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDispatcherFromConfig 按 extractor.pdf_backend 与 tika 配置装配后端
func NewDispatcherFromConfig(ctx context.Context, extCfg config.ExtractorConfig, tikaCfg config.TikaConfig) (*Dispatcher, error) {
	var opts []DispatcherOption

	var tika TextExtractor
	if t := NewTikaExtractorFromConfig(tikaCfg); t != nil {
		tika = t
		opts = append(opts, WithTika(t))
	}

	switch strings.ToLower(extCfg.PDFBackend) {
	case "", "eino":
		einoPDF, err := NewEinoPDFExtractor(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPDFExtractor(einoPDF), WithPDFFallback(NewNativePDFExtractor()))
	case "native":
		opts = append(opts, WithPDFExtractor(NewNativePDFExtractor()))
	case "tika":
		if tika == nil {
			return nil, fmt.Errorf("pdf_backend 为 tika 时必须配置 tika.server_url")
		}
		opts = append(opts, WithPDFExtractor(tika), WithPDFFallback(NewNativePDFExtractor()))
	default:
		return nil, fmt.Errorf("未知的 PDF 后端: %s", extCfg.PDFBackend)
	}

	return NewDispatcher(opts...), nil
}

// SupportedExtensions 当前可处理的扩展名，顺序固定
func (d *Dispatcher) SupportedExtensions() []string {
	exts := []string{".pdf", ".docx"}
	if d.tika != nil {
		exts = append(exts, ".doc")
		exts = append(exts, imageExtensions...)
	}
	return exts
}

// ExtractText 读取全部内容后按扩展名提取文本
func (d *Dispatcher) ExtractText(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取上传内容失败: %w", err)
	}
	return d.ExtractBytes(ctx, filename, data)
}

// ExtractBytes 按扩展名提取文本
func (d *Dispatcher) ExtractBytes(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	backend, err := d.backendFor(ext)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	text, err := backend.Extract(ctx, filename, data)
	if err != nil {
		return "", err
	}

	if ext == ".pdf" && d.pdfFallback != nil && strings.TrimSpace(text) == "" {
		logger.Ctx(ctx).Info().
			Str("file", tracing.SafeFilename(filename)).
			Str("primary", backend.Name()).
			Str("fallback", d.pdfFallback.Name()).
			Msg("PDF 主后端未提取到文本，改用兜底后端")
		fallbackText, fbErr := d.pdfFallback.Extract(ctx, filename, data)
		if fbErr != nil {
			logger.Ctx(ctx).Warn().Err(fbErr).Str("file", tracing.SafeFilename(filename)).Msg("PDF 兜底后端失败")
			return text, nil
		}
		text = fallbackText
	}
	return text, nil
}

// CheckFile 只看扩展名判断能否处理，返回的错误与 ExtractBytes 相同
func (d *Dispatcher) CheckFile(filename string) error {
	_, err := d.backendFor(strings.ToLower(filepath.Ext(filename)))
	return err
}

func (d *Dispatcher) backendFor(ext string) (TextExtractor, error) {
	switch {
	case ext == ".pdf":
		return d.pdf, nil
	case ext == ".docx":
		return d.docx, nil
	case ext == ".doc":
		if d.tika == nil {
			return nil, &UnsupportedTypeError{Ext: ext}
		}
		return d.tika, nil
	case isImage(ext):
		if d.tika == nil {
			return nil, ErrOCRUnavailable
		}
		return d.tika, nil
	default:
		return nil, &UnsupportedTypeError{Ext: ext}
	}
}

func isImage(ext string) bool {
	for _, e := range imageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
