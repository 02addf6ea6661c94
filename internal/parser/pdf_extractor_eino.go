package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"resume-extractor/internal/logger"
	"resume-extractor/internal/tracing"
)

const einoParseTimeout = 30 * time.Second

// EinoPDFExtractor 基于 eino-ext PDF 解析器，按页解析后以换行拼接
type EinoPDFExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
}

// NewEinoPDFExtractor 创建按页输出的 eino PDF 解析器
func NewEinoPDFExtractor(ctx context.Context) (*EinoPDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}
	return &EinoPDFExtractor{parser: p, timeout: einoParseTimeout}, nil
}

func (e *EinoPDFExtractor) Name() string { return "eino-pdf" }

func (e *EinoPDFExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(filename),
		einoParser.WithExtraMeta(map[string]any{"source_file": filename}),
	)
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", filename, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.Content)
	}
	text := strings.Join(pages, "\n")

	logger.Ctx(ctx).Debug().
		Str("file", tracing.SafeFilename(filename)).
		Int("pages", len(docs)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("eino PDF 解析完成")
	return text, nil
}
