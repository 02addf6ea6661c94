package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativePDFExtractor 纯 Go 的 ledongthuc/pdf 解析器，也作为 eino 无文本时的兜底
type NativePDFExtractor struct{}

func NewNativePDFExtractor() *NativePDFExtractor { return &NativePDFExtractor{} }

func (n *NativePDFExtractor) Name() string { return "native-pdf" }

func (n *NativePDFExtractor) Extract(ctx context.Context, filename string, data []byte) (text string, err error) {
	// 该库遇到损坏的 PDF 会 panic
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("native PDF parser panicked on %s: %v", filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf %s: %w", filename, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d of %s: %w", i, filename, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
