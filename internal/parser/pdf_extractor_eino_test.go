package parser

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/config"
)

func TestNewEinoPDFExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser)
	assert.Equal(t, "eino-pdf", extractor.Name())
	assert.Equal(t, einoParseTimeout, extractor.timeout)
}

func TestNewDispatcherFromConfig(t *testing.T) {
	ctx := context.Background()

	d, err := NewDispatcherFromConfig(ctx, config.ExtractorConfig{PDFBackend: "eino"}, config.TikaConfig{})
	require.NoError(t, err)
	assert.Equal(t, "eino-pdf", d.pdf.Name())
	assert.Equal(t, "native-pdf", d.pdfFallback.Name())
	assert.Nil(t, d.tika)

	d, err = NewDispatcherFromConfig(ctx, config.ExtractorConfig{PDFBackend: "native"}, config.TikaConfig{ServerURL: "http://tika:9998"})
	require.NoError(t, err)
	assert.Equal(t, "native-pdf", d.pdf.Name())
	assert.Nil(t, d.pdfFallback)
	assert.NotNil(t, d.tika)

	_, err = NewDispatcherFromConfig(ctx, config.ExtractorConfig{PDFBackend: "tika"}, config.TikaConfig{})
	assert.Error(t, err, "tika 后端缺少地址应报错")

	_, err = NewDispatcherFromConfig(ctx, config.ExtractorConfig{PDFBackend: "pdfium"}, config.TikaConfig{})
	assert.Error(t, err)
}

func TestEinoExtractRealPDF(t *testing.T) {
	sample := os.Getenv("RESUMEX_TEST_PDF")
	if sample == "" {
		t.Skip("未设置 RESUMEX_TEST_PDF，跳过真实PDF测试")
	}
	data, err := os.ReadFile(sample)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFExtractor(ctx)
	require.NoError(t, err)
	text, err := extractor.Extract(ctx, sample, data)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(text))

	native, err := NewNativePDFExtractor().Extract(ctx, sample, data)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(native))
}
