package parser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/config"
)

func createMockTikaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/tika":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("ocr:" + r.Header.Get("Content-Type") + ":" + r.Header.Get("X-Tika-OCRLanguage") + ":" + string(body)))
		case "/meta":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Content-Type":"image/png","xmpTPg:NPages":"1","custom:field":"x"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestTikaExtract(t *testing.T) {
	server := createMockTikaServer(t)
	defer server.Close()

	tika := NewTikaExtractor(server.URL+"/", WithOCRLanguage("eng"))
	text, err := tika.Extract(context.Background(), "scan.png", []byte("IMG"))
	require.NoError(t, err)
	assert.Equal(t, "ocr:image/png:eng:IMG", text)
}

func TestTikaMetadataModes(t *testing.T) {
	server := createMockTikaServer(t)
	defer server.Close()
	ctx := context.Background()

	minimal, err := NewTikaExtractor(server.URL).Metadata(ctx, "a.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"Content-Type": "image/png", "xmpTPg:NPages": "1"}, minimal)

	full, err := NewTikaExtractor(server.URL, WithMetadataMode(MetadataFull)).Metadata(ctx, "a.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Len(t, full, 3)
}

func TestTikaServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := NewTikaExtractor(server.URL).Extract(context.Background(), "a.doc", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTikaConnectionError(t *testing.T) {
	_, err := NewTikaExtractor("http://127.0.0.1:1").Extract(context.Background(), "a.doc", []byte("x"))
	assert.Error(t, err)
}

func TestNewTikaExtractorFromConfig(t *testing.T) {
	assert.Nil(t, NewTikaExtractorFromConfig(config.TikaConfig{}))

	tika := NewTikaExtractorFromConfig(config.TikaConfig{ServerURL: "http://tika:9998", Timeout: 5, OCRLanguage: "eng", MetadataMode: "none"})
	require.NotNil(t, tika)
	assert.Equal(t, "eng", tika.ocrLanguage)
	assert.Equal(t, MetadataNone, tika.metadataMode)
	assert.Equal(t, "5s", tika.client.Timeout.String())
}

func TestWithRealTikaServer(t *testing.T) {
	url := os.Getenv("RESUMEX_TEST_TIKA_URL")
	if url == "" {
		t.Skip("未设置 RESUMEX_TEST_TIKA_URL，跳过真实Tika服务器测试")
	}
	sample := os.Getenv("RESUMEX_TEST_PDF")
	if sample == "" {
		t.Skip("未设置 RESUMEX_TEST_PDF，跳过真实Tika服务器测试")
	}
	data, err := os.ReadFile(sample)
	require.NoError(t, err)

	text, err := NewTikaExtractor(url).Extract(context.Background(), sample, data)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
