package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/api/handler"
	"resume-extractor/internal/api/router"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/storage/models"
)

const sampleText = `Jane Doe
jane.doe@example.com | 555-123-4567

Skills
Python, Docker`

// stubDispatcher 按扩展名返回固定结果
type stubDispatcher struct{}

func (stubDispatcher) ExtractBytes(_ context.Context, filename string, _ []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf", ".docx":
		return sampleText, nil
	case ".png":
		return "", parser.ErrOCRUnavailable
	default:
		return "", &parser.UnsupportedTypeError{Ext: ext}
	}
}

func (stubDispatcher) CheckFile(filename string) error {
	_, err := stubDispatcher{}.ExtractBytes(context.Background(), filename, nil)
	return err
}

func (stubDispatcher) SupportedExtensions() []string { return []string{".pdf", ".docx"} }

// asyncService 同步方法走真实服务，异步方法用内存数据
type asyncService struct {
	*processor.ExtractionService
	subs     map[string]*processor.Submission
	lastPage [3]interface{}
}

func (a *asyncService) AsyncEnabled() bool { return true }

func (a *asyncService) SubmitAsync(_ context.Context, filename string, data []byte) (*processor.Submission, error) {
	if filepath.Ext(filename) == ".txt" {
		return nil, &parser.UnsupportedTypeError{Ext: ".txt"}
	}
	for _, sub := range a.subs {
		if sub.Filename == string(data) {
			return &processor.Submission{SubmissionUUID: sub.SubmissionUUID, Status: models.StatusDuplicate}, nil
		}
	}
	sub := &processor.Submission{
		SubmissionUUID: "0190c0de-0000-7000-8000-000000000001",
		Status:         models.StatusPending,
		Filename:       string(data),
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	a.subs[sub.SubmissionUUID] = sub
	return sub, nil
}

func (a *asyncService) GetSubmission(_ context.Context, id string) (*processor.Submission, error) {
	sub, ok := a.subs[id]
	if !ok {
		return nil, processor.ErrSubmissionNotFound
	}
	return sub, nil
}

func (a *asyncService) ListSubmissions(_ context.Context, page, pageSize int, status string) (*processor.SubmissionPage, error) {
	a.lastPage = [3]interface{}{page, pageSize, status}
	if status == "bogus" {
		return nil, processor.ErrInvalidStatus
	}
	items := make([]processor.Submission, 0, len(a.subs))
	for _, sub := range a.subs {
		items = append(items, *sub)
	}
	return &processor.SubmissionPage{Items: items, Total: int64(len(items)), Page: page, PageSize: pageSize}, nil
}

func newService() *processor.ExtractionService {
	return processor.NewExtractionService(stubDispatcher{}, extractor.New())
}

func newServer(svc handler.ExtractionService, opts router.Options) *server.Hertz {
	h := server.New()
	router.RegisterRoutes(h, handler.NewExtractionHandler(svc), opts)
	return h
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file here"))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func upload(t *testing.T, h *server.Hertz, path, filename string, content []byte, headers ...ut.Header) *ut.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "file", filename, content)
	headers = append(headers, ut.Header{Key: "Content-Type", Value: contentType})
	return ut.PerformRequest(h.Engine, consts.MethodPost, path, &ut.Body{Body: body, Len: body.Len()}, headers...)
}

func decode(t *testing.T, resp *ut.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	h := newServer(newService(), router.Options{})

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/", nil)
	require.Equal(t, consts.StatusOK, resp.Code)
	root := decode(t, resp)
	assert.Equal(t, "Resume Extractor API", root["message"])
	endpoints, ok := root["endpoints"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, endpoints, "POST /extract")
	assert.Contains(t, endpoints, "GET /health")

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/health", nil)
	require.Equal(t, consts.StatusOK, resp.Code)
	assert.Equal(t, "healthy", decode(t, resp)["status"])
}

func TestExtract(t *testing.T) {
	h := newServer(newService(), router.Options{})

	resp := upload(t, h, "/extract", "resume.pdf", []byte("%PDF-1.4"))
	require.Equal(t, consts.StatusOK, resp.Code, resp.Body.String())
	out := decode(t, resp)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "resume.pdf", out["filename"])
	data, ok := out["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "jane.doe@example.com", data["email"])
	assert.ElementsMatch(t, []interface{}{"docker", "python"}, data["skills"])
	for _, key := range []string{"name", "email", "phone", "location", "links", "summary", "skills", "experience", "education", "certifications"} {
		assert.Contains(t, data, key)
	}
}

func TestExtractErrors(t *testing.T) {
	h := newServer(newService(), router.Options{})

	tests := []struct {
		name       string
		filename   string
		wantCode   int
		wantDetail string
	}{
		{name: "缺少文件", filename: "", wantCode: consts.StatusBadRequest, wantDetail: "No file provided"},
		{name: "不支持的类型", filename: "notes.txt", wantCode: consts.StatusBadRequest, wantDetail: "Unsupported file type: .txt"},
		{name: "OCR 不可用", filename: "scan.png", wantCode: consts.StatusInternalServerError, wantDetail: "Processing error: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, h, "/extract", tt.filename, []byte("data"))
			require.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			detail, _ := decode(t, resp)["detail"].(string)
			assert.True(t, strings.HasPrefix(detail, tt.wantDetail), detail)
		})
	}
}

func TestExtractText(t *testing.T) {
	h := newServer(newService(), router.Options{})

	payload, _ := json.Marshal(handler.ExtractTextRequest{Text: sampleText})
	resp := ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/extract/text",
		&ut.Body{Body: bytes.NewReader(payload), Len: len(payload)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
	require.Equal(t, consts.StatusOK, resp.Code)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "jane.doe@example.com", data["email"])

	bad := []byte("{oops")
	resp = ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/extract/text",
		&ut.Body{Body: bytes.NewReader(bad), Len: len(bad)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
	assert.Equal(t, consts.StatusBadRequest, resp.Code)
}

func TestAsyncUnavailable(t *testing.T) {
	h := newServer(newService(), router.Options{})

	resp := upload(t, h, "/api/v1/extract/async", "resume.pdf", []byte("x"))
	assert.Equal(t, consts.StatusServiceUnavailable, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/extractions/abc", nil)
	assert.Equal(t, consts.StatusServiceUnavailable, resp.Code)
}

func TestAsyncFlow(t *testing.T) {
	svc := &asyncService{ExtractionService: newService(), subs: map[string]*processor.Submission{}}
	h := newServer(svc, router.Options{})

	resp := upload(t, h, "/api/v1/extract/async", "resume.pdf", []byte("resume.pdf"))
	require.Equal(t, consts.StatusAccepted, resp.Code, resp.Body.String())
	var submitted handler.AsyncSubmitResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &submitted))
	assert.Equal(t, models.StatusPending, submitted.Status)
	require.NotEmpty(t, submitted.SubmissionUUID)

	resp = upload(t, h, "/api/v1/extract/async", "again.pdf", []byte("resume.pdf"))
	require.Equal(t, consts.StatusOK, resp.Code)
	assert.Equal(t, models.StatusDuplicate, decode(t, resp)["status"])

	resp = upload(t, h, "/api/v1/extract/async", "notes.txt", []byte("x"))
	assert.Equal(t, consts.StatusBadRequest, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/extractions/"+submitted.SubmissionUUID, nil)
	require.Equal(t, consts.StatusOK, resp.Code)
	assert.Equal(t, submitted.SubmissionUUID, decode(t, resp)["submission_uuid"])

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/extractions/unknown", nil)
	assert.Equal(t, consts.StatusNotFound, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/extractions?page=2&page_size=5&status=pending", nil)
	require.Equal(t, consts.StatusOK, resp.Code)
	assert.Equal(t, [3]interface{}{2, 5, "pending"}, svc.lastPage)
	page := decode(t, resp)
	assert.EqualValues(t, 1, page["total"])

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/api/v1/extractions?status=bogus", nil)
	assert.Equal(t, consts.StatusBadRequest, resp.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	h := newServer(newService(), router.Options{APIKeys: []string{"secret-key"}})
	payload := []byte(`{"text": "Skills\nGo"}`)

	resp := ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/extract/text",
		&ut.Body{Body: bytes.NewReader(payload), Len: len(payload)})
	assert.Equal(t, consts.StatusUnauthorized, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/extract/text",
		&ut.Body{Body: bytes.NewReader(payload), Len: len(payload)},
		ut.Header{Key: constants.HeaderAPIKey, Value: "wrong"})
	assert.Equal(t, consts.StatusUnauthorized, resp.Code)

	resp = ut.PerformRequest(h.Engine, consts.MethodPost, "/api/v1/extract/text",
		&ut.Body{Body: bytes.NewReader(payload), Len: len(payload)},
		ut.Header{Key: constants.HeaderAPIKey, Value: "secret-key"})
	assert.Equal(t, consts.StatusOK, resp.Code)

	// 顶层接口不需要 key
	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/health", nil)
	assert.Equal(t, consts.StatusOK, resp.Code)
}

func TestRequestID(t *testing.T) {
	h := newServer(newService(), router.Options{})

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/health", nil,
		ut.Header{Key: constants.HeaderRequestID, Value: "req-123"})
	assert.Equal(t, "req-123", resp.Result().Header.Get(constants.HeaderRequestID))

	resp = ut.PerformRequest(h.Engine, consts.MethodGet, "/health", nil)
	assert.Len(t, resp.Result().Header.Get(constants.HeaderRequestID), 36)
}
