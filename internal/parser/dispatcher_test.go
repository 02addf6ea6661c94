package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestDispatcherRoutesByExtension(t *testing.T) {
	pdf := &fakeExtractor{name: "pdf", text: "pdf text"}
	docx := &fakeExtractor{name: "docx", text: "docx text"}
	tika := &fakeExtractor{name: "tika", text: "ocr text"}
	d := NewDispatcher(WithPDFExtractor(pdf), WithPDFFallback(nil), WithDocxExtractor(docx), WithTika(tika))

	ctx := context.Background()
	cases := []struct {
		filename string
		want     string
	}{
		{"resume.pdf", "pdf text"},
		{"RESUME.PDF", "pdf text"},
		{"resume.docx", "docx text"},
		{"legacy.doc", "ocr text"},
		{"scan.JPG", "ocr text"},
		{"scan.png", "ocr text"},
		{"scan.tiff", "ocr text"},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			got, err := d.ExtractBytes(ctx, tc.filename, []byte("x"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, 2, pdf.calls)
	assert.Equal(t, 1, docx.calls)
	assert.Equal(t, 4, tika.calls)
}

func TestDispatcherUnsupportedType(t *testing.T) {
	d := NewDispatcher(WithPDFExtractor(&fakeExtractor{}), WithDocxExtractor(&fakeExtractor{}))

	_, err := d.ExtractText(context.Background(), "notes.txt", strings.NewReader("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	assert.Equal(t, "Unsupported file type: .txt", err.Error())

	// 没有 Tika 时 .doc 不受支持
	_, err = d.ExtractBytes(context.Background(), "old.doc", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Equal(t, "Unsupported file type: .doc", err.Error())
}

func TestDispatcherImageWithoutTika(t *testing.T) {
	d := NewDispatcher()
	_, err := d.ExtractBytes(context.Background(), "scan.png", []byte("x"))
	assert.ErrorIs(t, err, ErrOCRUnavailable)
	assert.False(t, errors.Is(err, ErrUnsupportedFileType))
}

func TestDispatcherEmptyDocument(t *testing.T) {
	d := NewDispatcher(WithPDFExtractor(&fakeExtractor{text: "never"}))
	_, err := d.ExtractBytes(context.Background(), "resume.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestDispatcherPDFFallback(t *testing.T) {
	primary := &fakeExtractor{name: "eino", text: "  \n "}
	fallback := &fakeExtractor{name: "native", text: "Jane Doe"}
	d := NewDispatcher(WithPDFExtractor(primary), WithPDFFallback(fallback))

	got, err := d.ExtractBytes(context.Background(), "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got)
	assert.Equal(t, 1, fallback.calls)

	// 主后端有文本时不调用兜底
	primary.text = "text"
	got, err = d.ExtractBytes(context.Background(), "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "text", got)
	assert.Equal(t, 1, fallback.calls)

	// 兜底失败时保留主后端结果
	primary.text = " "
	fallback.err = errors.New("broken")
	got, err = d.ExtractBytes(context.Background(), "resume.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, " ", got)
}

func TestDispatcherBackendError(t *testing.T) {
	boom := errors.New("corrupt")
	d := NewDispatcher(WithDocxExtractor(&fakeExtractor{err: boom}))
	_, err := d.ExtractBytes(context.Background(), "resume.docx", []byte("PK"))
	assert.ErrorIs(t, err, boom)
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".docx"}, NewDispatcher().SupportedExtensions())
	assert.Equal(t,
		[]string{".pdf", ".docx", ".doc", ".jpg", ".jpeg", ".png", ".tiff", ".bmp"},
		NewDispatcher(WithTika(&fakeExtractor{})).SupportedExtensions())
}

func TestDispatcherCheckFile(t *testing.T) {
	d := NewDispatcher()
	assert.NoError(t, d.CheckFile("resume.PDF"))
	assert.NoError(t, d.CheckFile("resume.docx"))
	assert.ErrorIs(t, d.CheckFile("scan.png"), ErrOCRUnavailable)
	assert.ErrorIs(t, d.CheckFile("old.doc"), ErrUnsupportedFileType)
	assert.EqualError(t, d.CheckFile("notes.txt"), "Unsupported file type: .txt")

	withTika := NewDispatcher(WithTika(&fakeExtractor{}))
	assert.NoError(t, withTika.CheckFile("scan.png"))
	assert.NoError(t, withTika.CheckFile("old.doc"))

	// 与 ExtractBytes 返回相同的错误
	_, err := d.ExtractBytes(context.Background(), "scan.jpeg", []byte("x"))
	assert.Equal(t, err, d.CheckFile("scan.jpeg"))
}

func TestNativePDFExtractorRejectsGarbage(t *testing.T) {
	_, err := NewNativePDFExtractor().Extract(context.Background(), "bad.pdf", []byte("definitely not a pdf"))
	assert.Error(t, err)
}
