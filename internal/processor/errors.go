package processor

import (
	"errors"
	"fmt"

	"resume-extractor/internal/parser"
	"resume-extractor/internal/storage"
)

// 基础错误类型
var (
	ErrNoFile             = errors.New("No file provided")
	ErrTextExtraction     = errors.New("text extraction failed")
	ErrStructuring        = errors.New("structuring failed")
	ErrPersistence        = errors.New("persistence failed")
	ErrAsyncUnavailable   = errors.New("async extraction requires MinIO, MySQL and RabbitMQ")
	ErrInvalidStatus      = errors.New("invalid status filter")
	ErrSubmissionNotFound = storage.ErrSubmissionNotFound
)

// ExtractionError 带提交 UUID 与操作名的处理错误
type ExtractionError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Cause          error
}

func (e *ExtractionError) Error() string {
	msg := e.BaseErr.Error()
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.SubmissionUUID != "" {
		return fmt.Sprintf("%s (op=%s, uuid=%s)", msg, e.Op, e.SubmissionUUID)
	}
	return msg
}

// Unwrap 同时暴露基础错误和底层原因，两者都能被 errors.Is 命中
func (e *ExtractionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

func NewTextExtractionError(uuid string, cause error) error {
	return &ExtractionError{SubmissionUUID: uuid, Op: "extract_text", BaseErr: ErrTextExtraction, Cause: cause}
}

func NewStructuringError(uuid string, cause error) error {
	return &ExtractionError{SubmissionUUID: uuid, Op: "structure", BaseErr: ErrStructuring, Cause: cause}
}

func NewPersistenceError(uuid, op string, cause error) error {
	return &ExtractionError{SubmissionUUID: uuid, Op: op, BaseErr: ErrPersistence, Cause: cause}
}

// IsClientError 由调用方输入导致的错误，HTTP 层映射为 400
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, parser.ErrUnsupportedFileType) ||
		errors.Is(err, parser.ErrEmptyDocument) ||
		errors.Is(err, ErrInvalidStatus)
}
