package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType 扩展名没有可用的解析后端
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrOCRUnavailable 图片需要 OCR，但未配置 Tika
	ErrOCRUnavailable = errors.New("OCR backend is not configured")
	// ErrEmptyDocument 上传内容为空
	ErrEmptyDocument = errors.New("empty document")
)

// UnsupportedTypeError 携带扩展名，错误信息直接用于 HTTP 响应
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", e.Ext)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}
