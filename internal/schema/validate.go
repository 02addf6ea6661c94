// Package schema 提供 ResumeRecord 输出结构的 JSON Schema 校验
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"resume-extractor/internal/types"
)

//go:embed resume_record.schema.json
var resumeRecordSchema []byte

var (
	compiled    *gojsonschema.Schema
	compileErr  error
	compileOnce sync.Once
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 校验失败，包含全部字段错误
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Raw 返回内置 schema 原文
func Raw() []byte {
	return resumeRecordSchema
}

func loadSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resumeRecordSchema))
		if compileErr != nil {
			compileErr = fmt.Errorf("编译 resume record schema 失败: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateRecord 校验结构化结果是否符合输出结构
func ValidateRecord(record *types.ResumeRecord) error {
	if record == nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "record is nil"}}}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化 record 失败: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON 校验 JSON 文本。文本本身无法解析时返回普通错误，
// 结构不符时返回 *ValidationError。
func ValidateJSON(data []byte) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("解析待校验 JSON 失败: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
