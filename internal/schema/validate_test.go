package schema

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/extractor"
	"resume-extractor/internal/types"
)

func TestSchemaCompiles(t *testing.T) {
	_, err := loadSchema()
	require.NoError(t, err)
	assert.True(t, json.Valid(Raw()))
}

func TestValidateRecord_Empty(t *testing.T) {
	assert.NoError(t, ValidateRecord(types.NewResumeRecord()))
}

func TestValidateRecord_Extracted(t *testing.T) {
	text := `John Smith
john.smith@example.com
+1 555-123-4567
https://github.com/jsmith

Education
B.Sc. Computer Science, State University, 2014 - 2018

Experience
Software Engineer at Acme Corp
Jan 2019 - Present
Built services in Go and Python.

Skills
Go, Python, Kubernetes`

	record := extractor.New().ToStructuredRecord(context.Background(), text)
	assert.NoError(t, ValidateRecord(record))
}

func TestValidateRecord_Nil(t *testing.T) {
	err := ValidateRecord(nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "(root)", ve.Errors[0].Field)
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{
			name:      "缺少字段",
			doc:       `{"name": null}`,
			wantField: "(root)",
		},
		{
			name:      "类型错误",
			doc:       `{"name": 5, "email": null, "phone": null, "location": null, "links": [], "summary": null, "skills": [], "experience": [], "education": [], "certifications": []}`,
			wantField: "name",
		},
		{
			name:      "年份格式",
			doc:       `{"name": null, "email": null, "phone": null, "location": null, "links": [], "summary": null, "skills": [], "experience": [], "education": [{"institution": null, "degree": null, "start_year": "18", "end_year": null}], "certifications": []}`,
			wantField: "education.0.start_year",
		},
		{
			name:      "技能重复",
			doc:       `{"name": null, "email": null, "phone": null, "location": null, "links": [], "summary": null, "skills": ["Go", "Go"], "experience": [], "education": [], "certifications": []}`,
			wantField: "skills",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.doc))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			fields := make([]string, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestValidateJSON_Malformed(t *testing.T) {
	err := ValidateJSON([]byte("{not json"))
	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}
