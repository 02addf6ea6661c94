package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSkills(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"mixed delimiters and case", "Python, Docker; AWS", []string{"aws", "docker", "python"}},
		{"bullets and pipes", "python3, Go | rust•c++ · C#", []string{"c#", "c++", "go", "rust"}},
		{"multi word skills", "Machine Learning\nREST API", []string{"machine learning", "rest api"}},
		{"duplicates collapse", "python, Python ,PYTHON", []string{"python"}},
		{"no partial matching", "golang, reactjs", []string{}},
		{"empty", "", []string{}},
		{"whitespace only", "  \n\t ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ExtractSkills(tt.text))
		})
	}
}
