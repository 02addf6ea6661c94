package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"first match only", "Contact: jane.doe@example.com or backup@x.io", "jane.doe@example.com", true},
		{"plus addressing", "mail: dev+cv@mail.example.org", "dev+cv@mail.example.org", true},
		{"no match", "no contact details here", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEmail(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"country code and groups", "Call +1 555-123-4567 today", "+1 555-123-4567", true},
		{"ten digits", "Phone: 9876543210", "9876543210", true},
		{"space grouping", "tel 555 123 4567", "555 123 4567", true},
		{"too short", "ext 12345", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPhone(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLinks_DeduplicatesSameAddress(t *testing.T) {
	links := ExtractLinks("see https://github.com/jane and github.com/jane")
	assert.Equal(t, []string{"https://github.com/jane"}, links)
}

func TestExtractLinks_Membership(t *testing.T) {
	text := "www.linkedin.com/in/jane\nportfolio: https://jane.dev/work\nhttps://jane.dev/work"
	links := ExtractLinks(text)
	assert.ElementsMatch(t, []string{"www.linkedin.com/in/jane", "https://jane.dev/work"}, links)
}

func TestExtractLinks_None(t *testing.T) {
	links := ExtractLinks("plain text only")
	assert.NotNil(t, links)
	assert.Empty(t, links)
}
