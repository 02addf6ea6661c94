package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/types"
	"resume-extractor/pkg/utils"
)

const sampleResume = `Jane Doe
Austin, TX
jane.doe@example.com | +1 512-555-0199
https://github.com/janedoe

Summary
Backend engineer focused on distributed systems.

Technical Skills
Go, Python; Docker | Kubernetes
PostgreSQL

Work Experience
Senior Engineer at Acme Corp
Jan 2020 - Present
Led the payments platform.

Education
University of Texas
B.Sc Computer Science 2012 - 2016

Certificates
AWS Certified Developer
CKA
`

type fakeRecognizer struct {
	entities types.Entities
	err      error
	received string
}

func (f *fakeRecognizer) Recognize(_ context.Context, text string) (types.Entities, error) {
	f.received = text
	return f.entities, f.err
}

func TestToStructuredRecord_FullResume(t *testing.T) {
	rec := &fakeRecognizer{entities: types.Entities{
		types.EntityPerson: {"Jane Doe", "Acme Corp"},
		types.EntityPlace:  {"Austin, TX"},
	}}
	e := New(WithRecognizer(rec))

	record := e.ToStructuredRecord(context.Background(), sampleResume)

	assert.Equal(t, utils.StringPtr("Jane Doe"), record.Name)
	assert.Equal(t, utils.StringPtr("Austin, TX"), record.Location)
	assert.Equal(t, utils.StringPtr("jane.doe@example.com"), record.Email)
	assert.Equal(t, utils.StringPtr("+1 512-555-0199"), record.Phone)
	assert.Equal(t, []string{"https://github.com/janedoe"}, record.Links)
	assert.Equal(t, utils.StringPtr("Backend engineer focused on distributed systems."), record.Summary)
	assert.Equal(t, []string{"docker", "go", "kubernetes", "postgresql", "python"}, record.Skills)
	assert.Equal(t, []string{"AWS Certified Developer", "CKA"}, record.Certifications)

	require.Len(t, record.Experience, 1)
	exp := record.Experience[0]
	assert.Equal(t, utils.StringPtr("Senior Engineer"), exp.Role)
	assert.Equal(t, utils.StringPtr("Acme Corp"), exp.Company)
	assert.Equal(t, utils.StringPtr("Jan 2020"), exp.StartDate)
	assert.Equal(t, utils.StringPtr("Present"), exp.EndDate)
	assert.Equal(t, utils.StringPtr("Jan 2020 - Present\nLed the payments platform."), exp.Description)

	require.Len(t, record.Education, 1)
	edu := record.Education[0]
	assert.Equal(t, utils.StringPtr("University of Texas"), edu.Institution)
	assert.Equal(t, utils.StringPtr("b.sc"), edu.Degree)
	assert.Equal(t, utils.StringPtr("2012"), edu.StartYear)
	assert.Equal(t, utils.StringPtr("2016"), edu.EndYear)

	assert.Equal(t, sampleResume, rec.received)
}

func TestToStructuredRecord_FallbackChainsFirstMatchWins(t *testing.T) {
	text := "Objective\nFind a role.\nProfile\nShould be ignored.\nSkills\nRust\nTechnical Skills\nGo\nCertifications\nCKA\nCertificates\nIgnored"

	record := New().ToStructuredRecord(context.Background(), text)

	assert.Equal(t, utils.StringPtr("Find a role."), record.Summary)
	assert.Equal(t, []string{"rust"}, record.Skills)
	assert.Equal(t, []string{"CKA"}, record.Certifications)
}

func TestToStructuredRecord_RecognizerFailureIsSoft(t *testing.T) {
	rec := &fakeRecognizer{
		entities: types.Entities{types.EntityPerson: {"Partial Name"}},
		err:      errors.New("model not loaded"),
	}

	record := New(WithRecognizer(rec)).ToStructuredRecord(context.Background(), sampleResume)

	// 出错时部分结果也丢弃
	assert.Nil(t, record.Name)
	assert.Nil(t, record.Location)
	assert.Equal(t, utils.StringPtr("jane.doe@example.com"), record.Email)
	assert.NotEmpty(t, record.Skills)
	assert.Len(t, record.Experience, 1)
	assert.Len(t, record.Education, 1)
}

func TestToStructuredRecord_RecognizerInputIsCapped(t *testing.T) {
	rec := &fakeRecognizer{entities: types.NewEntities()}
	text := strings.Repeat("é", 50)

	New(WithRecognizer(rec), WithMaxRecognizerInput(10)).ToStructuredRecord(context.Background(), text)

	assert.Equal(t, 10, utf8.RuneCountInString(rec.received))
}

func TestToStructuredRecord_EmptyInput(t *testing.T) {
	record := New().ToStructuredRecord(context.Background(), "")

	assert.Equal(t, types.NewResumeRecord(), record)
}

func TestToStructuredRecord_Idempotent(t *testing.T) {
	e := New()
	first := e.ToStructuredRecord(context.Background(), sampleResume)
	second := e.ToStructuredRecord(context.Background(), sampleResume)

	assert.Equal(t, first, second)
}

func TestCapRunes(t *testing.T) {
	assert.Equal(t, "abc", CapRunes("abc", 5))
	assert.Equal(t, "ab", CapRunes("abc", 2))
	assert.Equal(t, "日本", CapRunes("日本語", 2))
	assert.Equal(t, "abc", CapRunes("abc", 0))
}
