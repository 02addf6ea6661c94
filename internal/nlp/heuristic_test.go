package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-extractor/internal/types"
)

const resumeHead = `Summary
Jane Doe
Austin, TX
jane.doe@example.com

Work Experience
Senior Engineer at Acme Corp
Jan 2020 - Present

Education
University of Texas
B.Sc 2012 - 2016
`

func TestHeuristicRecognizer_Recognize(t *testing.T) {
	ents, err := NewHeuristicRecognizer(nil).Recognize(context.Background(), resumeHead)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jane Doe"}, ents[types.EntityPerson])
	assert.Equal(t, []string{"Austin, TX"}, ents[types.EntityPlace])
	assert.Equal(t, []string{"Acme Corp", "University of Texas"}, ents[types.EntityOrganization])
	assert.Equal(t, []string{"Jan 2020", "2012", "2016"}, ents[types.EntityDate])
}

func TestHeuristicRecognizer_LocationLabel(t *testing.T) {
	ents, err := NewHeuristicRecognizer(nil).Recognize(context.Background(), "John Smith\nLocation: Berlin, Germany\n")
	require.NoError(t, err)

	first, ok := ents.First(types.EntityPlace)
	require.True(t, ok)
	assert.Equal(t, "Berlin, Germany", first)
}

func TestHeuristicRecognizer_NoName(t *testing.T) {
	ents, err := NewHeuristicRecognizer(nil).Recognize(context.Background(), "curriculum vitae\njohn@example.com\n+1 555 0100")
	require.NoError(t, err)

	assert.Empty(t, ents[types.EntityPerson])
	assert.NotNil(t, ents[types.EntityPerson])
}

func TestHeuristicRecognizer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHeuristicRecognizer(nil).Recognize(ctx, resumeHead)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLooksLikeName(t *testing.T) {
	assert.True(t, looksLikeName("Mary-Ann O'Neil"))
	assert.True(t, looksLikeName("J. R. Smith"))
	assert.False(t, looksLikeName("Jane"))
	assert.False(t, looksLikeName("Jane Doe, PhD"))
	assert.False(t, looksLikeName("Backend engineer"))
	assert.False(t, looksLikeName("Initech Labs"))
}
