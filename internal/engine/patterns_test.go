package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

var testGroups = []config.PatternGroup{
	{Category: types.CategoryAPIComplaints, Phrases: []string{"rate limit", "api pricing"}},
	{Category: types.CategoryVCFunding, Phrases: []string{"series a"}},
}

func TestExtractBreadcrumbsCaseInsensitive(t *testing.T) {
	crumbs := ExtractBreadcrumbs("Hit the RATE LIMIT again", "", testGroups)
	require.Len(t, crumbs, 1)
	assert.Equal(t, types.CategoryAPIComplaints, crumbs[0].Category)
	assert.Equal(t, "rate limit", crumbs[0].MatchedPhrase)
	assert.Equal(t, types.FieldTitle, crumbs[0].SourceField)
}

func TestExtractBreadcrumbsTitleWins(t *testing.T) {
	// Phrase in both fields is attributed to the title.
	crumbs := ExtractBreadcrumbs("rate limit woes", "another rate limit rant", testGroups)
	require.Len(t, crumbs, 1)
	assert.Equal(t, types.FieldTitle, crumbs[0].SourceField)
}

func TestExtractBreadcrumbsOncePerPhrase(t *testing.T) {
	// A phrase repeated in one field still yields a single breadcrumb.
	crumbs := ExtractBreadcrumbs("", "rate limit here, rate limit there", testGroups)
	require.Len(t, crumbs, 1)
	assert.Equal(t, types.FieldBody, crumbs[0].SourceField)
}

func TestExtractBreadcrumbsMultiplePhrasesSameCategory(t *testing.T) {
	crumbs := ExtractBreadcrumbs("rate limit and api pricing changes", "", testGroups)
	require.Len(t, crumbs, 2)
	assert.Equal(t, types.CategoryAPIComplaints, crumbs[0].Category)
	assert.Equal(t, types.CategoryAPIComplaints, crumbs[1].Category)
	assert.NotEqual(t, crumbs[0].MatchedPhrase, crumbs[1].MatchedPhrase)
}

func TestExtractBreadcrumbsAcrossCategories(t *testing.T) {
	crumbs := ExtractBreadcrumbs("rate limit", "they raised a Series A", testGroups)
	require.Len(t, crumbs, 2)
	assert.True(t, hasCategory(crumbs, types.CategoryAPIComplaints))
	assert.True(t, hasCategory(crumbs, types.CategoryVCFunding))
}

func TestExtractBreadcrumbsNoMatch(t *testing.T) {
	crumbs := ExtractBreadcrumbs("nothing relevant", "at all", testGroups)
	assert.Empty(t, crumbs)
}

func TestExtractBreadcrumbsSkipsBlankPhrases(t *testing.T) {
	groups := []config.PatternGroup{
		{Category: "x", Phrases: []string{"  ", ""}},
	}
	assert.Empty(t, ExtractBreadcrumbs("anything", "anything", groups))
}
