package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

func TestAnalyzeChokePointStory(t *testing.T) {
	e := New(config.Default())

	sig := e.Analyze(types.RawItem{
		Source:     types.SourceForum,
		ExternalID: "1001",
		Title:      "API rate limit frustration, need unified access",
		Body:       "Raised a Series A to fix fragmented infrastructure tooling",
		URL:        "https://example.com/story",
	})
	require.NotNil(t, sig)

	// Pain plus funding breadcrumbs push the first two axes above base.
	assert.True(t, hasCategory(sig.Breadcrumbs, types.CategoryAPIComplaints))
	assert.True(t, hasCategory(sig.Breadcrumbs, types.CategoryIntegrationPain))
	assert.True(t, hasCategory(sig.Breadcrumbs, types.CategoryVCFunding))
	assert.GreaterOrEqual(t, sig.Inevitability, 65.0)
	assert.GreaterOrEqual(t, sig.Moat, 55.0)
	assert.Equal(t, 60.0, sig.Timing)
	assert.Equal(t, types.TollAPI, sig.TollMechanism)
	assert.Equal(t, types.StatusActive, sig.Status)
	assert.Equal(t, "1001", sig.ExternalID)
}

func TestAnalyzeTooFewBreadcrumbs(t *testing.T) {
	e := New(config.Default()) // min_breadcrumbs = 2

	sig := e.Analyze(types.RawItem{
		Source:     types.SourceForum,
		ExternalID: "1",
		Title:      "rate limit complaint with nothing else",
	})
	assert.Nil(t, sig)
}

func TestAnalyzeHighScoreCandidate(t *testing.T) {
	e := New(config.Default())

	sig := e.Analyze(types.RawItem{
		Source:      types.SourceForum,
		ExternalID:  "2",
		Title:       "Rate limit chaos: winner take all vector database APIs",
		Body:        "Everyone is using embedding inference now, and they just raised funding",
		URL:         "https://example.com/2",
		RawScore:    500,
		HasRawScore: true,
	})
	require.NotNil(t, sig)

	assert.Equal(t, "AI Infrastructure", sig.Sector)
	assert.Equal(t, 90.0, sig.Inevitability) // pain + adoption + popularity
	assert.Equal(t, 85.0, sig.Moat)          // indicators + funding + high-moat sector
	assert.GreaterOrEqual(t, sig.TotalScore, 8.0)
	assert.NotEmpty(t, sig.EarlyMovers)
}

func TestAnalyzeCapsBreadcrumbs(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.MinBreadcrumbs = 1

	// Every default pattern group fires at least once, in title or body.
	var phrases []string
	for _, g := range cfg.Patterns {
		phrases = append(phrases, g.Phrases...)
	}
	body := strings.Join(phrases, " ")

	sig := New(cfg).Analyze(types.RawItem{
		Source:     types.SourceAggregator,
		ExternalID: "3",
		Title:      "everything at once",
		Body:       body,
	})
	require.NotNil(t, sig)
	assert.Len(t, sig.Breadcrumbs, 10)
}

func TestAnalyzeDescriptionFallsBackToTitle(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.MinBreadcrumbs = 1

	sig := New(cfg).Analyze(types.RawItem{
		Source:     types.SourceRepo,
		ExternalID: "4",
		Title:      "rate limit proxy",
	})
	require.NotNil(t, sig)
	assert.Equal(t, "rate limit proxy", sig.Description)
}
