package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

func TestHackerNewsScan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1, 2, 3, 4]`)
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"title":"Rate limits are killing us","url":"https://example.com/post","score":340,"time":1740800000}`)
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, r *http.Request) {
		// Ask HN style story: no external URL, falls back to the item page.
		fmt.Fprint(w, `{"id":2,"title":"Ask HN: unified API access?","text":"some text","score":50,"time":1740800100}`)
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, r *http.Request) {
		// Deleted story without a title is skipped.
		fmt.Fprint(w, `{"id":3}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	hn := NewHackerNews(config.SourceConfig{MaxItems: 3}, 5*time.Second)
	hn.baseURL = srv.URL

	payloads, err := hn.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 2) // item 3 skipped, item 4 beyond max_items

	assert.Equal(t, "1", payloads[0].ExternalID)
	assert.Equal(t, "Rate limits are killing us", payloads[0].Title)
	assert.Equal(t, "https://example.com/post", payloads[0].URL)
	assert.Equal(t, 340.0, payloads[0].RawScore)
	assert.True(t, payloads[0].HasRawScore)
	assert.False(t, payloads[0].PublishedAt.IsZero())

	assert.Equal(t, "2", payloads[1].ExternalID)
	assert.Equal(t, "https://news.ycombinator.com/item?id=2", payloads[1].URL)
	assert.Equal(t, "some text", payloads[1].Body)
}

func TestHackerNewsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	hn := NewHackerNews(config.SourceConfig{MaxItems: 3}, 5*time.Second)
	hn.baseURL = srv.URL

	_, err := hn.Scan(context.Background())
	var uerr *SourceUnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, types.SourceForum, uerr.Source)
}

func TestGitHubScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, `{"items":[
			{"full_name":"acme/gateway","name":"gateway","description":"rate limit proxy","html_url":"https://github.com/acme/gateway","stargazers_count":12000,"pushed_at":"2026-02-28T10:00:00Z"}
		]}`)
	}))
	defer srv.Close()

	gh := NewGitHub(config.SourceConfig{MaxItems: 30}, 5*time.Second)
	gh.baseURL = srv.URL

	payloads, err := gh.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "acme/gateway", p.ExternalID)
	assert.Equal(t, "gateway", p.Title)
	assert.Equal(t, "rate limit proxy", p.Body)
	assert.Equal(t, 12000.0, p.RawScore)
	assert.True(t, p.HasRawScore)
	assert.Equal(t, time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC), p.PublishedAt.UTC())
}

func TestRedditScanSkipsBrokenSubreddit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/r/programming/hot.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"id":"abc","title":"API pricing rant","selftext":"body","permalink":"/r/programming/comments/abc/","score":900,"created_utc":1740800000}}
		]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	rd := NewReddit(config.SourceConfig{
		MaxItems:   25,
		Subreddits: []string{"programming", "doesnotexist"},
	}, 5*time.Second)
	rd.baseURL = srv.URL

	payloads, err := rd.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "abc", p.ExternalID)
	assert.Equal(t, "API pricing rant", p.Title)
	assert.Equal(t, redditBaseURL+"/r/programming/comments/abc/", p.URL)
	assert.Equal(t, 900.0, p.RawScore)
}

func TestRedditAllSubredditsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rd := NewReddit(config.SourceConfig{
		MaxItems:   25,
		Subreddits: []string{"a", "b"},
	}, 5*time.Second)
	rd.baseURL = srv.URL

	_, err := rd.Scan(context.Background())
	var uerr *SourceUnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, types.SourceAggregator, uerr.Source)
}

const arxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2602.01234v1</id>
    <title>Distributed rate limiting
  for multi-tenant systems</title>
    <summary>We study   shared infrastructure
  chokepoints.</summary>
    <published>2026-02-27T18:00:00Z</published>
  </entry>
</feed>`

func TestArXivScan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/query", r.URL.Path)
		fmt.Fprint(w, arxivFeed)
	}))
	defer srv.Close()

	ax := NewArXiv(config.SourceConfig{
		MaxItems:   20,
		Categories: []string{"cs.DC"},
	}, 5*time.Second)
	ax.baseURL = srv.URL

	payloads, err := ax.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "2602.01234v1", p.ExternalID)
	assert.Equal(t, "Distributed rate limiting for multi-tenant systems", p.Title)
	assert.Equal(t, "We study shared infrastructure chokepoints.", p.Body)
	assert.Equal(t, "http://arxiv.org/abs/2602.01234v1", p.URL)
	assert.Equal(t, time.Date(2026, 2, 27, 18, 0, 0, 0, time.UTC), p.PublishedAt)
	assert.False(t, p.HasRawScore)
}

func TestExternalIDFromAbsURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2408.01234v1", "2408.01234v1"},
		{" http://arxiv.org/abs/2408.01234v1 ", "2408.01234v1"},
		{"urn:something-else", "urn:something-else"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, externalIDFromAbsURL(tt.in))
	}
}

func TestFromConfigOrderAndEnablement(t *testing.T) {
	cfg := config.Default()
	adapters := FromConfig(cfg)
	require.Len(t, adapters, 4)
	assert.Equal(t, types.SourceForum, adapters[0].Name())
	assert.Equal(t, types.SourceRepo, adapters[1].Name())
	assert.Equal(t, types.SourceAggregator, adapters[2].Name())
	assert.Equal(t, types.SourcePaper, adapters[3].Name())

	cfg.Sources.GitHub.Enabled = false
	cfg.Sources.ArXiv.Enabled = false
	adapters = FromConfig(cfg)
	require.Len(t, adapters, 2)
	assert.Equal(t, types.SourceForum, adapters[0].Name())
	assert.Equal(t, types.SourceAggregator, adapters[1].Name())
}
