package sources

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const redditBaseURL = "https://www.reddit.com"

// Reddit scans the hot listing of each configured subreddit.
type Reddit struct {
	client     *client
	baseURL    string
	subreddits []string
	maxItems   int
}

// NewReddit creates the Reddit adapter.
func NewReddit(cfg config.SourceConfig, timeout time.Duration) *Reddit {
	return &Reddit{
		client:     newClient(timeout),
		baseURL:    redditBaseURL,
		subreddits: cfg.Subreddits,
		maxItems:   cfg.MaxItems,
	}
}

// Name implements Adapter.
func (r *Reddit) Name() types.Source {
	return types.SourceAggregator
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Score      float64 `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

// Scan fetches each subreddit's hot page. One broken subreddit is skipped;
// the source is unavailable only when every subreddit fails.
func (r *Reddit) Scan(ctx context.Context) ([]types.Payload, error) {
	if len(r.subreddits) == 0 {
		return nil, nil
	}

	var payloads []types.Payload
	failed := 0
	var lastErr error
	for _, sub := range r.subreddits {
		url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, sub, r.maxItems)

		var listing redditListing
		if err := r.client.getJSON(ctx, url, &listing); err != nil {
			log.Printf("[reddit] r/%s fetch failed: %v", sub, err)
			failed++
			lastErr = err
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			p := types.Payload{
				ExternalID:  post.ID,
				Title:       post.Title,
				Body:        post.Selftext,
				URL:         redditBaseURL + post.Permalink,
				RawScore:    post.Score,
				HasRawScore: true,
			}
			if post.CreatedUTC > 0 {
				p.PublishedAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
			}
			payloads = append(payloads, p)
		}
	}

	if failed == len(r.subreddits) {
		return nil, &SourceUnavailableError{Source: r.Name(), Err: lastErr}
	}
	return payloads, nil
}
