package sources

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews scans the Firebase top-stories feed.
type HackerNews struct {
	client   *client
	baseURL  string
	maxItems int
}

// NewHackerNews creates the Hacker News adapter.
func NewHackerNews(cfg config.SourceConfig, timeout time.Duration) *HackerNews {
	return &HackerNews{
		client:   newClient(timeout),
		baseURL:  hackerNewsBaseURL,
		maxItems: cfg.MaxItems,
	}
}

// Name implements Adapter.
func (h *HackerNews) Name() types.Source {
	return types.SourceForum
}

type hnStory struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
}

// Scan fetches the top-story ID list, then each story. A failed item is
// skipped; only a failed ID list makes the whole source unavailable.
func (h *HackerNews) Scan(ctx context.Context) ([]types.Payload, error) {
	var ids []int64
	if err := h.client.getJSON(ctx, h.baseURL+"/topstories.json", &ids); err != nil {
		return nil, &SourceUnavailableError{Source: h.Name(), Err: err}
	}
	if len(ids) > h.maxItems {
		ids = ids[:h.maxItems]
	}

	var payloads []types.Payload
	for _, id := range ids {
		if ctx.Err() != nil {
			return payloads, nil
		}

		var story hnStory
		url := fmt.Sprintf("%s/item/%d.json", h.baseURL, id)
		if err := h.client.getJSON(ctx, url, &story); err != nil {
			log.Printf("[hackernews] story %d fetch failed: %v", id, err)
			continue
		}
		if story.Title == "" {
			continue
		}

		storyURL := story.URL
		if storyURL == "" {
			storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		}

		p := types.Payload{
			ExternalID:  strconv.FormatInt(id, 10),
			Title:       story.Title,
			Body:        story.Text,
			URL:         storyURL,
			RawScore:    float64(story.Score),
			HasRawScore: true,
		}
		if story.Time > 0 {
			p.PublishedAt = time.Unix(story.Time, 0).UTC()
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}
