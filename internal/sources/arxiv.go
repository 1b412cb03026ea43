package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const arxivBaseURL = "http://export.arxiv.org"

// ArXiv scans the Atom export feed of each configured category.
type ArXiv struct {
	client     *client
	baseURL    string
	categories []string
	maxItems   int
}

// NewArXiv creates the arXiv adapter.
func NewArXiv(cfg config.SourceConfig, timeout time.Duration) *ArXiv {
	return &ArXiv{
		client:     newClient(timeout),
		baseURL:    arxivBaseURL,
		categories: cfg.Categories,
		maxItems:   cfg.MaxItems,
	}
}

// Name implements Adapter.
func (a *ArXiv) Name() types.Source {
	return types.SourcePaper
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}

// Scan fetches the newest abstracts per category. One broken category is
// skipped; the source is unavailable only when every category fails.
func (a *ArXiv) Scan(ctx context.Context) ([]types.Payload, error) {
	if len(a.categories) == 0 {
		return nil, nil
	}

	var payloads []types.Payload
	failed := 0
	var lastErr error
	for _, cat := range a.categories {
		url := fmt.Sprintf("%s/api/query?search_query=cat:%s&sortBy=submittedDate&sortOrder=descending&max_results=%d",
			a.baseURL, cat, a.maxItems)

		body, err := a.client.get(ctx, url)
		if err != nil {
			log.Printf("[arxiv] category %s fetch failed: %v", cat, err)
			failed++
			lastErr = err
			continue
		}

		var feed atomFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			log.Printf("[arxiv] category %s parse failed: %v", cat, err)
			failed++
			lastErr = err
			continue
		}

		for _, entry := range feed.Entries {
			p := types.Payload{
				ExternalID: externalIDFromAbsURL(entry.ID),
				Title:      collapseWhitespace(entry.Title),
				Body:       collapseWhitespace(entry.Summary),
				URL:        strings.TrimSpace(entry.ID),
			}
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published)); err == nil {
				p.PublishedAt = ts.UTC()
			}
			payloads = append(payloads, p)
		}
	}

	if failed == len(a.categories) {
		return nil, &SourceUnavailableError{Source: a.Name(), Err: lastErr}
	}
	return payloads, nil
}

// externalIDFromAbsURL turns "http://arxiv.org/abs/2408.01234v1" into
// "2408.01234v1"; unexpected shapes fall back to the full URL.
func externalIDFromAbsURL(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.Index(id, "/abs/"); i >= 0 {
		return id[i+len("/abs/"):]
	}
	return id
}

// collapseWhitespace normalizes the newline-wrapped text arXiv emits.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
