package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const gitHubBaseURL = "https://api.github.com"

// GitHub scans the repository search API for high-star repositories.
type GitHub struct {
	client   *client
	baseURL  string
	maxItems int
}

// NewGitHub creates the GitHub adapter.
func NewGitHub(cfg config.SourceConfig, timeout time.Duration) *GitHub {
	return &GitHub{
		client:   newClient(timeout),
		baseURL:  gitHubBaseURL,
		maxItems: cfg.MaxItems,
	}
}

// Name implements Adapter.
func (g *GitHub) Name() types.Source {
	return types.SourceRepo
}

type ghSearchResponse struct {
	Items []ghRepo `json:"items"`
}

type ghRepo struct {
	FullName    string    `json:"full_name"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	PushedAt    time.Time `json:"pushed_at"`
}

// Scan fetches one stars-descending search page. The repo full name is the
// external ID (stable across renames of the short name's casing).
func (g *GitHub) Scan(ctx context.Context) ([]types.Payload, error) {
	url := fmt.Sprintf("%s/search/repositories?q=stars:>1000&sort=stars&order=desc&per_page=%d", g.baseURL, g.maxItems)

	var resp ghSearchResponse
	if err := g.client.getJSON(ctx, url, &resp); err != nil {
		return nil, &SourceUnavailableError{Source: g.Name(), Err: err}
	}

	payloads := make([]types.Payload, 0, len(resp.Items))
	for _, repo := range resp.Items {
		payloads = append(payloads, types.Payload{
			ExternalID:  repo.FullName,
			Title:       repo.Name,
			Body:        repo.Description,
			URL:         repo.HTMLURL,
			PublishedAt: repo.PushedAt,
			RawScore:    float64(repo.Stars),
			HasRawScore: true,
		})
	}
	return payloads, nil
}
