// Package sources contains the per-feed adapters. Each adapter returns
// loose payloads; deciding whether a payload is usable belongs to the
// engine's normalizer, not here.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const userAgent = "tollgate/1.0"

// Adapter fetches raw items from one public feed.
type Adapter interface {
	Name() types.Source
	Scan(ctx context.Context) ([]types.Payload, error)
}

// SourceUnavailableError reports a feed that could not be reached this
// cycle. The cycle skips the source and continues with the others.
type SourceUnavailableError struct {
	Source types.Source
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// FromConfig builds the enabled adapters in deterministic scan order.
func FromConfig(cfg *config.Config) []Adapter {
	timeout := time.Duration(cfg.Scan.RequestTimeoutSecs) * time.Second

	var adapters []Adapter
	if cfg.Sources.HackerNews.Enabled {
		adapters = append(adapters, NewHackerNews(cfg.Sources.HackerNews, timeout))
	}
	if cfg.Sources.GitHub.Enabled {
		adapters = append(adapters, NewGitHub(cfg.Sources.GitHub, timeout))
	}
	if cfg.Sources.Reddit.Enabled {
		adapters = append(adapters, NewReddit(cfg.Sources.Reddit, timeout))
	}
	if cfg.Sources.ArXiv.Enabled {
		adapters = append(adapters, NewArXiv(cfg.Sources.ArXiv, timeout))
	}
	return adapters
}

// client is a small HTTP helper shared by the adapters: per-request context,
// a hard timeout, and a stable User-Agent.
type client struct {
	http *http.Client
}

func newClient(timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}}
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}
	return body, nil
}

func (c *client) getJSON(ctx context.Context, url string, dest any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}
