package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/tollgate/internal/types"
)

const (
	maxTitleRunes = 200
	maxBodyRunes  = 500
)

// MalformedRecordError reports a raw payload with nothing scorable: neither
// a title nor a URL. Such records are skipped and counted, never fatal.
type MalformedRecordError struct {
	Source     types.Source
	ExternalID string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record from %s (id %q): no title or url", e.Source, e.ExternalID)
}

// Normalize maps a loose adapter payload into a canonical RawItem. Missing
// optional fields (body, published time, raw score) are substituted, not
// errors; fetchedAt stands in for an absent publish time.
func Normalize(p types.Payload, source types.Source, fetchedAt time.Time) (types.RawItem, error) {
	title := strings.TrimSpace(p.Title)
	url := strings.TrimSpace(p.URL)
	if title == "" && url == "" {
		return types.RawItem{}, &MalformedRecordError{Source: source, ExternalID: p.ExternalID}
	}

	published := p.PublishedAt
	if published.IsZero() {
		published = fetchedAt
	}

	return types.RawItem{
		Source:      source,
		ExternalID:  p.ExternalID,
		Title:       truncateRunes(title, maxTitleRunes),
		Body:        strings.TrimSpace(p.Body),
		URL:         url,
		PublishedAt: published,
		RawScore:    p.RawScore,
		HasRawScore: p.HasRawScore,
	}, nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
