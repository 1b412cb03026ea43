// Package digest renders newly detected signals into a daily email.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/example/tollgate/internal/types"
)

// Builder creates digest emails from freshly detected signals
type Builder struct {
	maxSignals int
	template   *template.Template
}

// New creates a new digest builder
func New(maxSignals int) (*Builder, error) {
	tmpl, err := template.New("digest").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		maxSignals: maxSignals,
		template:   tmpl,
	}, nil
}

// Digest represents a compiled digest ready for sending
type Digest struct {
	Subject     string
	HTMLBody    string
	PlainBody   string
	SignalCount int
	CreatedAt   time.Time
}

// digestData is the template data structure
type digestData struct {
	Title   string
	Date    string
	Signals []signalData
}

type signalData struct {
	Title         string
	Sector        string
	TollMechanism string
	TotalScore    float64
	Watchlisted   bool
	URL           string
	Breadcrumbs   []string
}

// Build creates a digest from signals, best-scored first.
func (b *Builder) Build(signals []types.Signal) (*Digest, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("no signals to include in digest")
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].TotalScore > signals[j].TotalScore
	})
	if len(signals) > b.maxSignals {
		signals = signals[:b.maxSignals]
	}

	now := time.Now()
	data := digestData{
		Title:   "Tollgate Daily Signals",
		Date:    now.Format("Monday, January 2"),
		Signals: make([]signalData, len(signals)),
	}

	for i, sig := range signals {
		crumbs := make([]string, 0, len(sig.Breadcrumbs))
		for _, c := range sig.Breadcrumbs {
			crumbs = append(crumbs, fmt.Sprintf("%s: %s", c.Category, c.MatchedPhrase))
		}
		data.Signals[i] = signalData{
			Title:         sig.Title,
			Sector:        sig.Sector,
			TollMechanism: string(sig.TollMechanism),
			TotalScore:    sig.TotalScore,
			Watchlisted:   sig.IsWatchlisted,
			URL:           sig.SourceURL,
			Breadcrumbs:   crumbs,
		}
	}

	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Digest{
		Subject:     fmt.Sprintf("Tollgate Signals - %s", now.Format("Jan 2")),
		HTMLBody:    htmlBuf.String(),
		PlainBody:   buildPlainText(data),
		SignalCount: len(signals),
		CreatedAt:   now,
	}, nil
}

func buildPlainText(data digestData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n\n", data.Title, data.Date)

	for i, s := range data.Signals {
		star := ""
		if s.Watchlisted {
			star = " *"
		}
		fmt.Fprintf(&buf, "%d. [%.1f]%s %s\n", i+1, s.TotalScore, star, s.Title)
		fmt.Fprintf(&buf, "   %s | %s\n", s.Sector, s.TollMechanism)
		fmt.Fprintf(&buf, "   %s\n\n", s.URL)
	}

	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; max-width: 640px; margin: 0 auto;">
  <h1>{{.Title}}</h1>
  <p>{{.Date}}</p>
  {{range .Signals}}
  <div style="border-bottom: 1px solid #ddd; padding: 12px 0;">
    <h3>[{{printf "%.1f" .TotalScore}}]{{if .Watchlisted}} &#9733;{{end}} {{.Title}}</h3>
    <p>{{.Sector}} &middot; {{.TollMechanism}}</p>
    {{if .Breadcrumbs}}
    <ul>
      {{range .Breadcrumbs}}<li>{{.}}</li>{{end}}
    </ul>
    {{end}}
    <p><a href="{{.URL}}">{{.URL}}</a></p>
  </div>
  {{end}}
</body>
</html>
`
