// Package engine implements the signal detection core: normalization of
// feed payloads, breadcrumb extraction, sector classification, and the
// three-axis scoring that turns a raw item into a chokepoint candidate.
package engine

import (
	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

const maxBreadcrumbs = 10

// Engine runs the full detection pipeline for a single normalized item.
// It is stateless between items; all tunables come from the config passed
// at construction, which keeps cycles deterministic for a given config.
type Engine struct {
	cfg    *config.Config
	scorer *Scorer
}

// New creates an Engine from a validated config.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg, scorer: NewScorer(cfg)}
}

// Analyze extracts breadcrumbs, classifies, and scores one item. Returns
// nil when the item carries fewer breadcrumbs than the configured minimum
// and is therefore not a candidate at all.
func (e *Engine) Analyze(item types.RawItem) *types.Signal {
	crumbs := ExtractBreadcrumbs(item.Title, item.Body, e.cfg.Patterns)
	if len(crumbs) < e.cfg.Scan.MinBreadcrumbs {
		return nil
	}
	if len(crumbs) > maxBreadcrumbs {
		crumbs = crumbs[:maxBreadcrumbs]
	}

	combined := item.Title
	if item.Body != "" {
		combined += " " + item.Body
	}

	sector := ClassifySector(combined, e.cfg.Sectors)
	scores := e.scorer.Score(crumbs, sector, item)

	description := item.Body
	if description == "" {
		description = item.Title
	}

	return &types.Signal{
		Source:        item.Source,
		ExternalID:    item.ExternalID,
		Title:         item.Title,
		Description:   truncateRunes(description, maxBodyRunes),
		SourceURL:     item.URL,
		Sector:        sector,
		TollMechanism: IdentifyTollMechanism(combined, e.cfg.TollRules),
		Inevitability: scores.Inevitability,
		Moat:          scores.Moat,
		Timing:        scores.Timing,
		TotalScore:    scores.Total,
		Breadcrumbs:   crumbs,
		EarlyMovers:   ExtractEarlyMovers(combined),
		Status:        types.StatusActive,
	}
}
