package engine

import (
	"math"
	"strings"
	"unicode"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/types"
)

// Axis base values and bonuses. Each axis is a base plus additive bonuses
// gated on category presence, clamped to [0,100].
const (
	inevitabilityBase    = 50.0
	inevitabilityPain    = 15.0
	inevitabilityAdopt   = 15.0
	inevitabilityPopular = 10.0

	moatBase       = 40.0
	moatIndicators = 20.0
	moatFunding    = 15.0
	moatSector     = 10.0

	timingBase     = 60.0
	timingMature   = 20.0
	timingEmerging = 15.0
)

// Scores holds the three axis values (0-100) and the weighted composite
// (0-10, one decimal).
type Scores struct {
	Inevitability float64
	Moat          float64
	Timing        float64
	Total         float64
}

// Scorer computes axis and composite scores from breadcrumb categories and
// item heuristics. All tunables come from the configuration.
type Scorer struct {
	scoring config.ScoringConfig
	sources config.SourcesConfig
}

// NewScorer creates a Scorer. The config is assumed validated; in
// particular the axis weights sum to 1.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{scoring: cfg.Scoring, sources: cfg.Sources}
}

// Score computes the three axes and the composite for one item.
func (s *Scorer) Score(crumbs []types.Breadcrumb, sector string, item types.RawItem) Scores {
	inevitability := inevitabilityBase
	if hasCategory(crumbs, types.CategoryAPIComplaints) || hasCategory(crumbs, types.CategoryIntegrationPain) {
		inevitability += inevitabilityPain
	}
	if hasCategory(crumbs, types.CategoryAdoptionSignals) {
		inevitability += inevitabilityAdopt
	}
	if item.HasRawScore && item.RawScore > s.popularityThreshold(item.Source) {
		inevitability += inevitabilityPopular
	}

	moat := moatBase
	if hasCategory(crumbs, types.CategoryMoatIndicators) {
		moat += moatIndicators
	}
	if hasCategory(crumbs, types.CategoryVCFunding) {
		moat += moatFunding
	}
	if s.isHighMoatSector(sector) {
		moat += moatSector
	}

	timing := timingBase
	if hasCategory(crumbs, types.CategoryMatureMarket) {
		timing -= timingMature
	}
	if hasCategory(crumbs, types.CategoryEmergingTech) {
		timing += timingEmerging
	}

	inevitability = clamp(inevitability, 0, 100)
	moat = clamp(moat, 0, 100)
	timing = clamp(timing, 0, 100)

	return Scores{
		Inevitability: inevitability,
		Moat:          moat,
		Timing:        timing,
		Total:         s.Composite(inevitability, moat, timing),
	}
}

// Composite applies the configured axis weights, scales to 0-10, and rounds
// to one decimal. This is the only place the total is ever computed.
func (s *Scorer) Composite(inevitability, moat, timing float64) float64 {
	w := s.scoring
	total := (inevitability*w.InevitabilityWeight + moat*w.MoatWeight + timing*w.TimingWeight) / 10
	total = math.Round(total*10) / 10
	return clamp(total, 0, 10)
}

func (s *Scorer) popularityThreshold(source types.Source) float64 {
	switch source {
	case types.SourceForum:
		return s.sources.HackerNews.PopularityThreshold
	case types.SourceRepo:
		return s.sources.GitHub.PopularityThreshold
	case types.SourceAggregator:
		return s.sources.Reddit.PopularityThreshold
	case types.SourcePaper:
		return s.sources.ArXiv.PopularityThreshold
	}
	return 0
}

func (s *Scorer) isHighMoatSector(sector string) bool {
	for _, name := range s.scoring.HighMoatSectors {
		if name == sector {
			return true
		}
	}
	return false
}

// IdentifyTollMechanism runs the ordered toll rules over the combined text,
// first match wins.
func IdentifyTollMechanism(text string, rules []config.TollRule) types.TollMechanism {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, phrase := range r.Phrases {
			p := strings.ToLower(strings.TrimSpace(phrase))
			if p == "" {
				continue
			}
			if strings.Contains(lower, p) {
				return types.TollMechanism(r.Mechanism)
			}
		}
	}
	return types.TollUnclassified
}

const maxEarlyMovers = 5

// ExtractEarlyMovers pulls capitalized tokens of 3-20 letters from the text
// as candidate company/project names. Best-effort annotation only; the
// result never influences whether a signal is saved.
func ExtractEarlyMovers(text string) []string {
	seen := make(map[string]bool)
	var movers []string
	for _, word := range strings.Fields(text) {
		token := stripNonAlnum(word)
		if len([]rune(token)) < 3 || len([]rune(token)) > 20 {
			continue
		}
		if !unicode.IsUpper([]rune(token)[0]) {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		movers = append(movers, token)
		if len(movers) == maxEarlyMovers {
			break
		}
	}
	return movers
}

func stripNonAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
