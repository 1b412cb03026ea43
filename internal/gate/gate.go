// Package gate is the engine's single write path to the store. It decides
// whether a scored candidate is new, updates an existing signal, or is
// discarded, and it is the only place the minimum-score and auto-watchlist
// rules are enforced.
package gate

import (
	"log"
	"time"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/store"
	"github.com/example/tollgate/internal/types"
)

// Result is the outcome of ingesting one candidate.
type Result struct {
	Outcome types.Outcome
	Reason  types.DiscardReason // set only for discards
	Signal  *types.Signal
}

// Gate deduplicates and persists scored candidates.
type Gate struct {
	store        *store.Store
	minScore     float64
	highPriority float64
	now          func() time.Time
}

// New creates a Gate over the given store using the validated scoring
// thresholds.
func New(st *store.Store, scoring config.ScoringConfig) *Gate {
	return &Gate{
		store:        st,
		minScore:     scoring.MinSignalScore,
		highPriority: scoring.HighPriorityThreshold,
		now:          time.Now,
	}
}

// Ingest applies the dedup/persistence contract to one candidate. Write
// failures are reported as discards; they never abort the cycle and are
// not retried within it.
func (g *Gate) Ingest(cand *types.Signal) Result {
	existing, err := g.store.GetByDedupKey(cand.Source, cand.ExternalID)
	if err != nil {
		log.Printf("[gate] lookup failed for %s: %v", cand.DedupKey(), err)
		return Result{Outcome: types.OutcomeDiscarded, Reason: types.DiscardWriteFailed, Signal: cand}
	}

	if existing == nil {
		// Inclusive lower bound: a candidate exactly at the minimum is saved.
		if cand.TotalScore < g.minScore {
			return Result{Outcome: types.OutcomeDiscarded, Reason: types.DiscardBelowThreshold, Signal: cand}
		}

		now := g.now().UTC()
		cand.FirstDetectedAt = now
		cand.LastSeenAt = now
		cand.Status = types.StatusActive
		cand.IsWatchlisted = cand.TotalScore >= g.highPriority

		if err := g.store.Insert(cand); err != nil {
			if store.IsUniqueViolation(err) {
				// Lost an insert race; re-read and take the update path.
				existing, rerr := g.store.GetByDedupKey(cand.Source, cand.ExternalID)
				if rerr == nil && existing != nil {
					return g.update(existing, cand)
				}
			}
			log.Printf("[gate] insert failed for %s: %v", cand.DedupKey(), err)
			return Result{Outcome: types.OutcomeDiscarded, Reason: types.DiscardWriteFailed, Signal: cand}
		}
		return Result{Outcome: types.OutcomeCreated, Signal: cand}
	}

	return g.update(existing, cand)
}

// update refreshes an existing signal from a fresh candidate. The new
// breadcrumb set fully replaces the old one; watchlist promotion is
// monotonic and never reversed here.
func (g *Gate) update(existing, cand *types.Signal) Result {
	scoreChanged := existing.TotalScore != cand.TotalScore

	existing.Title = cand.Title
	existing.Description = cand.Description
	existing.SourceURL = cand.SourceURL
	existing.Sector = cand.Sector
	existing.TollMechanism = cand.TollMechanism
	existing.Inevitability = cand.Inevitability
	existing.Moat = cand.Moat
	existing.Timing = cand.Timing
	existing.TotalScore = cand.TotalScore
	existing.Breadcrumbs = cand.Breadcrumbs
	existing.EarlyMovers = cand.EarlyMovers
	existing.LastSeenAt = g.now().UTC()
	if !existing.IsWatchlisted && cand.TotalScore >= g.highPriority {
		existing.IsWatchlisted = true
	}

	if err := g.store.Update(existing); err != nil {
		log.Printf("[gate] update failed for %s: %v", existing.DedupKey(), err)
		return Result{Outcome: types.OutcomeDiscarded, Reason: types.DiscardWriteFailed, Signal: existing}
	}

	if scoreChanged {
		if err := g.store.RecordScoreChange(existing.ID, existing.TotalScore, "rescored on re-detection"); err != nil {
			log.Printf("[gate] score history write failed for %s: %v", existing.DedupKey(), err)
		}
	}

	return Result{Outcome: types.OutcomeUpdated, Signal: existing}
}
