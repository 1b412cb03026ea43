// Package app wires the configuration, feed adapters, detection engine,
// gate, and store into scan cycles.
package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/tollgate/internal/config"
	"github.com/example/tollgate/internal/digest"
	"github.com/example/tollgate/internal/engine"
	"github.com/example/tollgate/internal/gate"
	"github.com/example/tollgate/internal/notifier"
	"github.com/example/tollgate/internal/sources"
	"github.com/example/tollgate/internal/store"
	"github.com/example/tollgate/internal/types"
)

// App holds the application state.
type App struct {
	cfg      *config.Config
	store    *store.Store
	engine   *engine.Engine
	gate     *gate.Gate
	adapters []sources.Adapter
}

// New creates an App from a validated config, opening the store.
func New(cfg *config.Config) (*App, error) {
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		store:    st,
		engine:   engine.New(cfg),
		gate:     gate.New(st, cfg.Scoring),
		adapters: sources.FromConfig(cfg),
	}, nil
}

// Store exposes the store for the API server and CLI views.
func (a *App) Store() *store.Store {
	return a.store
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// RunCycle executes one full scan: all adapters fetch concurrently, then
// their outputs are normalized, analyzed, and gated strictly in adapter
// order so near-duplicate detections within one cycle cannot race into two
// inserts. Per-item and per-source failures never abort the cycle.
func (a *App) RunCycle(ctx context.Context) (types.CycleSummary, error) {
	summary := types.CycleSummary{StartedAt: time.Now().UTC()}
	start := time.Now()

	log.Printf("[scan] starting cycle across %d sources", len(a.adapters))

	results := make([][]types.Payload, len(a.adapters))
	scanErrs := make([]error, len(a.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range a.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			payloads, err := adapter.Scan(gctx)
			results[i] = payloads
			scanErrs[i] = err
			return nil
		})
	}
	g.Wait()

	for i, adapter := range a.adapters {
		if scanErrs[i] != nil {
			log.Printf("[scan] warning: %v", scanErrs[i])
			summary.SourcesFailed++
			continue
		}

		fetchedAt := time.Now().UTC()
		for _, payload := range results[i] {
			if err := ctx.Err(); err != nil {
				// Aborted between items: whatever the gate committed stays.
				return summary, err
			}

			summary.Processed++

			item, err := engine.Normalize(payload, adapter.Name(), fetchedAt)
			if err != nil {
				summary.Malformed++
				continue
			}

			cand := a.engine.Analyze(item)
			if cand == nil {
				continue
			}

			res := a.gate.Ingest(cand)
			switch res.Outcome {
			case types.OutcomeCreated:
				summary.Created++
				log.Printf("[scan] new signal [%.1f] %s (%s)", res.Signal.TotalScore, res.Signal.Title, res.Signal.Sector)
			case types.OutcomeUpdated:
				summary.Updated++
			case types.OutcomeDiscarded:
				if res.Reason == types.DiscardBelowThreshold {
					summary.DiscardedBelowThreshold++
				} else {
					summary.DiscardedErrors++
				}
			}
		}
	}

	log.Printf("[scan] cycle done in %v: processed=%d created=%d updated=%d below_threshold=%d errors=%d malformed=%d sources_failed=%d",
		time.Since(start).Round(time.Millisecond), summary.Processed, summary.Created,
		summary.Updated, summary.DiscardedBelowThreshold, summary.DiscardedErrors,
		summary.Malformed, summary.SourcesFailed)

	return summary, nil
}

// SendDigest renders the signals first detected in the last 24 hours and
// delivers them by email when SMTP is configured.
func (a *App) SendDigest(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	signals, err := a.store.NewSince(cutoff)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		log.Println("[digest] no new signals in the last 24h, skipping")
		return nil
	}

	builder, err := digest.New(a.cfg.Digest.MaxSignals)
	if err != nil {
		return err
	}
	d, err := builder.Build(signals)
	if err != nil {
		return err
	}

	if a.cfg.Email.SMTPHost == "" || a.cfg.Email.ToAddr == "" {
		log.Printf("[digest] email not configured, skipping delivery of %q", d.Subject)
		return nil
	}

	n := notifier.NewFromConfig(a.cfg.Email)
	if err := n.SendDigest(d, a.cfg.Email.ToAddr); err != nil {
		return err
	}
	log.Printf("[digest] sent %q with %d signals", d.Subject, d.SignalCount)
	return nil
}
