// Package scheduler runs the periodic scan cycle and the daily digest on a
// cron backend.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run. A wedged feed must not block the
// next cycle forever.
const jobTimeout = 30 * time.Minute

// Job is one schedulable unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps cron with named jobs so callers can ask when a job fires
// next.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
}

// New creates a Scheduler running in the given timezone ("Local", "UTC",
// or an IANA name).
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make(map[string]cron.EntryID),
	}, nil
}

// AddScanJob schedules the detection cycle every intervalMinutes.
func (s *Scheduler) AddScanJob(intervalMinutes int, job Job) error {
	return s.add("scan", fmt.Sprintf("@every %dm", intervalMinutes), job)
}

// AddDigestJob schedules the daily digest at a wall-clock time like "08:00".
func (s *Scheduler) AddDigestJob(timeStr string, job Job) error {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return fmt.Errorf("invalid time format %s: %w", timeStr, err)
	}
	return s.add("digest", fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), job)
}

func (s *Scheduler) add(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			log.Printf("[scheduler] job %s failed: %v", name, err)
			return
		}
		log.Printf("[scheduler] job %s completed in %v", name, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Printf("[scheduler] added job %s (%s)", name, schedule)
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRun returns when the named job fires next, or zero if unknown.
func (s *Scheduler) NextRun(name string) time.Time {
	entryID, ok := s.jobs[name]
	if !ok {
		return time.Time{}
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == entryID {
			return entry.Next
		}
	}
	return time.Time{}
}
