package types

import "time"

// Source identifies which feed produced an item.
type Source string

const (
	SourceForum      Source = "forum"      // Hacker News top stories
	SourceRepo       Source = "repo"       // GitHub high-star repositories
	SourceAggregator Source = "aggregator" // Reddit hot posts
	SourcePaper      Source = "paper"      // arXiv abstracts
)

// TollMechanism is the classified monetization channel for a detected
// chokepoint. Unlike breadcrumb categories and sectors, this set is closed.
type TollMechanism string

const (
	TollAPI          TollMechanism = "API"
	TollNetwork      TollMechanism = "Network"
	TollData         TollMechanism = "Data"
	TollPlatform     TollMechanism = "Platform"
	TollProtocol     TollMechanism = "Protocol"
	TollUnclassified TollMechanism = "Unclassified"
)

// ValidTollMechanism reports whether s names a known toll mechanism.
func ValidTollMechanism(s string) bool {
	switch TollMechanism(s) {
	case TollAPI, TollNetwork, TollData, TollPlatform, TollProtocol, TollUnclassified:
		return true
	}
	return false
}

// Breadcrumb categories the scorer keys on. The pattern dictionary itself is
// open-ended (config-driven); any other category still produces breadcrumbs,
// it just carries no score bonus.
const (
	CategoryAPIComplaints   = "api_complaints"
	CategoryIntegrationPain = "integration_pain"
	CategoryAdoptionSignals = "adoption_signals"
	CategoryVCFunding       = "vc_funding"
	CategoryMoatIndicators  = "moat_indicators"
	CategoryEmergingTech    = "emerging_tech"
	CategoryMatureMarket    = "mature_market"
)

// SourceField records which text field a breadcrumb phrase matched in.
type SourceField string

const (
	FieldTitle SourceField = "title"
	FieldBody  SourceField = "body"
)

// Payload is the loose record a feed adapter returns. Normalization decides
// whether it is usable; adapters only copy fields over.
type Payload struct {
	ExternalID  string
	Title       string
	Body        string
	URL         string
	PublishedAt time.Time // zero when the feed did not supply one
	RawScore    float64
	HasRawScore bool
}

// RawItem is the canonical form of one fetched feed entry. It lives for a
// single scan cycle and is never persisted.
type RawItem struct {
	Source      Source
	ExternalID  string
	Title       string
	Body        string
	URL         string
	PublishedAt time.Time
	RawScore    float64
	HasRawScore bool
}

// Breadcrumb is a single phrase-match event linking text to a detection
// category.
type Breadcrumb struct {
	Category      string      `json:"category"`
	MatchedPhrase string      `json:"matched_phrase"`
	SourceField   SourceField `json:"source_field"`
}

// Signal statuses. The engine only ever writes "active"; archiving is a
// manual operation through the API or CLI.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Signal is the persisted unit: a scored infrastructure chokepoint
// candidate. (Source, ExternalID) is the dedup key, unique in the store.
type Signal struct {
	ID              int64         `json:"id"`
	Source          Source        `json:"source"`
	ExternalID      string        `json:"external_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	SourceURL       string        `json:"source_url"`
	Sector          string        `json:"sector"`
	TollMechanism   TollMechanism `json:"toll_mechanism"`
	Inevitability   float64       `json:"inevitability_score"`
	Moat            float64       `json:"moat_score"`
	Timing          float64       `json:"timing_score"`
	TotalScore      float64       `json:"total_score"`
	Breadcrumbs     []Breadcrumb  `json:"breadcrumbs"`
	EarlyMovers     []string      `json:"early_movers"`
	IsWatchlisted   bool          `json:"is_watchlisted"`
	Status          string        `json:"status"`
	FirstDetectedAt time.Time     `json:"first_detected_at"`
	LastSeenAt      time.Time     `json:"last_seen_at"`
}

// DedupKey returns the string form of the (source, external id) pair.
func (s *Signal) DedupKey() string {
	return string(s.Source) + ":" + s.ExternalID
}

// Outcome of one gate ingestion.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDiscarded Outcome = "discarded"
)

// DiscardReason explains a discarded candidate.
type DiscardReason string

const (
	DiscardBelowThreshold DiscardReason = "below_threshold"
	DiscardWriteFailed    DiscardReason = "write_failed"
)

// CycleSummary tallies one scan cycle so operators can tell a quiet feed
// from a broken adapter.
type CycleSummary struct {
	StartedAt               time.Time `json:"started_at"`
	Processed               int       `json:"processed"`
	Created                 int       `json:"created"`
	Updated                 int       `json:"updated"`
	DiscardedBelowThreshold int       `json:"discarded_below_threshold"`
	DiscardedErrors         int       `json:"discarded_errors"`
	Malformed               int       `json:"malformed"`
	SourcesFailed           int       `json:"sources_failed"`
}
