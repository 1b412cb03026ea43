package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/example/tollgate/internal/types"
)

// Config holds all application configuration
type Config struct {
	Version   int            `toml:"version"`
	Scan      ScanConfig     `toml:"scan"`
	Scoring   ScoringConfig  `toml:"scoring"`
	Sources   SourcesConfig  `toml:"sources"`
	Patterns  []PatternGroup `toml:"patterns"`
	Sectors   []Sector       `toml:"sectors"`
	TollRules []TollRule     `toml:"toll_rules"`
	Database  DatabaseConfig `toml:"database"`
	Server    ServerConfig   `toml:"server"`
	Digest    DigestConfig   `toml:"digest"`
	Email     EmailConfig    `toml:"email"`
}

type ScanConfig struct {
	IntervalMinutes    int `toml:"interval_minutes"`
	MinBreadcrumbs     int `toml:"min_breadcrumbs"`
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

type ScoringConfig struct {
	InevitabilityWeight   float64  `toml:"inevitability_weight"`
	MoatWeight            float64  `toml:"moat_weight"`
	TimingWeight          float64  `toml:"timing_weight"`
	MinSignalScore        float64  `toml:"min_signal_score"`
	HighPriorityThreshold float64  `toml:"high_priority_threshold"`
	HighMoatSectors       []string `toml:"high_moat_sectors"`
}

type SourcesConfig struct {
	HackerNews SourceConfig `toml:"hackernews"`
	GitHub     SourceConfig `toml:"github"`
	Reddit     SourceConfig `toml:"reddit"`
	ArXiv      SourceConfig `toml:"arxiv"`
}

// SourceConfig is shared by all four adapters; Subreddits and Categories
// only apply to reddit and arxiv respectively.
type SourceConfig struct {
	Enabled             bool     `toml:"enabled"`
	MaxItems            int      `toml:"max_items"`
	PopularityThreshold float64  `toml:"popularity_threshold"`
	Subreddits          []string `toml:"subreddits,omitempty"`
	Categories          []string `toml:"categories,omitempty"`
}

// PatternGroup maps one detection category to its trigger phrases.
// Declaration order is meaningful and preserved.
type PatternGroup struct {
	Category string   `toml:"category"`
	Phrases  []string `toml:"phrases"`
}

// Sector is one row of the sector keyword table. Declaration order breaks
// classification ties.
type Sector struct {
	Name     string   `toml:"name"`
	Weight   float64  `toml:"weight"`
	Keywords []string `toml:"keywords"`
}

// TollRule maps trigger phrases to a toll mechanism. Rules are evaluated in
// declaration order, first match wins.
type TollRule struct {
	Mechanism string   `toml:"mechanism"`
	Phrases   []string `toml:"phrases"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DigestConfig struct {
	Enabled    bool   `toml:"enabled"`
	Time       string `toml:"time"` // "08:00"
	Timezone   string `toml:"timezone"`
	MaxSignals int    `toml:"max_signals"`
}

type EmailConfig struct {
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

// Error reports an invalid or missing configuration value. Configuration
// errors are fatal at startup, never mid-cycle.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			IntervalMinutes:    60,
			MinBreadcrumbs:     2,
			RequestTimeoutSecs: 10,
		},
		Scoring: ScoringConfig{
			InevitabilityWeight:   0.40,
			MoatWeight:            0.35,
			TimingWeight:          0.25,
			MinSignalScore:        7.0,
			HighPriorityThreshold: 8.5,
			HighMoatSectors:       []string{"AI Infrastructure", "Data Infrastructure"},
		},
		Sources: SourcesConfig{
			HackerNews: SourceConfig{Enabled: true, MaxItems: 30, PopularityThreshold: 200},
			GitHub:     SourceConfig{Enabled: true, MaxItems: 30, PopularityThreshold: 5000},
			Reddit: SourceConfig{
				Enabled:             true,
				MaxItems:            25,
				PopularityThreshold: 500,
				Subreddits:          []string{"programming", "devops", "startups"},
			},
			ArXiv: SourceConfig{
				Enabled:    true,
				MaxItems:   20,
				Categories: []string{"cs.DC", "cs.SE"},
			},
		},
		Patterns: []PatternGroup{
			{Category: types.CategoryAPIComplaints, Phrases: []string{
				"rate limit", "api pricing", "api cost", "per-request", "usage caps", "api deprecat",
			}},
			{Category: types.CategoryIntegrationPain, Phrases: []string{
				"integration nightmare", "doesn't integrate", "glue code", "fragmented tooling", "need unified", "no standard way",
			}},
			{Category: types.CategoryAdoptionSignals, Phrases: []string{
				"industry adoption", "becoming standard", "mandatory", "everyone is using", "widely adopted", "de facto",
			}},
			{Category: types.CategoryVCFunding, Phrases: []string{
				"series a", "series b", "seed round", "raised funding", "venture capital", "led by",
			}},
			{Category: types.CategoryMoatIndicators, Phrases: []string{
				"network effects", "switching costs", "proprietary data", "data advantage", "lock-in", "winner take",
			}},
			{Category: types.CategoryEmergingTech, Phrases: []string{
				"emerging", "just launched", "early adopters", "in beta", "new protocol", "first of its kind",
			}},
			{Category: types.CategoryMatureMarket, Phrases: []string{
				"established player", "legacy", "mature market", "dominant player", "industry giant", "incumbents",
			}},
		},
		Sectors: []Sector{
			{Name: "AI Infrastructure", Weight: 1.5, Keywords: []string{
				"llm", "gpu", "inference", "model serving", "vector database", "embedding", "fine-tuning",
			}},
			{Name: "Data Infrastructure", Weight: 1.3, Keywords: []string{
				"etl", "data pipeline", "warehouse", "streaming", "analytics", "lakehouse",
			}},
			{Name: "Developer Tools", Weight: 1.2, Keywords: []string{
				"sdk", "cli", "devops", "ci/cd", "observability", "debugging", "developer experience",
			}},
			{Name: "Fintech Rails", Weight: 1.1, Keywords: []string{
				"payments", "ledger", "settlement", "kyc", "banking api", "card issuing",
			}},
			{Name: "Supply Chain", Weight: 1.0, Keywords: []string{
				"logistics", "freight", "procurement", "fulfillment", "warehouse robotics",
			}},
		},
		TollRules: []TollRule{
			{Mechanism: string(types.TollAPI), Phrases: []string{"api", "per-request", "endpoint"}},
			{Mechanism: string(types.TollNetwork), Phrases: []string{"network", "transaction", "blockchain"}},
			{Mechanism: string(types.TollData), Phrases: []string{"data", "storage", "query"}},
			{Mechanism: string(types.TollPlatform), Phrases: []string{"platform", "marketplace", "revenue share"}},
			{Mechanism: string(types.TollProtocol), Phrases: []string{"protocol", "standard", "specification"}},
		},
		Database: DatabaseConfig{Path: defaultDBPath()},
		Server:   ServerConfig{Addr: "localhost:8080"},
		Digest: DigestConfig{
			Enabled:    false,
			Time:       "08:00",
			Timezone:   "Local",
			MaxSignals: 20,
		},
		Email: EmailConfig{SMTPPort: 587},
	}
}

// Validate checks the invariants the engine depends on. It fails fast so a
// bad weight set can never produce scores that look comparable to good runs.
func (c *Config) Validate() error {
	w := c.Scoring
	sum := w.InevitabilityWeight + w.MoatWeight + w.TimingWeight
	if math.Abs(sum-1.0) > 1e-6 {
		return &Error{Field: "scoring", Reason: fmt.Sprintf("weights must sum to 1.0, got %.4f", sum)}
	}
	if w.MinSignalScore < 0 || w.MinSignalScore > 10 {
		return &Error{Field: "scoring.min_signal_score", Reason: fmt.Sprintf("must be within [0,10], got %.2f", w.MinSignalScore)}
	}
	if w.HighPriorityThreshold < 0 || w.HighPriorityThreshold > 10 {
		return &Error{Field: "scoring.high_priority_threshold", Reason: fmt.Sprintf("must be within [0,10], got %.2f", w.HighPriorityThreshold)}
	}
	if w.HighPriorityThreshold < w.MinSignalScore {
		return &Error{Field: "scoring.high_priority_threshold", Reason: "must not be below min_signal_score"}
	}

	if len(c.Patterns) == 0 {
		return &Error{Field: "patterns", Reason: "at least one pattern group is required"}
	}
	seenCat := make(map[string]bool)
	for i, g := range c.Patterns {
		if g.Category == "" {
			return &Error{Field: fmt.Sprintf("patterns[%d].category", i), Reason: "must not be empty"}
		}
		if seenCat[g.Category] {
			return &Error{Field: fmt.Sprintf("patterns[%d].category", i), Reason: fmt.Sprintf("duplicate category %q", g.Category)}
		}
		seenCat[g.Category] = true
		if len(g.Phrases) == 0 {
			return &Error{Field: fmt.Sprintf("patterns[%d].phrases", i), Reason: "must not be empty"}
		}
	}

	if len(c.Sectors) == 0 {
		return &Error{Field: "sectors", Reason: "at least one sector is required"}
	}
	seenSec := make(map[string]bool)
	for i, s := range c.Sectors {
		if s.Name == "" {
			return &Error{Field: fmt.Sprintf("sectors[%d].name", i), Reason: "must not be empty"}
		}
		if seenSec[s.Name] {
			return &Error{Field: fmt.Sprintf("sectors[%d].name", i), Reason: fmt.Sprintf("duplicate sector %q", s.Name)}
		}
		seenSec[s.Name] = true
		if s.Weight <= 0 {
			return &Error{Field: fmt.Sprintf("sectors[%d].weight", i), Reason: "must be positive"}
		}
	}

	for i, r := range c.TollRules {
		if !types.ValidTollMechanism(r.Mechanism) {
			return &Error{Field: fmt.Sprintf("toll_rules[%d].mechanism", i), Reason: fmt.Sprintf("unknown mechanism %q", r.Mechanism)}
		}
	}

	if c.Scan.IntervalMinutes < 1 {
		return &Error{Field: "scan.interval_minutes", Reason: "must be at least 1"}
	}
	if c.Scan.MinBreadcrumbs < 1 {
		return &Error{Field: "scan.min_breadcrumbs", Reason: "must be at least 1"}
	}
	if c.Scan.RequestTimeoutSecs < 1 {
		return &Error{Field: "scan.request_timeout_secs", Reason: "must be at least 1"}
	}
	if c.Database.Path == "" {
		return &Error{Field: "database.path", Reason: "must not be empty"}
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tollgate"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func defaultDBPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return "tollgate.db"
	}
	return filepath.Join(dir, "tollgate.db")
}

// Load reads config from the default path on disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads config from an explicit path
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the default path on disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
