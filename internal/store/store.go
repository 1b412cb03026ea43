// Package store persists signals in SQLite and answers the query shapes the
// dashboard and CLI need. It is the only durable state in the system.
package store

import (
	"database/sql"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/tollgate/internal/types"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		external_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		source_url TEXT,
		sector TEXT NOT NULL,
		toll_mechanism TEXT NOT NULL,
		inevitability_score REAL NOT NULL,
		moat_score REAL NOT NULL,
		timing_score REAL NOT NULL,
		total_score REAL NOT NULL,
		breadcrumbs TEXT,
		early_movers TEXT,
		is_watchlisted BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		first_detected_at DATETIME NOT NULL,
		last_seen_at DATETIME NOT NULL,
		UNIQUE(source, external_id)
	);

	CREATE TABLE IF NOT EXISTS signal_updates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_id INTEGER NOT NULL REFERENCES signals(id),
		recorded_at DATETIME NOT NULL,
		total_score REAL NOT NULL,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_signals_score ON signals(total_score DESC);
	CREATE INDEX IF NOT EXISTS idx_signals_sector ON signals(sector);
	CREATE INDEX IF NOT EXISTS idx_signals_first_detected ON signals(first_detected_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// IsUniqueViolation reports whether err is a dedup-key constraint failure.
// The gate relies on this to turn a racing insert into an update.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const signalColumns = `id, source, external_id, title, description, source_url,
	sector, toll_mechanism, inevitability_score, moat_score, timing_score,
	total_score, breadcrumbs, early_movers, is_watchlisted, status,
	first_detected_at, last_seen_at`

// GetByDedupKey fetches a signal by its (source, external id) pair.
// Returns (nil, nil) when no such signal exists.
func (s *Store) GetByDedupKey(source types.Source, externalID string) (*types.Signal, error) {
	row := s.db.QueryRow(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE source = ? AND external_id = ?
	`, string(source), externalID)

	sig, err := scanSignalRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// Insert writes a new signal and fills in its store-assigned ID. A UNIQUE
// violation is returned as-is for the caller to detect.
func (s *Store) Insert(sig *types.Signal) error {
	crumbsJSON, _ := json.Marshal(sig.Breadcrumbs)
	moversJSON, _ := json.Marshal(sig.EarlyMovers)

	res, err := s.db.Exec(`
		INSERT INTO signals (source, external_id, title, description, source_url,
			sector, toll_mechanism, inevitability_score, moat_score, timing_score,
			total_score, breadcrumbs, early_movers, is_watchlisted, status,
			first_detected_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(sig.Source), sig.ExternalID, sig.Title, sig.Description, sig.SourceURL,
		sig.Sector, string(sig.TollMechanism), sig.Inevitability, sig.Moat, sig.Timing,
		sig.TotalScore, string(crumbsJSON), string(moversJSON), sig.IsWatchlisted, sig.Status,
		sig.FirstDetectedAt, sig.LastSeenAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sig.ID = id
	return nil
}

// Update rewrites a signal's mutable fields by ID. The breadcrumb and early
// mover sets are fully replaced, never merged.
func (s *Store) Update(sig *types.Signal) error {
	crumbsJSON, _ := json.Marshal(sig.Breadcrumbs)
	moversJSON, _ := json.Marshal(sig.EarlyMovers)

	_, err := s.db.Exec(`
		UPDATE signals SET
			title = ?, description = ?, source_url = ?, sector = ?,
			toll_mechanism = ?, inevitability_score = ?, moat_score = ?,
			timing_score = ?, total_score = ?, breadcrumbs = ?, early_movers = ?,
			is_watchlisted = ?, last_seen_at = ?
		WHERE id = ?
	`, sig.Title, sig.Description, sig.SourceURL, sig.Sector,
		string(sig.TollMechanism), sig.Inevitability, sig.Moat,
		sig.Timing, sig.TotalScore, string(crumbsJSON), string(moversJSON),
		sig.IsWatchlisted, sig.LastSeenAt, sig.ID)
	return err
}

// RecordScoreChange appends a score history row for a signal.
func (s *Store) RecordScoreChange(signalID int64, totalScore float64, notes string) error {
	_, err := s.db.Exec(`
		INSERT INTO signal_updates (signal_id, recorded_at, total_score, notes)
		VALUES (?, ?, ?, ?)
	`, signalID, time.Now().UTC(), totalScore, notes)
	return err
}

// ScoreHistory returns the recorded score changes for a signal, oldest first.
func (s *Store) ScoreHistory(signalID int64) ([]ScoreChange, error) {
	rows, err := s.db.Query(`
		SELECT recorded_at, total_score, notes
		FROM signal_updates
		WHERE signal_id = ?
		ORDER BY recorded_at ASC
	`, signalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []ScoreChange
	for rows.Next() {
		var c ScoreChange
		if err := rows.Scan(&c.RecordedAt, &c.TotalScore, &c.Notes); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// TopSignals returns active signals ordered by total score descending.
func (s *Store) TopSignals(limit int) ([]types.Signal, error) {
	rows, err := s.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE status = 'active'
		ORDER BY total_score DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// HighPriority returns active signals at or above the threshold.
func (s *Store) HighPriority(threshold float64) ([]types.Signal, error) {
	rows, err := s.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE status = 'active' AND total_score >= ?
		ORDER BY total_score DESC
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// BySector returns active signals for one sector, best first.
func (s *Store) BySector(sector string) ([]types.Signal, error) {
	rows, err := s.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE status = 'active' AND sector = ?
		ORDER BY total_score DESC
	`, sector)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// Watchlist returns watchlisted active signals, best first.
func (s *Store) Watchlist() ([]types.Signal, error) {
	rows, err := s.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE status = 'active' AND is_watchlisted = 1
		ORDER BY total_score DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// NewSince returns active signals first detected after the cutoff, best
// first. Feeds the daily digest.
func (s *Store) NewSince(cutoff time.Time) ([]types.Signal, error) {
	rows, err := s.db.Query(`
		SELECT `+signalColumns+`
		FROM signals
		WHERE status = 'active' AND first_detected_at > ?
		ORDER BY total_score DESC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSignals(rows)
}

// SectorStat aggregates active signals for one sector.
type SectorStat struct {
	Sector   string  `json:"sector"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
	MaxScore float64 `json:"max_score"`
}

// SectorStats returns per-sector aggregates, highest average first.
func (s *Store) SectorStats() ([]SectorStat, error) {
	rows, err := s.db.Query(`
		SELECT sector, COUNT(*), AVG(total_score), MAX(total_score)
		FROM signals
		WHERE status = 'active'
		GROUP BY sector
		ORDER BY AVG(total_score) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SectorStat
	for rows.Next() {
		var st SectorStat
		if err := rows.Scan(&st.Sector, &st.Count, &st.AvgScore, &st.MaxScore); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// DashboardStats is the read-only snapshot the reporting layer consumes,
// derived purely from store contents.
type DashboardStats struct {
	ActiveSignals int     `json:"active_signals_count"`
	AvgScore      float64 `json:"average_score"`
	HighPriority  int     `json:"high_priority_count"`
	HiddenGems    int     `json:"hidden_gem_count"`
	NewIn24h      int     `json:"new_in_24h_count"`
}

// Dashboard computes the snapshot. Hidden gems sit in the one-point band
// below the high-priority threshold.
func (s *Store) Dashboard(highPriority float64, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	gemFloor := highPriority - 1.0
	cutoff := now.Add(-24 * time.Hour)

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(AVG(total_score), 0),
			COALESCE(SUM(CASE WHEN total_score >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN total_score >= ? AND total_score < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN first_detected_at > ? THEN 1 ELSE 0 END), 0)
		FROM signals
		WHERE status = 'active'
	`, highPriority, gemFloor, highPriority, cutoff).Scan(
		&stats.ActiveSignals, &stats.AvgScore, &stats.HighPriority,
		&stats.HiddenGems, &stats.NewIn24h)
	if err != nil {
		return DashboardStats{}, err
	}

	stats.AvgScore = math.Round(stats.AvgScore*10) / 10
	return stats, nil
}

// SetWatchlisted flags a signal as watchlisted (manual add path).
func (s *Store) SetWatchlisted(id int64) error {
	_, err := s.db.Exec(`UPDATE signals SET is_watchlisted = 1 WHERE id = ?`, id)
	return err
}

// Archive marks a signal inactive. Never called by the engine itself.
func (s *Store) Archive(id int64) error {
	_, err := s.db.Exec(`UPDATE signals SET status = 'archived' WHERE id = ?`, id)
	return err
}

// ScoreChange is one row of a signal's score history.
type ScoreChange struct {
	RecordedAt time.Time `json:"recorded_at"`
	TotalScore float64   `json:"total_score"`
	Notes      string    `json:"notes"`
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignalRow(row rowScanner) (*types.Signal, error) {
	var sig types.Signal
	var source string
	var toll string
	var crumbsJSON, moversJSON string

	err := row.Scan(
		&sig.ID, &source, &sig.ExternalID, &sig.Title, &sig.Description,
		&sig.SourceURL, &sig.Sector, &toll, &sig.Inevitability, &sig.Moat,
		&sig.Timing, &sig.TotalScore, &crumbsJSON, &moversJSON,
		&sig.IsWatchlisted, &sig.Status, &sig.FirstDetectedAt, &sig.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	sig.Source = types.Source(source)
	sig.TollMechanism = types.TollMechanism(toll)
	json.Unmarshal([]byte(crumbsJSON), &sig.Breadcrumbs)
	json.Unmarshal([]byte(moversJSON), &sig.EarlyMovers)
	return &sig, nil
}

func scanSignals(rows *sql.Rows) ([]types.Signal, error) {
	var signals []types.Signal
	for rows.Next() {
		sig, err := scanSignalRow(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, *sig)
	}
	return signals, rows.Err()
}
