package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "exact sum",
			mutate: func(c *Config) {},
		},
		{
			name: "sum below one",
			mutate: func(c *Config) {
				c.Scoring.InevitabilityWeight = 0.30
			},
			wantErr: true,
		},
		{
			name: "sum above one",
			mutate: func(c *Config) {
				c.Scoring.TimingWeight = 0.50
			},
			wantErr: true,
		},
		{
			name: "within float tolerance",
			mutate: func(c *Config) {
				c.Scoring.InevitabilityWeight = 0.40000000001
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				var cerr *Error
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, "scoring", cerr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateThresholds(t *testing.T) {
	cfg := Default()
	cfg.Scoring.MinSignalScore = 10.5
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scoring.HighPriorityThreshold = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scoring.MinSignalScore = 8.0
	cfg.Scoring.HighPriorityThreshold = 7.0
	err := cfg.Validate()
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "scoring.high_priority_threshold", cerr.Field)
}

func TestValidatePatternsAndSectors(t *testing.T) {
	cfg := Default()
	cfg.Patterns = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Patterns = append(cfg.Patterns, PatternGroup{
		Category: cfg.Patterns[0].Category,
		Phrases:  []string{"dup"},
	})
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Patterns[0].Phrases = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sectors = nil
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sectors[1].Weight = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sectors = append(cfg.Sectors, Sector{Name: cfg.Sectors[0].Name, Weight: 1})
	require.Error(t, cfg.Validate())
}

func TestValidateTollRules(t *testing.T) {
	cfg := Default()
	cfg.TollRules[0].Mechanism = "Subscription"
	err := cfg.Validate()
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "toll_rules[0].mechanism", cerr.Field)
}

func TestValidateScan(t *testing.T) {
	cfg := Default()
	cfg.Scan.IntervalMinutes = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scan.MinBreadcrumbs = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.Path = ""
	require.Error(t, cfg.Validate())
}

func TestLoadFileRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/tmp/tollgate-test.db"

	path := filepath.Join(t.TempDir(), "config.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, toml.NewEncoder(f).Encode(cfg))
	require.NoError(t, f.Close())

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Scoring, loaded.Scoring)
	assert.Equal(t, cfg.Scan, loaded.Scan)
	assert.Equal(t, cfg.Database.Path, loaded.Database.Path)

	// Array-of-tables ordering must survive the round trip: pattern and
	// sector declaration order is meaningful.
	require.Equal(t, len(cfg.Patterns), len(loaded.Patterns))
	for i := range cfg.Patterns {
		assert.Equal(t, cfg.Patterns[i].Category, loaded.Patterns[i].Category)
	}
	require.Equal(t, len(cfg.Sectors), len(loaded.Sectors))
	for i := range cfg.Sectors {
		assert.Equal(t, cfg.Sectors[i].Name, loaded.Sectors[i].Name)
	}
	assert.NoError(t, loaded.Validate())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
