package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopJob(ctx context.Context) error { return nil }

func TestNewRejectsBadTimezone(t *testing.T) {
	_, err := New("Not/AZone")
	assert.Error(t, err)

	s, err := New("UTC")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestAddScanJob(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)

	require.NoError(t, s.AddScanJob(60, noopJob))

	s.Start()
	defer s.Stop()

	assert.False(t, s.NextRun("scan").IsZero())
	assert.True(t, s.NextRun("unknown").IsZero())
}

func TestAddDigestJob(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)

	require.NoError(t, s.AddDigestJob("08:30", noopJob))
	assert.Error(t, s.AddDigestJob("8pm", noopJob))
}
