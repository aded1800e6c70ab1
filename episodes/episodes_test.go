package episodes

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecorder(t *testing.T) *Recorder {
	mr := miniredis.RunT(t)
	return NewRecorder(mr.Addr(), "episodes:test")
}

func TestRecordAndRecent(t *testing.T) {
	r := setupRecorder(t)

	err := r.Record(Episode{
		Query:    "lofi hip hop mix",
		Outcome:  "activated",
		Tier:     "feed",
		Title:    "Lofi Hip Hop Mix - Study Beats",
		Score:    0.92,
		Duration: "1.2s",
	})
	require.NoError(t, err)

	err = r.Record(Episode{Query: "unknown video", Outcome: "not_found", Scrolls: 3, Duration: "9.8s"})
	require.NoError(t, err)

	eps, err := r.Recent(10)
	require.NoError(t, err)
	require.Len(t, eps, 2)

	// Newest first.
	assert.Equal(t, "unknown video", eps[0].Query)
	assert.Equal(t, "activated", eps[1].Outcome)
	assert.Equal(t, 0.92, eps[1].Score)
	assert.False(t, eps[0].Timestamp.IsZero())
}

func TestRecordTrimsHistory(t *testing.T) {
	r := setupRecorder(t)
	r.maxKeep = 5

	for i := 0; i < 8; i++ {
		require.NoError(t, r.Record(Episode{Query: "q", Outcome: "not_found", Timestamp: time.Now()}))
	}

	eps, err := r.Recent(100)
	require.NoError(t, err)
	assert.Len(t, eps, 5)
}
