package expander_test

import (
	"math"
	"sync"
	"testing"
	"time"
	"unshorten/internal/expander"

	"github.com/stretchr/testify/require"
)

func TestStats_SnapshotCounts(t *testing.T) {
	s := expander.NewStats()

	s.RecordIgnored()
	s.RecordIgnored()
	s.RecordCacheHit()
	s.RecordResolved(10 * time.Millisecond)
	s.RecordCached()
	s.RecordUnchanged(20 * time.Millisecond)
	s.RecordFailure(30*time.Millisecond, false)
	s.RecordFailure(40*time.Millisecond, true)

	snap := s.Snapshot()
	require.EqualValues(t, 2, snap.Ignored)
	require.EqualValues(t, 1, snap.CacheHits)
	require.EqualValues(t, 1, snap.Expanded)
	require.EqualValues(t, 1, snap.Cached)
	require.EqualValues(t, 1, snap.Unchanged)
	require.EqualValues(t, 2, snap.Failures)
	require.EqualValues(t, 1, snap.Timeouts)
	require.EqualValues(t, 7, snap.Processed())

	require.Equal(t, 4, snap.ElapsedAll.Count, "success and failure both sample latency")
	require.Equal(t, 1, snap.ElapsedChanged.Count, "only changed URLs sample the expanded sequence")
}

func TestStats_Reset(t *testing.T) {
	s := expander.NewStats()
	s.RecordResolved(time.Millisecond)
	s.RecordFailure(time.Millisecond, true)

	s.Reset()

	snap := s.Snapshot()
	require.EqualValues(t, 0, snap.Processed())
	require.EqualValues(t, 0, snap.Timeouts)
	require.Equal(t, 0, snap.ElapsedAll.Count)
	require.Equal(t, 0, snap.ElapsedChanged.Count)
}

func TestLatencySummary_MeanAndStdev(t *testing.T) {
	s := expander.NewStats()
	s.RecordResolved(10 * time.Millisecond)
	s.RecordResolved(20 * time.Millisecond)
	s.RecordResolved(30 * time.Millisecond)

	snap := s.Snapshot()
	require.InDelta(t, 20.0, snap.ElapsedChanged.MeanMs, 1e-9)
	// sample stdev of {10, 20, 30} is 10
	require.InDelta(t, 10.0, snap.ElapsedChanged.StdevMs, 1e-9)
	require.Equal(t, "20.00±10.00 ms", snap.ElapsedChanged.String())
}

func TestLatencySummary_SingleSampleHasNaNStdev(t *testing.T) {
	s := expander.NewStats()
	s.RecordResolved(15 * time.Millisecond)

	snap := s.Snapshot()
	require.InDelta(t, 15.0, snap.ElapsedChanged.MeanMs, 1e-9)
	require.True(t, math.IsNaN(snap.ElapsedChanged.StdevMs), "one sample has no spread")
}

func TestLatencySummary_EmptyRendersNA(t *testing.T) {
	s := expander.NewStats()
	snap := s.Snapshot()
	require.Equal(t, "N/A", snap.ElapsedAll.String())
	require.Equal(t, "N/A", snap.ElapsedChanged.String())
}

func TestStats_ConcurrentRecording(t *testing.T) {
	s := expander.NewStats()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordResolved(time.Millisecond)
			s.RecordFailure(time.Millisecond, true)
			s.RecordIgnored()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.EqualValues(t, workers, snap.Expanded)
	require.EqualValues(t, workers, snap.Failures)
	require.EqualValues(t, workers, snap.Timeouts)
	require.EqualValues(t, workers, snap.Ignored)
	require.Equal(t, 2*workers, snap.ElapsedAll.Count)
	require.Equal(t, workers, snap.ElapsedChanged.Count)
}
