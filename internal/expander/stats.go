package expander

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
	"unshorten/pkg/logger"

	"go.uber.org/zap"
)

// Stats accumulates outcome counts and latency samples for one batch run.
// Counters are atomic and commutative, so completing tasks update them
// without coordination; the sample slices take a short lock per append.
//
// A Stats value is owned by its Engine and reset at the start of every run.
// It is safe to read a Snapshot after Run returns, including after an early
// termination.
type Stats struct {
	ignored   atomic.Int64
	cacheHits atomic.Int64
	cached    atomic.Int64
	expanded  atomic.Int64
	unchanged atomic.Int64
	failures  atomic.Int64
	timeouts  atomic.Int64

	mu             sync.Mutex
	elapsedAll     []time.Duration
	elapsedChanged []time.Duration
}

// NewStats creates an empty Stats value.
func NewStats() *Stats {
	return &Stats{}
}

// Reset clears all counters and samples.
func (s *Stats) Reset() {
	s.ignored.Store(0)
	s.cacheHits.Store(0)
	s.cached.Store(0)
	s.expanded.Store(0)
	s.unchanged.Store(0)
	s.failures.Store(0)
	s.timeouts.Store(0)

	s.mu.Lock()
	s.elapsedAll = nil
	s.elapsedChanged = nil
	s.mu.Unlock()
}

// RecordIgnored counts a URL the filter ruled out.
func (s *Stats) RecordIgnored() {
	s.ignored.Add(1)
	outcomesTotal.WithLabelValues(OutcomeIgnored.String()).Inc()
}

// RecordCacheHit counts a URL served from the cache.
func (s *Stats) RecordCacheHit() {
	s.cacheHits.Add(1)
	outcomesTotal.WithLabelValues(OutcomeCacheHit.String()).Inc()
}

// RecordCached counts a successful cache write-back.
func (s *Stats) RecordCached() {
	s.cached.Add(1)
	cacheWritesTotal.Inc()
}

// RecordResolved counts an exchange that changed the URL and samples its
// latency in both sequences.
func (s *Stats) RecordResolved(elapsed time.Duration) {
	s.expanded.Add(1)
	outcomesTotal.WithLabelValues(OutcomeResolved.String()).Inc()
	requestDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	s.elapsedAll = append(s.elapsedAll, elapsed)
	s.elapsedChanged = append(s.elapsedChanged, elapsed)
	s.mu.Unlock()
}

// RecordUnchanged counts an exchange whose redirects led back to the original
// URL. It contributes to the all-attempts latency sample only.
func (s *Stats) RecordUnchanged(elapsed time.Duration) {
	s.unchanged.Add(1)
	outcomesTotal.WithLabelValues(OutcomeUnchanged.String()).Inc()
	requestDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	s.elapsedAll = append(s.elapsedAll, elapsed)
	s.mu.Unlock()
}

// RecordFailure counts a failed exchange. Timeouts are counted twice on
// purpose: once as a failure and once in the timeout subset. Failures still
// contribute to the all-attempts latency sample.
func (s *Stats) RecordFailure(elapsed time.Duration, timedOut bool) {
	s.failures.Add(1)
	if timedOut {
		s.timeouts.Add(1)
		outcomesTotal.WithLabelValues(OutcomeTimedOut.String()).Inc()
	} else {
		outcomesTotal.WithLabelValues(OutcomeFailed.String()).Inc()
	}
	requestDuration.Observe(elapsed.Seconds())

	s.mu.Lock()
	s.elapsedAll = append(s.elapsedAll, elapsed)
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters and latency summaries.
type Snapshot struct {
	Ignored   int64
	CacheHits int64
	Cached    int64
	Expanded  int64
	Unchanged int64
	Failures  int64
	Timeouts  int64

	ElapsedAll     LatencySummary
	ElapsedChanged LatencySummary
}

// Processed returns the number of URLs that reached a terminal outcome.
// Timeouts are a subset of failures and do not count extra.
func (sn Snapshot) Processed() int64 {
	return sn.Ignored + sn.CacheHits + sn.Expanded + sn.Unchanged + sn.Failures
}

// Snapshot copies the current counters and summarizes the latency samples.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	all := summarize(s.elapsedAll)
	changed := summarize(s.elapsedChanged)
	s.mu.Unlock()

	return Snapshot{
		Ignored:   s.ignored.Load(),
		CacheHits: s.cacheHits.Load(),
		Cached:    s.cached.Load(),
		Expanded:  s.expanded.Load(),
		Unchanged: s.unchanged.Load(),
		Failures:  s.failures.Load(),
		Timeouts:  s.timeouts.Load(),

		ElapsedAll:     all,
		ElapsedChanged: changed,
	}
}

// LatencySummary is the mean and standard deviation of a latency sample
// sequence, in milliseconds.
type LatencySummary struct {
	Count   int
	MeanMs  float64
	StdevMs float64 // NaN when fewer than two samples
}

// String renders the summary the way the run log reports it.
func (l LatencySummary) String() string {
	if l.Count == 0 {
		return "N/A"
	}

	return fmt.Sprintf("%.2f±%.2f ms", l.MeanMs, l.StdevMs)
}

// summarize computes mean and sample standard deviation in milliseconds.
func summarize(samples []time.Duration) LatencySummary {
	n := len(samples)
	if n == 0 {
		return LatencySummary{StdevMs: math.NaN()}
	}

	var sum float64
	for _, d := range samples {
		sum += float64(d) / float64(time.Millisecond)
	}
	mean := sum / float64(n)

	stdev := math.NaN()
	if n > 1 {
		var sq float64
		for _, d := range samples {
			diff := float64(d)/float64(time.Millisecond) - mean
			sq += diff * diff
		}
		stdev = math.Sqrt(sq / float64(n-1))
	}

	return LatencySummary{Count: n, MeanMs: mean, StdevMs: stdev}
}

// LogSummary writes the end-of-run report.
func (s *Stats) LogSummary(ctx context.Context) {
	snap := s.Snapshot()

	logger.Info(ctx, "elapsed (all)", zap.String("latency", snap.ElapsedAll.String()))
	logger.Info(ctx, "elapsed (expanded)", zap.String("latency", snap.ElapsedChanged.String()))
	logger.Info(ctx, "run summary",
		zap.Int64("ignored", snap.Ignored),
		zap.Int64("expanded", snap.Expanded),
		zap.Int64("unchanged", snap.Unchanged),
		zap.Int64("cached", snap.Cached),
		zap.Int64("cacheHits", snap.CacheHits),
		zap.Int64("errors", snap.Failures),
		zap.Int64("timedOut", snap.Timeouts),
	)
}
