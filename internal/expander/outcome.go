package expander

// Outcome classifies the terminal result of processing one URL. Every URL in
// a batch ends up with exactly one outcome.
type Outcome int

const (
	// OutcomeIgnored means the filter ruled the URL out; no network or cache
	// access took place.
	OutcomeIgnored Outcome = iota
	// OutcomeCacheHit means the resolved URL was served from the cache.
	OutcomeCacheHit
	// OutcomeResolved means a network exchange produced a different URL.
	OutcomeResolved
	// OutcomeUnchanged means the exchange succeeded but redirects led back
	// to the original URL.
	OutcomeUnchanged
	// OutcomeFailed means the exchange failed; the original URL is passed
	// through.
	OutcomeFailed
	// OutcomeTimedOut is the subset of failures caused by the per-exchange
	// deadline.
	OutcomeTimedOut
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCacheHit:
		return "cache_hit"
	case OutcomeResolved:
		return "resolved"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
