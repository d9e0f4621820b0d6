// Package expander contains the bounded-concurrency batch engine that turns a
// list of candidate short URLs into their resolved destinations.
//
// # Processing model
//
// Run fans out one task per input URL. Each task walks the same pipeline:
// filter, cache lookup, network resolution, cache write-back. Only the
// network phase contends for an admission token, so filtered URLs and cache
// hits cost nothing against the concurrency cap; the cap's effective load is
// exactly the cache-misses that pass the filter. Tokens are released
// unconditionally, so failed and timed-out exchanges cannot starve the gate.
//
// Results are collected positionally: output[i] always corresponds to
// input[i] no matter in which order the exchanges complete.
//
// # Failure semantics
//
// A failed or timed-out exchange is a local event: it is counted, the
// original URL fills that slot, and the batch continues. A cache backend
// failure is fatal to the whole batch: the operator configured that backend
// explicitly, and degrading to "no cache" behind their back would mask an
// outage. Cancellation of the parent context stops admission of new
// exchanges promptly; statistics gathered so far remain readable.
package expander

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unshorten/internal/filter"
	"unshorten/pkg/cache"
	"unshorten/pkg/logger"
	"unshorten/pkg/resolver"
	"unshorten/pkg/serrors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Engine orchestrates one batch of resolutions. Construct it with New and
// reuse it across runs; each Run resets the statistics.
type Engine struct {
	filter   *filter.Filter
	cache    cache.Cache // nil when caching is disabled
	resolver resolver.Resolver
	sem      *semaphore.Weighted
	stats    *Stats
}

// New creates an Engine. cache may be nil to disable caching entirely.
// A non-positive concurrency is clamped to 1.
func New(f *filter.Filter, c cache.Cache, r resolver.Resolver, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Engine{
		filter:   f,
		cache:    c,
		resolver: r,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		stats:    NewStats(),
	}
}

// Stats exposes the counters for the most recent run. Read it after Run
// returns; it is also valid when Run was cut short.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Run resolves every URL in urls and returns the results in input order.
// Slot i of the returned slice holds the resolution of urls[i], or the
// original string when resolution was skipped or failed locally.
//
// Run returns an error only for batch-fatal conditions: a cache backend
// failure or cancellation of ctx. In that case the returned slice is
// partial and must not be treated as a successful run.
func (e *Engine) Run(ctx context.Context, urls []string) ([]string, error) {
	e.stats.Reset()

	start := time.Now()
	results := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			final, err := e.processOne(ctx, u)
			if err != nil {
				return err
			}
			results[i] = final

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch aborted: %w", err)
	}

	elapsed := time.Since(start)
	logger.Info(ctx, "batch finished",
		zap.Int("urls", len(urls)),
		zap.Duration("elapsed", elapsed),
		zap.Float64("urlsPerSecond", float64(len(urls))/elapsed.Seconds()),
	)

	return results, nil
}

// processOne walks a single URL through filter, cache and resolver. It
// returns the string for this URL's output slot, or an error when the whole
// batch must stop.
func (e *Engine) processOne(ctx context.Context, url string) (string, error) {
	if e.filter.ShouldSkip(url) {
		e.stats.RecordIgnored()

		return url, nil
	}

	if e.cache != nil {
		resolved, found, err := e.cache.Get(ctx, url)
		if err != nil {
			return "", fmt.Errorf("cache lookup for %q failed: %w", url, err)
		}
		if found {
			e.stats.RecordCacheHit()

			return resolved, nil
		}
	}

	// Network phase. Only this part holds an admission token.
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("could not acquire exchange slot: %w", err)
	}
	inFlightExchanges.Inc()
	res, err := e.resolver.Resolve(ctx, url)
	inFlightExchanges.Dec()
	e.sem.Release(1)

	if err != nil {
		// The batch being torn down is not this URL's failure.
		if ctx.Err() != nil {
			return "", ctx.Err() //nolint: wrapcheck
		}

		e.stats.RecordFailure(res.Elapsed, errors.Is(err, serrors.ErrTimeout))
		logger.Debug(ctx, "resolution failed", zap.String("url", url), zap.Error(err))

		return url, nil
	}

	if res.FinalURL == url {
		e.stats.RecordUnchanged(res.Elapsed)

		return url, nil
	}

	e.stats.RecordResolved(res.Elapsed)

	if e.cache != nil {
		if err := e.cache.Set(ctx, url, res.FinalURL); err != nil {
			return "", fmt.Errorf("cache store for %q failed: %w", url, err)
		}
		e.stats.RecordCached()
	}

	return res.FinalURL, nil
}
