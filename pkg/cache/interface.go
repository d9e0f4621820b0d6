// Package cache defines the resolved-URL cache consulted by the batch engine
// and its in-memory and Redis-backed implementations.
package cache

import "context"

// Cache maps an original URL to the resolved URL a previous resolution
// produced for it. Implementations must be safe for concurrent use.
//
// A miss is reported as found == false with a nil error. A non-nil error
// means the backend itself failed and callers must not treat it as a miss:
// the operator asked for this cache, so degrading silently would hide a
// misconfiguration.
//
//go:generate mockgen -package mockcache -source=interface.go -destination=mock/mockcache.go *
type Cache interface {
	// Get returns the resolved URL stored for url, if any.
	Get(ctx context.Context, url string) (resolved string, found bool, err error)
	// Set stores the resolved URL for url. Overwriting an existing entry is
	// allowed; resolved values are deterministic per URL, so last write wins.
	Set(ctx context.Context, url string, resolved string) error
	// Close releases any resources held by the backend.
	Close() error
}
