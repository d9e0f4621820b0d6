// Package resolver defines the interface and data types used to expand a
// shortened URL to its final destination by following HTTP redirects.
package resolver

import (
	"context"
	"time"
)

// Result describes a single resolution attempt.
type Result struct {
	// FinalURL is the URL after following all redirects. On failure it is the
	// original URL so callers can always pass it through.
	FinalURL string
	// Elapsed is the wall-clock time from request dispatch to the first
	// terminal event, populated on both success and failure.
	Elapsed time.Duration
}

// Resolver performs the network exchange for one URL. Implementations make a
// single attempt per call; retry policy belongs to the caller.
//
//go:generate mockgen -package mockresolver -source=interface.go -destination=mock/mockresolver.go *
type Resolver interface {
	// Resolve follows redirects from url and reports where they end up.
	// Timeout errors match serrors.ErrTimeout; any other error is an
	// ordinary network or protocol failure.
	Resolve(ctx context.Context, url string) (Result, error)
}
