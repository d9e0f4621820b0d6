// Package filter decides whether a URL is worth a resolution attempt at all.
// The decision is pure: no network or cache access happens here.
package filter

import (
	"net/url"
	"strings"
)

// Config describes the exclusion criteria for a batch run.
type Config struct {
	// MaxLen skips URLs longer than this many bytes. Zero disables the
	// length check; genuinely short URLs are the ones worth expanding.
	MaxLen int
	// Domains restricts resolution to URLs whose host matches one of these
	// suffixes. An empty list disables domain filtering and matches every
	// URL.
	Domains []string
}

// Filter is a compiled Config. Construct it once per batch with New and share
// it freely; it is immutable and safe for concurrent use.
type Filter struct {
	maxLen   int
	suffixes []string
}

// New compiles the config. Domain suffixes are lowercased once here so every
// per-URL check is a plain string comparison.
func New(cfg Config) *Filter {
	suffixes := make([]string, 0, len(cfg.Domains))
	for _, d := range cfg.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		suffixes = append(suffixes, d)
	}

	return &Filter{
		maxLen:   cfg.MaxLen,
		suffixes: suffixes,
	}
}

// ShouldSkip reports whether rawURL must not be resolved. Either criterion
// suffices: the URL is longer than the cap, or domain filtering is active and
// the URL's host matches no configured suffix.
func (f *Filter) ShouldSkip(rawURL string) bool {
	if f.maxLen > 0 && len(rawURL) > f.maxLen {
		return true
	}

	if len(f.suffixes) > 0 && !f.matchesDomain(hostOf(rawURL)) {
		return true
	}

	return false
}

// matchesDomain reports whether host equals one of the configured suffixes or
// ends with one at a label boundary, so "bit.ly" matches "www.bit.ly" but not
// "notbit.ly". An empty host (malformed URL) matches nothing.
func (f *Filter) matchesDomain(host string) bool {
	if host == "" {
		return false
	}

	for _, suffix := range f.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}

	return false
}

// hostOf extracts the lowercased hostname of rawURL, with userinfo, port and
// IPv6 brackets stripped. Unparsable URLs yield "".
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}
