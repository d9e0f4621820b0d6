package httphead

import (
	"context"
	"net"
	"sync"
	"time"
)

// dnsEntry holds the resolved addresses for one host and their expiry.
type dnsEntry struct {
	addrs     []string
	expiresAt time.Time
}

// dnsCache memoizes hostname lookups for a bounded TTL so that a batch
// hitting the same shortener thousands of times does not re-resolve it per
// request. Expired entries are replaced on next use.
type dnsCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]dnsEntry

	// lookup and now are injectable for tests.
	lookup func(ctx context.Context, host string) ([]net.IPAddr, error)
	now    func() time.Time
}

// newDNSCache builds a cache with the given TTL. A non-positive TTL disables
// caching; lookups then go straight to the system resolver.
func newDNSCache(ttl time.Duration) *dnsCache {
	return &dnsCache{
		ttl:     ttl,
		entries: make(map[string]dnsEntry),
		lookup: func(ctx context.Context, host string) ([]net.IPAddr, error) {
			return net.DefaultResolver.LookupIPAddr(ctx, host)
		},
		now: time.Now,
	}
}

// resolve returns the addresses for host, serving from the cache while the
// entry is fresh.
func (c *dnsCache) resolve(ctx context.Context, host string) ([]string, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.entries[host]
		c.mu.Unlock()
		if ok && c.now().Before(entry.expiresAt) {
			return entry.addrs, nil
		}
	}

	ipAddrs, err := c.lookup(ctx, host)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(ipAddrs))
	for _, ip := range ipAddrs {
		addrs = append(addrs, ip.String())
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[host] = dnsEntry{addrs: addrs, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}

	return addrs, nil
}

// cachingDialContext returns a DialContext that resolves hostnames through the
// cache and then dials the resolved addresses in order. Literal IP addresses
// and unparsable addrs bypass the cache. TLS still handshakes against the
// original hostname; only the TCP target is substituted.
func cachingDialContext(dialer *net.Dialer,
	cache *dnsCache) func(ctx context.Context, network string, addr string) (net.Conn, error) {
	return func(ctx context.Context, network string, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		if ip := net.ParseIP(host); ip != nil {
			return dialer.DialContext(ctx, network, addr)
		}

		addrs, err := cache.resolve(ctx, host)
		if err != nil {
			return nil, err
		}

		var firstErr error
		for _, a := range addrs {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(a, port))
			if err == nil {
				return conn, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}

		if firstErr == nil {
			firstErr = &net.DNSError{Err: "no addresses", Name: host, IsNotFound: true}
		}

		return nil, firstErr
	}
}
