package httphead

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDNSCache_ServesFromCacheWithinTTL(t *testing.T) {
	lookups := 0
	c := newDNSCache(5 * time.Minute)
	c.lookup = func(_ context.Context, host string) ([]net.IPAddr, error) {
		lookups++
		require.Equal(t, "bit.ly", host)

		return []net.IPAddr{{IP: net.ParseIP("192.0.2.10")}}, nil
	}

	for i := 0; i < 3; i++ {
		addrs, err := c.resolve(context.Background(), "bit.ly")
		require.NoError(t, err)
		require.Equal(t, []string{"192.0.2.10"}, addrs)
	}

	require.Equal(t, 1, lookups, "fresh entries must not trigger new lookups")
}

func TestDNSCache_ExpiredEntryIsRefreshed(t *testing.T) {
	lookups := 0
	now := time.Now()

	c := newDNSCache(time.Minute)
	c.now = func() time.Time { return now }
	c.lookup = func(_ context.Context, _ string) ([]net.IPAddr, error) {
		lookups++

		return []net.IPAddr{{IP: net.ParseIP("192.0.2.10")}}, nil
	}

	_, err := c.resolve(context.Background(), "bit.ly")
	require.NoError(t, err)

	// move past the TTL
	now = now.Add(2 * time.Minute)

	_, err = c.resolve(context.Background(), "bit.ly")
	require.NoError(t, err)
	require.Equal(t, 2, lookups)
}

func TestDNSCache_ZeroTTLDisablesCaching(t *testing.T) {
	lookups := 0
	c := newDNSCache(0)
	c.lookup = func(_ context.Context, _ string) ([]net.IPAddr, error) {
		lookups++

		return []net.IPAddr{{IP: net.ParseIP("192.0.2.10")}}, nil
	}

	for i := 0; i < 3; i++ {
		_, err := c.resolve(context.Background(), "bit.ly")
		require.NoError(t, err)
	}

	require.Equal(t, 3, lookups)
}

func TestDNSCache_LookupErrorsAreNotCached(t *testing.T) {
	fail := true
	c := newDNSCache(time.Minute)
	c.lookup = func(_ context.Context, host string) ([]net.IPAddr, error) {
		if fail {
			return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
		}

		return []net.IPAddr{{IP: net.ParseIP("192.0.2.10")}}, nil
	}

	_, err := c.resolve(context.Background(), "bit.ly")
	require.Error(t, err)

	fail = false
	addrs, err := c.resolve(context.Background(), "bit.ly")
	require.NoError(t, err)
	require.Equal(t, []string{"192.0.2.10"}, addrs)
}

func TestCachingDialContext_LiteralIPBypassesCache(t *testing.T) {
	c := newDNSCache(time.Minute)
	c.lookup = func(_ context.Context, _ string) ([]net.IPAddr, error) {
		t.Fatal("lookup must not be called for literal IPs")

		return nil, nil
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		_ = ln.Close()
	}()

	dial := cachingDialContext(&net.Dialer{}, c)
	conn, err := dial(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

func TestCachingDialContext_DialsResolvedAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		_ = ln.Close()
	}()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	c := newDNSCache(time.Minute)
	c.lookup = func(_ context.Context, host string) ([]net.IPAddr, error) {
		require.Equal(t, "short.example", host)

		return []net.IPAddr{{IP: net.ParseIP("127.0.0.1")}}, nil
	}

	dial := cachingDialContext(&net.Dialer{}, c)
	conn, err := dial(context.Background(), "tcp", net.JoinHostPort("short.example", port))
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
