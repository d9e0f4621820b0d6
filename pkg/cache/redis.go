package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"unshorten/pkg/serrors"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configure the connection to the Redis cache backend.
type RedisOptions struct {
	// Host is the Redis server hostname or IP address.
	Host string
	// Port is the Redis server port.
	Port int
	// DB is the Redis logical database index.
	DB int
}

// Redis is a Cache backed by a Redis server. Entries persist across runs,
// which is the point: a warm cache skips the network exchange entirely.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the configured Redis server and verifies the
// connection with a ping. A backend that cannot be reached is an error, not
// a silent fallback to no cache.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		DB:   opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not ping redis cache")
	}

	return &Redis{client: client}, nil
}

// Get returns the entry stored for url. A missing key is a miss, not an
// error; any other failure surfaces as serrors.ErrUnavailable.
func (r *Redis) Get(ctx context.Context, url string) (string, bool, error) {
	resolved, err := r.client.Get(ctx, url).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, serrors.Wrap(serrors.ErrUnavailable, err, "could not read from redis cache")
	}

	return resolved, true, nil
}

// Set stores the resolved URL for url with no expiry.
func (r *Redis) Set(ctx context.Context, url string, resolved string) error {
	if err := r.client.Set(ctx, url, resolved, 0).Err(); err != nil {
		return serrors.Wrap(serrors.ErrUnavailable, err, "could not write to redis cache")
	}

	return nil
}

// Close closes the underlying Redis client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("could not close redis client: %w", err)
	}

	return nil
}

var _ Cache = (*Redis)(nil)
