package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unshorten/internal/config"
	"unshorten/internal/expander"
	"unshorten/internal/filter"
	"unshorten/pkg/cache"
	"unshorten/pkg/controller"
	"unshorten/pkg/domains"
	"unshorten/pkg/logger"
	"unshorten/pkg/resolver/httphead"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupDebugServer starts the metrics/pprof listener when one is configured
// and returns a function that shuts it down. With no address configured it
// does nothing.
func setupDebugServer(ctx context.Context, cfg *config.Config) func(ctx context.Context) {
	if cfg.Debug.Addr == "" {
		return func(context.Context) {}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Debug.MetricsPath, promhttp.Handler())
	mux.Handle("/debug/pprof/", http.StripPrefix("/debug/pprof", controller.PprofMux()))

	server := &http.Server{
		Addr:              cfg.Debug.Addr,
		Handler:           controller.WithLogger(mux),
		ReadHeaderTimeout: cfg.Debug.ReadHeaderTimeout,
	}

	go func() {
		logger.Info(ctx, "starting debug listener...", zap.String("addr", cfg.Debug.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start debug listener", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping debug listener...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop debug listener", zap.Error(err))
		}
	}
}

// setupCache constructs the cache backend the flags select, together with a
// cleanup function. A nil cache means caching is disabled.
func setupCache(ctx context.Context, cfg *config.Config, noCache bool, useRedis bool) (cache.Cache, func(), error) {
	if noCache {
		logger.Info(ctx, "caching disabled")

		return nil, func() {}, nil
	}

	if useRedis {
		logger.Info(ctx, "caching to redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
			zap.Int("db", cfg.Redis.DB))

		c, err := cache.NewRedis(ctx, cache.RedisOptions{
			Host: cfg.Redis.Host,
			Port: cfg.Redis.Port,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis cache (is it running?): %w", err)
		}

		return c, func() {
			logger.Info(ctx, "closing redis cache...")
			if err := c.Close(); err != nil {
				logger.Warn(ctx, "could not close redis cache", zap.Error(err))
			}
		}, nil
	}

	logger.Info(ctx, "caching in memory")
	c := cache.NewMemory()

	return c, func() { _ = c.Close() }, nil
}

// readURLs reads one URL per line from path. Lines are trimmed but all are
// kept, so input and output cardinality always match.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open input file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		urls = append(urls, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read input file: %w", err)
	}

	return urls, nil
}

// writeURLs writes the resolved URLs to path, one per line.
func writeURLs(path string, urls []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, u := range urls {
		if _, err := w.WriteString(u + "\n"); err != nil {
			_ = f.Close()

			return fmt.Errorf("could not write output file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()

		return fmt.Errorf("could not flush output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}

	return nil
}

func expandCommand(cfg *config.Config) *cobra.Command {
	var (
		maxLen       int
		extraDomains []string
		noBuiltin    bool
		noCache      bool
		useRedis     bool
	)

	cmd := &cobra.Command{
		Use:   "expand INPUT OUTPUT",
		Short: "Resolves shortened URLs from INPUT and writes the results to OUTPUT",
		Long: "Reads one URL per line from INPUT, follows redirects for every URL that " +
			"passes the filters, and writes the resolved URLs to OUTPUT in the same order.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx = logger.WithFields(ctx, zap.String("runID", uuid.New().String()))

			stopDebugServer := setupDebugServer(ctx, cfg)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer cancel()
				stopDebugServer(shutdownCtx)
			}()

			urls, err := readURLs(args[0])
			if err != nil {
				return err
			}
			logger.Info(ctx, "loaded input", zap.String("path", args[0]), zap.Int("urls", len(urls)))

			var domainList []string
			if !noBuiltin {
				domainList = domains.Builtin()
			}
			domainList = append(domainList, extraDomains...)

			c, closeCache, err := setupCache(ctx, cfg, noCache, useRedis)
			if err != nil {
				return err
			}
			defer closeCache()

			client := httphead.New(httphead.Options{
				Timeout:     cfg.Expander.Timeout,
				DNSCacheTTL: cfg.Expander.DNSCacheTTL,
				UserAgent:   cfg.Expander.UserAgent,
			})
			defer client.Close()

			engine := expander.New(
				filter.New(filter.Config{MaxLen: maxLen, Domains: domainList}),
				c,
				client,
				cfg.Expander.Concurrency,
			)

			results, runErr := engine.Run(ctx, urls)
			engine.Stats().LogSummary(ctx)
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					logger.Info(ctx, "interrupted by user")
				}

				return runErr
			}

			if err := writeURLs(args[1], results); err != nil {
				return err
			}
			logger.Info(ctx, "wrote output", zap.String("path", args[1]), zap.Int("urls", len(results)))

			return nil
		},
	}

	cmd.Flags().IntVarP(&maxLen, "maxlen", "m", 0, "Do not expand URLs longer than this many bytes (0 = no limit)")
	cmd.Flags().StringSliceVarP(&extraDomains, "domains", "d", nil, "Expand if URL is from this domain (repeatable)")
	cmd.Flags().BoolVarP(&noBuiltin, "no-builtin-domains", "n", false,
		"Do not use builtin list of known URL shortening services")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable caching")
	cmd.Flags().BoolVar(&useRedis, "cache-redis", false, "Cache to Redis instead of process memory")

	return cmd
}
