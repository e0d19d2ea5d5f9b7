package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/user/reality-watch/internal/adapter/chromedp_crawler"
	"github.com/user/reality-watch/internal/adapter/csvstore"
	"github.com/user/reality-watch/internal/adapter/goquery_extractor"
	"github.com/user/reality-watch/internal/adapter/httpfetch"
	"github.com/user/reality-watch/internal/adapter/postgres"
	redis_adapter "github.com/user/reality-watch/internal/adapter/redis"
	"github.com/user/reality-watch/internal/repository"
	"github.com/user/reality-watch/internal/usecase"
	"github.com/user/reality-watch/pkg/config"
	"github.com/user/reality-watch/pkg/logger"
	"github.com/user/reality-watch/pkg/metrics"
)

const pushJob = "reality_watch"

func main() {
	os.Exit(run())
}

func run() int {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		return 2
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
		return 2
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Metrics ---
	m := metrics.New(nil)

	// --- Fetcher ---
	var fetcher repository.FetcherRepository
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		browser := chromedp_crawler.NewBrowserFetcher(cfg.FetchTimeout, cfg.UserAgent, log)
		defer browser.Close()
		fetcher = browser
	default:
		fetcher = httpfetch.NewFetcher(cfg.FetchTimeout, httpfetch.NewUserAgents(cfg.UserAgent), log)
	}

	// --- Storage and sinks ---
	store := csvstore.NewStore(cfg.OutputPath, cfg.LockTTL, log)
	sinks := openSinks(ctx, cfg, log)
	defer func() {
		for _, s := range sinks {
			if c, ok := s.(interface{ Close() }); ok {
				c.Close()
			}
		}
	}()

	// --- Use Cases ---
	collector := usecase.NewCollector(
		cfg.BaseURL,
		fetcher,
		goquery_extractor.NewExtractor(),
		usecase.NewRecencyFilter(cfg.RecencyWindow),
		time.Now,
		m,
		log,
	)
	dedup := usecase.NewDedupStore(store, m, log)
	runner := usecase.NewRunner(collector, dedup, sinks, usecase.RunOptions{
		Regions: cfg.Regions,
		DryRun:  cfg.DryRun,
	}, log)

	summary, runErr := runner.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := m.Push(pushCtx, cfg.PushgatewayURL, pushJob); err != nil {
			log.Warn("failed to push metrics", zap.String("gateway", cfg.PushgatewayURL), zap.Error(err))
		}
		cancel()
	}

	if runErr != nil {
		log.Error("run failed", zap.Error(runErr))
		return 1
	}
	log.Info("run finished",
		zap.Int("collected", summary.Collected),
		zap.Int("added", summary.Added),
		zap.Int("total", summary.Total),
		zap.String("output", store.Path()))
	return 0
}

// openSinks connects the optional new-listing sinks. A sink that cannot be
// reached is logged and left out.
func openSinks(ctx context.Context, cfg *config.Config, log *zap.Logger) []repository.ListingSink {
	var sinks []repository.ListingSink
	if cfg.DryRun {
		return sinks
	}

	if cfg.PostgresURL != "" {
		mirror, err := postgres.NewListingMirror(ctx, cfg.PostgresURL)
		if err != nil {
			log.Warn("postgres mirror disabled", zap.Error(err))
		} else {
			log.Info("postgres mirror enabled")
			sinks = append(sinks, mirror)
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis queue disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			rdb.Close()
		} else {
			log.Info("redis queue enabled", zap.String("key", redis_adapter.NewListingsKey))
			sinks = append(sinks, redis_adapter.NewNewListingsQueue(rdb))
		}
	}
	return sinks
}
