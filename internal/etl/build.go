package etl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maltedev/fashion-etl/internal/browser"
	"github.com/maltedev/fashion-etl/internal/config"
	"github.com/maltedev/fashion-etl/internal/events"
	"github.com/maltedev/fashion-etl/internal/fetcher"
	"github.com/maltedev/fashion-etl/internal/load"
	"github.com/maltedev/fashion-etl/internal/parser"
	"github.com/maltedev/fashion-etl/internal/ratelimit"
	"github.com/maltedev/fashion-etl/internal/scraper"
	"github.com/maltedev/fashion-etl/internal/transform"
	"github.com/redis/go-redis/v9"
)

// Build assembles a Runner from configuration. The returned cleanup func
// releases the browser and redis connections.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runner, func(), error) {
	crawler, cleanup, err := BuildCrawler(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	loader := load.New(load.Options{
		Database: cfg.Database,
		Output:   cfg.Output,
		Sheets:   cfg.Sheets,
	}, logger)

	var publisher EventPublisher
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, batch events disabled", "addr", cfg.Redis.Addr, "error", err)
			client.Close()
		} else {
			closeCrawler := cleanup
			cleanup = func() {
				client.Close()
				closeCrawler()
			}
			publisher = events.NewPublisher(client, cfg.Redis.Stream, logger)
		}
	}

	runner := NewRunner(crawler, transform.NewPipeline(logger, cfg.Transform.ExchangeRate), loader, publisher, logger)
	return runner, cleanup, nil
}

// BuildCrawler assembles the crawler with the configured fetch mode.
func BuildCrawler(cfg *config.Config, logger *slog.Logger) (*scraper.CatalogCrawler, func(), error) {
	cleanup := func() {}

	var pageFetcher scraper.PageFetcher
	switch cfg.Crawler.FetchMode {
	case config.FetchModeBrowser:
		opts := browser.DefaultOptions()
		opts.Headless = cfg.Crawler.Headless
		opts.Timeout = cfg.Crawler.Timeout
		opts.UserAgent = cfg.Crawler.UserAgent

		b, err := browser.New(logger, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		cleanup = func() {
			if err := b.Close(); err != nil {
				logger.Warn("failed to close browser", "error", err)
			}
		}
		pageFetcher = b
	default:
		pageFetcher = fetcher.New(logger, fetcher.Options{
			UserAgent: cfg.Crawler.UserAgent,
			Timeout:   cfg.Crawler.Timeout,
		})
	}

	crawler := scraper.NewCatalogCrawler(
		pageFetcher,
		parser.NewCatalogParser(logger, parser.DefaultSelectors()),
		ratelimit.NewFixedDelay(cfg.Crawler.Delay),
		cfg.Crawler,
		logger,
	)
	return crawler, cleanup, nil
}
