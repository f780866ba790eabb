package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/fashion-etl/internal/config"
	"github.com/maltedev/fashion-etl/internal/models"
	"github.com/maltedev/fashion-etl/internal/parser"
	"github.com/maltedev/fashion-etl/internal/ratelimit"
)

// PageFetcher returns the markup of a page, or nil when it could not be
// retrieved.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) []byte
}

// State is the terminal state of a crawl.
type State string

const (
	StateDone    State = "done"
	StateAborted State = "aborted"
)

// CrawlResult is the raw dataset in discovery order plus crawl bookkeeping.
type CrawlResult struct {
	Products []models.RawProduct
	Pages    int
	Fetches  int
	State    State
}

// CatalogCrawler walks a paginated catalog strictly sequentially.
type CatalogCrawler struct {
	fetcher PageFetcher
	parser  *parser.CatalogParser
	pacer   ratelimit.Pacer
	cfg     config.CrawlerConfig
	logger  *slog.Logger
}

func NewCatalogCrawler(fetcher PageFetcher, p *parser.CatalogParser, pacer ratelimit.Pacer, cfg config.CrawlerConfig, logger *slog.Logger) *CatalogCrawler {
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	return &CatalogCrawler{
		fetcher: fetcher,
		parser:  p,
		pacer:   pacer,
		cfg:     cfg,
		logger:  logger.With("component", "catalog_crawler"),
	}
}

// Crawl fetches pages until the catalog ends and returns everything
// collected. It never fails: a fault on a page aborts the crawl and the
// products gathered so far are still returned.
func (c *CatalogCrawler) Crawl(ctx context.Context) *CrawlResult {
	result := &CrawlResult{}
	page := c.cfg.StartPage

	for {
		url := c.cfg.PageURLFor(page)
		c.logger.Info("scraping page", "page", page, "url", url)

		hasNext, err := c.crawlPage(ctx, url, result)
		if err != nil {
			c.logger.Error("failed to scrape page", "page", page, "error", err)
			result.State = StateAborted
			break
		}

		if !hasNext {
			result.State = StateDone
			break
		}

		if c.cfg.MaxPages > 0 && result.Pages >= c.cfg.MaxPages {
			c.logger.Info("reached max pages limit", "pages", result.Pages)
			result.State = StateDone
			break
		}

		page++

		if err := c.pacer.Wait(ctx); err != nil {
			c.logger.Error("crawl interrupted", "page", page, "error", err)
			result.State = StateAborted
			break
		}
	}

	c.logger.Info("crawl finished",
		"state", result.State,
		"pages", result.Pages,
		"fetches", result.Fetches,
		"products", len(result.Products))

	return result
}

// crawlPage processes one page and reports whether a next page exists.
func (c *CatalogCrawler) crawlPage(ctx context.Context, url string, result *CrawlResult) (hasNext bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", url, r)
		}
	}()

	content := c.fetcher.Fetch(ctx, url)
	result.Fetches++
	if len(content) == 0 {
		c.logger.Info("page content empty or unavailable, ending crawl", "url", url)
		return false, nil
	}

	doc, err := c.parser.ParseDocument(content)
	if err != nil {
		return false, err
	}

	cards := c.parser.ProductCards(doc)
	if cards.Length() == 0 {
		c.logger.Info("no products found on this page", "url", url)
		return false, nil
	}

	result.Pages++
	cards.Each(func(_ int, card *goquery.Selection) {
		result.Products = append(result.Products, c.parser.ExtractProduct(card))
	})

	c.logger.Debug("extracted products", "url", url, "count", cards.Length())

	return c.parser.HasNextPage(doc), nil
}
