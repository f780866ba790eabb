// Package etl runs one crawl, transform and load cycle.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/events"
	"github.com/maltedev/fashion-etl/internal/load"
	"github.com/maltedev/fashion-etl/internal/scraper"
)

type Crawler interface {
	Crawl(ctx context.Context) *scraper.CrawlResult
}

type Transformer interface {
	Run(t *dataset.Table) *dataset.Table
}

type Sink interface {
	Load(ctx context.Context, t *dataset.Table) (map[string]load.Outcome, error)
}

type EventPublisher interface {
	PublishBatchLoaded(ctx context.Context, payload *events.BatchLoadedPayload) error
}

type RunOptions struct {
	RunID    string
	SkipLoad bool
}

// Report summarises one run.
type Report struct {
	RunID      string                  `json:"run_id,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Pages      int                     `json:"pages"`
	Fetches    int                     `json:"fetches"`
	CrawlState scraper.State           `json:"crawl_state"`
	RawCount   int                     `json:"raw_count"`
	CleanCount int                     `json:"clean_count"`
	NoData     bool                    `json:"no_data"`
	Sinks      map[string]load.Outcome `json:"sinks,omitempty"`

	// Table is the cleaned dataset; nil when no data was found.
	Table *dataset.Table `json:"-"`
}

type Runner struct {
	crawler     Crawler
	transformer Transformer
	sink        Sink
	publisher   EventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunner wires the stages of a run. publisher may be nil.
func NewRunner(crawler Crawler, transformer Transformer, sink Sink, publisher EventPublisher, logger *slog.Logger) *Runner {
	return &Runner{
		crawler:     crawler,
		transformer: transformer,
		sink:        sink,
		publisher:   publisher,
		logger:      logger.With("component", "etl_runner"),
		now:         time.Now,
	}
}

// Run crawls the catalog, cleans the result and hands it to the sinks. The
// only error it returns is a spreadsheet upload failure.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{RunID: opts.RunID, StartedAt: r.now()}
	logger := r.logger
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}

	crawl := r.crawler.Crawl(ctx)
	report.Pages = crawl.Pages
	report.Fetches = crawl.Fetches
	report.CrawlState = crawl.State
	report.RawCount = len(crawl.Products)

	if len(crawl.Products) == 0 {
		logger.Warn("no data found", "pages", crawl.Pages, "state", crawl.State)
		report.NoData = true
		report.FinishedAt = r.now()
		return report, nil
	}

	raw := dataset.ToTable(logger, crawl.Products)
	cleaned := r.transformer.Run(raw)
	report.Table = cleaned
	report.CleanCount = cleaned.Len()
	logger.Info("data transformed", "raw", report.RawCount, "clean", report.CleanCount)

	if opts.SkipLoad {
		report.FinishedAt = r.now()
		return report, nil
	}

	outcomes, loadErr := r.sink.Load(ctx, cleaned)
	report.Sinks = outcomes
	report.FinishedAt = r.now()

	r.publish(ctx, logger, report)

	if loadErr != nil {
		return report, fmt.Errorf("failed to load data: %w", loadErr)
	}
	return report, nil
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, report *Report) {
	if r.publisher == nil {
		return
	}

	sinks := make(map[string]string, len(report.Sinks))
	for name, outcome := range report.Sinks {
		sinks[name] = string(outcome)
	}

	err := r.publisher.PublishBatchLoaded(ctx, &events.BatchLoadedPayload{
		RunID:      report.RunID,
		Pages:      report.Pages,
		CrawlState: string(report.CrawlState),
		RawCount:   report.RawCount,
		CleanCount: report.CleanCount,
		Sinks:      sinks,
	})
	if err != nil {
		logger.Error("failed to publish batch event", "error", err)
	}
}
