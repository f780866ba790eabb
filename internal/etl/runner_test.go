package etl

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maltedev/fashion-etl/internal/config"
	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/events"
	"github.com/maltedev/fashion-etl/internal/load"
	"github.com/maltedev/fashion-etl/internal/models"
	"github.com/maltedev/fashion-etl/internal/scraper"
	"github.com/maltedev/fashion-etl/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubCrawler struct {
	result *scraper.CrawlResult
}

func (s *stubCrawler) Crawl(context.Context) *scraper.CrawlResult {
	return s.result
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Load(ctx context.Context, t *dataset.Table) (map[string]load.Outcome, error) {
	args := m.Called(ctx, t)
	outcomes, _ := args.Get(0).(map[string]load.Outcome)
	return outcomes, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBatchLoaded(ctx context.Context, payload *events.BatchLoadedPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func product(title, price string) models.RawProduct {
	return models.RawProduct{
		Title:     models.String(title),
		Price:     models.String(price),
		Rating:    models.String("⭐ 4.0 / 5"),
		Colors:    models.String("3"),
		Size:      models.String("M"),
		Gender:    models.String("Men"),
		Timestamp: "2024-05-17 09:03:07",
	}
}

func TestRunLoadsCleanTable(t *testing.T) {
	ctx := context.Background()
	crawler := &stubCrawler{result: &scraper.CrawlResult{
		Products: []models.RawProduct{
			product("T-shirt 2", "$10.00"),
			product("Unknown Product", "$5.00"),
		},
		Pages:   1,
		Fetches: 1,
		State:   scraper.StateDone,
	}}

	sink := new(MockSink)
	outcomes := map[string]load.Outcome{load.SinkCSV: load.OutcomeOK}
	sink.On("Load", ctx, mock.MatchedBy(func(t *dataset.Table) bool { return t.Len() == 1 })).Return(outcomes, nil)

	publisher := new(MockPublisher)
	publisher.On("PublishBatchLoaded", ctx, mock.MatchedBy(func(p *events.BatchLoadedPayload) bool {
		return p.RunID == "run-1" && p.RawCount == 2 && p.CleanCount == 1 && p.Sinks[load.SinkCSV] == "ok"
	})).Return(nil)

	runner := NewRunner(crawler, transform.NewPipeline(slog.Default(), 2), sink, publisher, slog.Default())
	report, err := runner.Run(ctx, RunOptions{RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.RawCount)
	assert.Equal(t, 1, report.CleanCount)
	assert.Equal(t, scraper.StateDone, report.CrawlState)
	assert.Equal(t, outcomes, report.Sinks)
	assert.False(t, report.NoData)
	assert.Equal(t, 20.0, report.Table.Value(0, models.FieldPrice))
	sink.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRunNoData(t *testing.T) {
	sink := new(MockSink)
	publisher := new(MockPublisher)
	crawler := &stubCrawler{result: &scraper.CrawlResult{Fetches: 1, State: scraper.StateDone}}

	runner := NewRunner(crawler, transform.NewPipeline(slog.Default(), 1), sink, publisher, slog.Default())
	report, err := runner.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.True(t, report.NoData)
	assert.Nil(t, report.Table)
	sink.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishBatchLoaded", mock.Anything, mock.Anything)
}

func TestRunSkipLoad(t *testing.T) {
	sink := new(MockSink)
	crawler := &stubCrawler{result: &scraper.CrawlResult{
		Products: []models.RawProduct{product("T-shirt 2", "$10.00")},
		State:    scraper.StateDone,
	}}

	runner := NewRunner(crawler, transform.NewPipeline(slog.Default(), 1), sink, nil, slog.Default())
	report, err := runner.Run(context.Background(), RunOptions{SkipLoad: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.CleanCount)
	assert.Nil(t, report.Sinks)
	sink.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestRunPropagatesSpreadsheetFailure(t *testing.T) {
	ctx := context.Background()
	crawler := &stubCrawler{result: &scraper.CrawlResult{
		Products: []models.RawProduct{product("T-shirt 2", "$10.00")},
		State:    scraper.StateDone,
	}}

	sheetErr := errors.New("permission denied")
	sink := new(MockSink)
	sink.On("Load", ctx, mock.Anything).Return(map[string]load.Outcome{load.SinkSheets: load.OutcomeFailed}, sheetErr)

	publisher := new(MockPublisher)
	publisher.On("PublishBatchLoaded", ctx, mock.Anything).Return(errors.New("redis down"))

	runner := NewRunner(crawler, transform.NewPipeline(slog.Default(), 1), sink, publisher, slog.Default())
	report, err := runner.Run(ctx, RunOptions{})

	assert.ErrorIs(t, err, sheetErr)
	require.NotNil(t, report)
	assert.Equal(t, load.OutcomeFailed, report.Sinks[load.SinkSheets])
	publisher.AssertExpectations(t)
}

func catalogPage(next bool, titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, title := range titles {
		fmt.Fprintf(&b, `<div class="collection-card">
			<h3 class="product-title">%s</h3>
			<div class="price-container"><span class="price">$100.00</span></div>
			<p>Rating: ⭐ 4.5 / 5</p><p>3 Colors</p><p>Size: M</p><p>Gender: Women</p>
		</div>`, title)
	}
	if next {
		b.WriteString(`<ul class="pagination"><li class="next"><a href="page2.html">Next</a></li></ul>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestBuildEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, catalogPage(true, "T-shirt 1", "Hoodie 2"))
	})
	mux.HandleFunc("/page2.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, catalogPage(false, "Pants 3"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Crawler.BaseURL = srv.URL + "/"
	cfg.Crawler.PageURL = srv.URL + "/page{page}.html"
	cfg.Crawler.Delay = 0
	cfg.Database.Enabled = true
	cfg.Database.URL = "sqlite://" + filepath.Join(dir, "fashion.db")
	cfg.Output.CSVPath = filepath.Join(dir, "fashion_data.csv")
	cfg.Sheets.Enabled = false
	cfg.Redis.Enabled = false

	runner, cleanup, err := Build(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer cleanup()

	report, err := runner.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 3, report.RawCount)
	assert.Equal(t, 3, report.CleanCount)
	assert.Equal(t, load.OutcomeOK, report.Sinks[load.SinkDatabase])
	assert.Equal(t, load.OutcomeOK, report.Sinks[load.SinkCSV])
	assert.Equal(t, load.OutcomeDisabled, report.Sinks[load.SinkSheets])

	f, err := os.Open(cfg.Output.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Title", "Price", "Rating", "Colors", "Size", "Gender", "Timestamp"}, records[0])
	assert.Equal(t, "1600000", records[1][1])
}
