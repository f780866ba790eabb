package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ETL_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://fashion-studio.dicoding.dev/", cfg.Crawler.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Crawler.Delay)
	assert.Equal(t, 10*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, "http", cfg.Crawler.FetchMode)
	assert.Equal(t, 16000.0, cfg.Transform.ExchangeRate)
	assert.Equal(t, "fashionstudio", cfg.Database.Table)
	assert.Equal(t, "Sheet1!A1", cfg.Sheets.Range)
	assert.False(t, cfg.Sheets.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ETL_CONFIG_FILE", "")
	t.Setenv("CRAWLER_DELAY", "500ms")
	t.Setenv("CRAWLER_MAX_PAGES", "3")
	t.Setenv("TRANSFORM_EXCHANGE_RATE", "1.5")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("CRAWLER_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Crawler.Delay)
	assert.Equal(t, 3, cfg.Crawler.MaxPages)
	assert.Equal(t, 1.5, cfg.Transform.ExchangeRate)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Crawler.Timeout, "unparsable values keep the default")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.yaml")
	content := `
crawler:
  base_url: http://catalog.local/
  page_url: http://catalog.local/p/{page}
  delay: 1s
transform:
  exchange_rate: 2
sheets:
  enabled: true
  spreadsheet_id: sheet-123
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("ETL_CONFIG_FILE", path)
	t.Setenv("TRANSFORM_EXCHANGE_RATE", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://catalog.local/", cfg.Crawler.BaseURL)
	assert.Equal(t, time.Second, cfg.Crawler.Delay)
	assert.Equal(t, 3.0, cfg.Transform.ExchangeRate)
	assert.True(t, cfg.Sheets.Enabled)
	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "google-sheets-api.json", cfg.Sheets.CredentialsFile)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("ETL_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"missing base url", func(c *Config) { c.Crawler.BaseURL = "" }, ErrMissingBaseURL},
		{"page template without placeholder", func(c *Config) { c.Crawler.PageURL = "http://x/page.html" }, ErrInvalidPageTemplate},
		{"unknown fetch mode", func(c *Config) { c.Crawler.FetchMode = "ftp" }, ErrInvalidFetchMode},
		{"zero timeout", func(c *Config) { c.Crawler.Timeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(c *Config) { c.Crawler.Delay = -time.Second }, ErrInvalidDelay},
		{"database without url", func(c *Config) { c.Database.URL = "" }, ErrMissingDatabaseURL},
		{"disabled database without url", func(c *Config) { c.Database.Enabled = false; c.Database.URL = "" }, nil},
		{"csv without path", func(c *Config) { c.Output.CSVPath = "" }, ErrMissingCSVPath},
		{"sheets without id", func(c *Config) { c.Sheets.Enabled = true }, ErrMissingSpreadsheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestPageURLFor(t *testing.T) {
	c := CrawlerConfig{
		BaseURL: "http://shop.local/",
		PageURL: "http://shop.local/page{page}.html",
	}

	assert.Equal(t, "http://shop.local/", c.PageURLFor(1))
	assert.Equal(t, "http://shop.local/page2.html", c.PageURLFor(2))
	assert.Equal(t, "http://shop.local/page10.html", c.PageURLFor(10))
}
