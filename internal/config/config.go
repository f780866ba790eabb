package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingBaseURL      = errors.New("crawler.base_url is required")
	ErrInvalidPageTemplate = errors.New("crawler.page_url must contain the {page} placeholder")
	ErrInvalidFetchMode    = errors.New("crawler.fetch_mode must be 'http' or 'browser'")
	ErrInvalidTimeout      = errors.New("crawler.timeout must be positive")
	ErrInvalidDelay        = errors.New("crawler.delay cannot be negative")
	ErrMissingDatabaseURL  = errors.New("database.url is required when the database sink is enabled")
	ErrMissingCSVPath      = errors.New("output.csv_path is required when the csv sink is enabled")
	ErrMissingSpreadsheet  = errors.New("sheets.spreadsheet_id and sheets.credentials_file are required when the sheets sink is enabled")
)

// PagePlaceholder is replaced with the page number in Crawler.PageURL.
const PagePlaceholder = "{page}"

type Config struct {
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Transform TransformConfig `yaml:"transform"`
	Database  DatabaseConfig  `yaml:"database"`
	Output    OutputConfig    `yaml:"output"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type CrawlerConfig struct {
	BaseURL   string        `yaml:"base_url"`
	PageURL   string        `yaml:"page_url"`
	StartPage int           `yaml:"start_page"`
	MaxPages  int           `yaml:"max_pages"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	FetchMode string        `yaml:"fetch_mode"`
	Headless  bool          `yaml:"headless"`
}

type TransformConfig struct {
	ExchangeRate float64 `yaml:"exchange_rate"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Table   string `yaml:"table"`
}

type OutputConfig struct {
	Enabled bool   `yaml:"enabled"`
	CSVPath string `yaml:"csv_path"`
}

type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Range           string `yaml:"range"`
	CredentialsFile string `yaml:"credentials_file"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			BaseURL:   "https://fashion-studio.dicoding.dev/",
			PageURL:   "https://fashion-studio.dicoding.dev/page{page}.html",
			StartPage: 1,
			Delay:     2 * time.Second,
			Timeout:   10 * time.Second,
			UserAgent: DefaultUserAgent,
			FetchMode: FetchModeHTTP,
			Headless:  true,
		},
		Transform: TransformConfig{
			ExchangeRate: 16000,
		},
		Database: DatabaseConfig{
			Enabled: true,
			URL:     "postgres://postgres@localhost:5432/fashionsdb?sslmode=disable",
			Table:   "fashionstudio",
		},
		Output: OutputConfig{
			Enabled: true,
			CSVPath: "fashion_data.csv",
		},
		Sheets: SheetsConfig{
			Range:           "Sheet1!A1",
			CredentialsFile: "google-sheets-api.json",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Stream: "stream:catalog_batches",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// DefaultUserAgent identifies the crawler as a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36"

// Load builds the configuration from defaults, the optional YAML file named by
// ETL_CONFIG_FILE and finally environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("ETL_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Crawler.BaseURL = getEnvOrDefault("CRAWLER_BASE_URL", c.Crawler.BaseURL)
	c.Crawler.PageURL = getEnvOrDefault("CRAWLER_PAGE_URL", c.Crawler.PageURL)
	c.Crawler.StartPage = getIntOrDefault("CRAWLER_START_PAGE", c.Crawler.StartPage)
	c.Crawler.MaxPages = getIntOrDefault("CRAWLER_MAX_PAGES", c.Crawler.MaxPages)
	c.Crawler.Delay = getDurationOrDefault("CRAWLER_DELAY", c.Crawler.Delay)
	c.Crawler.Timeout = getDurationOrDefault("CRAWLER_TIMEOUT", c.Crawler.Timeout)
	c.Crawler.UserAgent = getEnvOrDefault("CRAWLER_USER_AGENT", c.Crawler.UserAgent)
	c.Crawler.FetchMode = getEnvOrDefault("CRAWLER_FETCH_MODE", c.Crawler.FetchMode)
	c.Crawler.Headless = getBoolOrDefault("CRAWLER_HEADLESS", c.Crawler.Headless)

	c.Transform.ExchangeRate = getFloatOrDefault("TRANSFORM_EXCHANGE_RATE", c.Transform.ExchangeRate)

	c.Database.Enabled = getBoolOrDefault("DB_ENABLED", c.Database.Enabled)
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.Database.Table = getEnvOrDefault("DB_TABLE", c.Database.Table)

	c.Output.Enabled = getBoolOrDefault("CSV_ENABLED", c.Output.Enabled)
	c.Output.CSVPath = getEnvOrDefault("CSV_PATH", c.Output.CSVPath)

	c.Sheets.Enabled = getBoolOrDefault("SHEETS_ENABLED", c.Sheets.Enabled)
	c.Sheets.SpreadsheetID = getEnvOrDefault("SHEETS_SPREADSHEET_ID", c.Sheets.SpreadsheetID)
	c.Sheets.Range = getEnvOrDefault("SHEETS_RANGE", c.Sheets.Range)
	c.Sheets.CredentialsFile = getEnvOrDefault("SHEETS_CREDENTIALS_FILE", c.Sheets.CredentialsFile)

	c.Redis.Enabled = getBoolOrDefault("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnvOrDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntOrDefault("REDIS_DB", c.Redis.DB)
	c.Redis.Stream = getEnvOrDefault("REDIS_STREAM", c.Redis.Stream)

	c.Server.Port = getIntOrDefault("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationOrDefault("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationOrDefault("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", c.Logging.Format)
}

func (c *Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if !strings.Contains(c.Crawler.PageURL, PagePlaceholder) {
		return ErrInvalidPageTemplate
	}

	switch c.Crawler.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return ErrInvalidFetchMode
	}

	if c.Crawler.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Crawler.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Crawler.StartPage < 1 {
		return fmt.Errorf("crawler.start_page must be at least 1, got %d", c.Crawler.StartPage)
	}

	if c.Database.Enabled && c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}

	if c.Output.Enabled && c.Output.CSVPath == "" {
		return ErrMissingCSVPath
	}

	if c.Sheets.Enabled && (c.Sheets.SpreadsheetID == "" || c.Sheets.CredentialsFile == "") {
		return ErrMissingSpreadsheet
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// PageURLFor returns the URL of the given catalog page. Page 1 is the
// unparameterized base URL.
func (c CrawlerConfig) PageURLFor(page int) string {
	if page <= 1 {
		return c.BaseURL
	}
	return strings.ReplaceAll(c.PageURL, PagePlaceholder, strconv.Itoa(page))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
