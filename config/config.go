package config

import (
	"fmt"
	"net/url"
	"time"
)

// Default catalog sections crawled when no seeds are configured. Each URL is
// the first page of a section; the page parameter is rewritten per page.
var DefaultSeeds = []string{
	"http://marketplace.xbox.com/en-US/Games/GamesOnDemand?pagesize=90&sortby=BestSelling&Page=1",
	"http://marketplace.xbox.com/en-US/Games/XboxArcadeGames?SortBy=BestSelling&PageSize=90&Page=1",
	"https://marketplace.xbox.com/en-US/Games/Xbox360Games?pagesize=90&sortby=Title&page=1",
}

// Config holds scraper configuration. Environment variables are the field
// names in upper snake case behind the SCRAPER_ prefix (SCRAPER_MAX_PAGES,
// SCRAPER_OUTPUT_FORMAT, ...).
type Config struct {
	Seeds              []string      `split_words:"true"`
	SiteOrigin         string        `split_words:"true"`
	PageSize           int           `split_words:"true"`
	MaxPages           int           `split_words:"true"` // per section, 0 means no cap
	Parallelism        int           `split_words:"true"`
	Delay              time.Duration `split_words:"true"`
	RandomDelay        time.Duration `split_words:"true"`
	Timeout            time.Duration `split_words:"true"`
	MaxRetries         int           `split_words:"true"`
	RetryBackoff       time.Duration `split_words:"true"`
	RetryBackoffMax    time.Duration `split_words:"true"`
	OutputFile         string        `split_words:"true"`
	OutputFormat       string        `split_words:"true"` // csv, json, dual, sqlite or postgres
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	UserAgent          string        `split_words:"true"`
	Verbose            bool          `split_words:"true"`
	RespectRobotsTxt   bool          `split_words:"true"`
	MetricsAddr        string        `split_words:"true"`
	PipelineBufferSize int           `split_words:"true"`
	BatchSize          int           `split_words:"true"`
	DedupeMaxSize      int           `split_words:"true"`
}

// DefaultConfig returns conservative defaults for the marketplace.
func DefaultConfig() *Config {
	seeds := make([]string, len(DefaultSeeds))
	copy(seeds, DefaultSeeds)

	return &Config{
		Seeds:              seeds,
		SiteOrigin:         "http://marketplace.xbox.com",
		PageSize:           90,
		MaxPages:           0,
		Parallelism:        8,
		Delay:              250 * time.Millisecond,
		RandomDelay:        250 * time.Millisecond,
		Timeout:            15 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       500 * time.Millisecond,
		RetryBackoffMax:    5 * time.Second,
		OutputFile:         "output/marketplace.csv",
		OutputFormat:       "csv",
		UserAgent:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:            false,
		RespectRobotsTxt:   false,
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      100000,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return fmt.Errorf("at least one seed URL is required")
	}
	for _, seed := range c.Seeds {
		if err := validateURL("seed URL", seed); err != nil {
			return err
		}
	}
	if err := validateURL("site origin", c.SiteOrigin); err != nil {
		return err
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}

	switch c.OutputFormat {
	case "csv", "json", "dual", "sqlite":
		if c.OutputFile == "" {
			return fmt.Errorf("output file cannot be empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres output")
		}
	default:
		return fmt.Errorf("output format must be csv, json, dual, sqlite, or postgres")
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
