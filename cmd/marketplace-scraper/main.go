package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-marketplace/config"
	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/aluiziolira/go-scrape-marketplace/pipeline"
	"github.com/aluiziolira/go-scrape-marketplace/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	seedFile := flag.String("seeds", "", "YAML file listing catalog sections to crawl")
	flag.StringVar(&cfg.SiteOrigin, "origin", cfg.SiteOrigin, "Site origin used to resolve detail links")
	flag.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Items per listing page")
	flag.IntVar(&cfg.MaxPages, "pages", cfg.MaxPages, "Maximum listing pages per section (0 = all)")
	flag.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Number of concurrent requests")
	flag.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Delay between requests")
	flag.DurationVar(&cfg.RandomDelay, "random-delay", cfg.RandomDelay, "Random jitter added to delay")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flag.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Maximum retry attempts per URL")
	flag.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Initial retry backoff")
	flag.DurationVar(&cfg.RetryBackoffMax, "retry-backoff-max", cfg.RetryBackoffMax, "Maximum retry backoff")
	flag.BoolVar(&cfg.RespectRobotsTxt, "respect-robots", cfg.RespectRobotsTxt, "Respect robots.txt directives")
	flag.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Output file path (csv, json, dual, sqlite)")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: csv, json, dual, sqlite, or postgres")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string for -format postgres")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")

	flag.Parse()
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if *seedFile != "" {
		if err := applySeedFile(cfg, *seedFile); err != nil {
			slog.Error("loading seed file", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("crawl_id", s.CrawlID()),
		slog.String("origin", cfg.SiteOrigin),
		slog.Int("sections", len(cfg.Seeds)),
		slog.Int("pages", cfg.MaxPages),
		slog.Int("workers", cfg.Parallelism),
	)

	writer, err := createWriter(cfg, s.CrawlID())
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.Start(cfg.Parallelism)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	startTime := time.Now()
	result, err := s.Run(ctx, p)
	if err != nil {
		slog.Error("crawl failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, time.Since(startTime), outputTarget(cfg), p.GetMetrics())
}

// applySeedFile replaces the seeds from a YAML file. Origin and page size
// given explicitly on the command line win over the file.
func applySeedFile(cfg *config.Config, path string) error {
	seeds, err := config.LoadSeedFile(path)
	if err != nil {
		return err
	}

	origin, pageSize := cfg.SiteOrigin, cfg.PageSize
	seeds.Apply(cfg)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "origin":
			cfg.SiteOrigin = origin
		case "page-size":
			cfg.PageSize = pageSize
		}
	})
	slog.Info("loaded seed file", slog.String("path", path), slog.Int("sections", len(cfg.Seeds)))
	return nil
}

func createWriter(cfg *config.Config, crawlID string) (pipeline.OutputWriter, error) {
	switch cfg.OutputFormat {
	case "json":
		return pipeline.NewJSONWriter(cfg.OutputFile, crawlID)
	case "csv":
		return pipeline.NewCSVWriter(cfg.OutputFile, crawlID)
	case "dual":
		jsonFilename := strings.TrimSuffix(cfg.OutputFile, ".csv") + ".json"
		return pipeline.NewDualWriter(cfg.OutputFile, jsonFilename, crawlID)
	case "sqlite":
		return pipeline.NewSQLiteWriter(cfg.OutputFile, crawlID)
	case "postgres":
		return pipeline.NewPostgresWriter(cfg.DatabaseURL, crawlID)
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
}

func outputTarget(cfg *config.Config) string {
	if cfg.OutputFormat == "postgres" {
		return "postgres"
	}
	return cfg.OutputFile
}

func printSummary(result *models.ScraperResult, duration time.Duration, output string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")

	written := int64(0)
	if processed, ok := metrics["processed_records"].(int64); ok {
		written = processed
	}
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(written) / duration.Seconds()
	}

	fmt.Printf("  Crawl ID:      %s\n", result.CrawlID)
	fmt.Printf("  Records:       %d\n", written)
	fmt.Printf("  Excluded:      %d\n", result.ExcludedCount)
	fmt.Printf("  Listing pages: %d\n", result.PageCount)
	successRate := 0.0
	if result.RequestCount > 0 {
		successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
	}
	fmt.Printf("  Success rate:  %.2f%%\n", successRate)
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Items/sec:     %.2f\n", itemsPerSec)
	fmt.Printf("  Output:        %s\n", output)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
