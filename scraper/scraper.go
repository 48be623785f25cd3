// Package scraper drives the marketplace crawl: it plans listing pages per
// catalog section, follows every listing row to its detail page and hands
// finished records to a sink.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-scrape-marketplace/config"
	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/aluiziolira/go-scrape-marketplace/parser"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Request context keys.
const (
	ctxPhase = "phase"
	ctxStart = "start"
	ctxStub  = "stub"
)

// Crawl phases, one per response handler.
const (
	phasePlan    = "plan"
	phaseListing = "listing"
	phaseDetail  = "detail"
)

const discoveryDateLayout = "2006-01-02"

// RecordSink receives finished product records. Implementations must accept
// records from concurrent callers in any order.
type RecordSink interface {
	Process(records ...*models.ProductRecord) error
}

// Scraper wraps the colly collector and retry logic for the marketplace.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	retry     *retryManager
	Metrics   *Metrics

	crawlID   string
	now       func() time.Time
	scheduled *lru.Cache[string, struct{}]

	requestCount  int64
	pageCount     int64
	errorCount    int64
	emittedCount  int64
	excludedCount int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int

	handlersOnce sync.Once
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	domains, err := allowedDomains(cfg)
	if err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.Async(true),
		colly.AllowedDomains(domains...),
		colly.UserAgent(cfg.UserAgent),
	)

	// The seed page is fetched once to plan its section and again as page 1.
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	scheduled, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create detail dedupe cache: %w", err)
	}

	s := &Scraper{
		cfg:          cfg,
		collector:    collector,
		crawlID:      uuid.NewString(),
		now:          time.Now,
		scheduled:    scheduled,
		errorsByType: make(map[string]int),
		Metrics:      NewMetrics(),
	}
	s.retry = newRetryManager(cfg, s.Metrics)
	return s, nil
}

// CrawlID identifies this scraper's crawl in logs and stored records.
func (s *Scraper) CrawlID() string {
	return s.crawlID
}

// Run crawls every seed section and streams records into sink. It returns
// once all requests, including scheduled retries, have completed. Cancelling
// ctx stops new requests from being issued.
func (s *Scraper) Run(ctx context.Context, sink RecordSink) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.retry.SetContext(ctx)
	s.configureHandlers(ctx, sink)

	start := time.Now()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.retry.Stop()
		case <-done:
		}
	}()

	slog.Info("crawl started",
		slog.String("crawl_id", s.crawlID),
		slog.Int("sections", len(s.cfg.Seeds)),
	)
	for _, seed := range s.cfg.Seeds {
		if err := s.enqueue(ctx, seed, phasePlan, nil); err != nil {
			s.collector.Wait()
			s.retry.Stop()
			return nil, fmt.Errorf("initial visit %s: %w", seed, err)
		}
	}

	for {
		s.collector.Wait()
		if s.retry.Pending() == 0 {
			break
		}
		s.retry.Wait()
	}
	s.retry.Stop()

	result := &models.ScraperResult{
		CrawlID:       s.crawlID,
		StartTime:     start,
		EndTime:       time.Now(),
		TotalCount:    int(atomic.LoadInt64(&s.emittedCount)),
		ExcludedCount: int(atomic.LoadInt64(&s.excludedCount)),
		ErrorCount:    int(atomic.LoadInt64(&s.errorCount)),
		FailedURLs:    s.snapshotFailedURLs(),
		ErrorsByType:  s.snapshotErrors(),
		RetryCount:    s.retry.TotalRetries(),
		RequestCount:  int(atomic.LoadInt64(&s.requestCount)),
		PageCount:     int(atomic.LoadInt64(&s.pageCount)),
	}
	return result, nil
}

func (s *Scraper) configureHandlers(ctx context.Context, sink RecordSink) {
	s.handlersOnce.Do(func() {
		s.collector.OnRequest(func(r *colly.Request) {
			r.Ctx.Put(ctxStart, time.Now())
			current := atomic.AddInt64(&s.requestCount, 1)
			if s.Metrics != nil {
				s.Metrics.IncRequest(r.Ctx.Get(ctxPhase))
			}
			if current%50 == 0 {
				slog.Debug("scraper request progress",
					slog.Int64("requests", current),
					slog.Int64("pages", atomic.LoadInt64(&s.pageCount)),
					slog.String("url", r.URL.String()),
				)
			}
		})

		s.collector.OnResponse(func(r *colly.Response) {
			phase := r.Ctx.Get(ctxPhase)
			if s.Metrics != nil {
				if start, ok := r.Ctx.GetAny(ctxStart).(time.Time); ok {
					s.Metrics.ObserveDuration(phase, time.Since(start))
				}
			}

			pageURL := r.Request.URL.String()
			doc, err := parser.ParseHTML(bytes.NewReader(r.Body))
			if err != nil {
				s.recordFailure(pageURL, err)
				return
			}

			switch phase {
			case phasePlan:
				s.handlePlan(ctx, pageURL, doc)
			case phaseListing:
				s.handleListing(ctx, doc)
			case phaseDetail:
				s.handleDetail(r.Ctx, pageURL, doc, sink)
			default:
				slog.Warn("response without crawl phase", slog.String("url", pageURL))
			}
		})

		s.collector.OnError(func(r *colly.Response, err error) {
			statusCode := 0
			pageURL := ""
			var retry func() error
			if r != nil {
				statusCode = r.StatusCode
				if r.Request != nil && r.Request.URL != nil {
					pageURL = r.Request.URL.String()
					retry = r.Request.Retry
				}
			}

			category := errorTypeLabel(classifyError(err, statusCode))
			atomic.AddInt64(&s.errorCount, 1)

			s.mu.Lock()
			s.errorsByType[category]++
			s.mu.Unlock()

			slog.Error("request error",
				slog.String("url", pageURL),
				slog.Int("status", statusCode),
				slog.String("category", category),
				slog.Any("error", err),
			)
			if s.Metrics != nil {
				s.Metrics.IncError(category)
			}

			if retry == nil || !s.retry.Schedule(r.Ctx.Get(ctxPhase)+" "+pageURL, retry) {
				s.mu.Lock()
				s.failedURLs = append(s.failedURLs, pageURL)
				s.mu.Unlock()
			}
		})
	})
}

// enqueue issues an asynchronous GET. Nothing is issued once ctx is done.
func (s *Scraper) enqueue(ctx context.Context, target, phase string, stub *models.ItemStub) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rctx := colly.NewContext()
	rctx.Put(ctxPhase, phase)
	if stub != nil {
		rctx.Put(ctxStub, *stub)
	}
	return s.collector.Request(http.MethodGet, target, nil, rctx, nil)
}

// recordFailure counts a failure that is not retried.
func (s *Scraper) recordFailure(pageURL string, err error) {
	atomic.AddInt64(&s.errorCount, 1)
	category := errorTypeLabel(err)

	s.mu.Lock()
	s.errorsByType[category]++
	s.failedURLs = append(s.failedURLs, pageURL)
	s.mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.IncError(category)
	}
	slog.Error("page failed",
		slog.String("url", pageURL),
		slog.String("category", category),
		slog.Any("error", err),
	)
}

func (s *Scraper) snapshotFailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

func (s *Scraper) snapshotErrors() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}

func allowedDomains(cfg *config.Config) ([]string, error) {
	seen := make(map[string]struct{})
	var domains []string
	for _, raw := range append([]string{cfg.SiteOrigin}, cfg.Seeds...) {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse url %q: %w", raw, err)
		}
		host := parsed.Hostname()
		if host == "" {
			return nil, fmt.Errorf("url %q must include a host", raw)
		}
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		domains = append(domains, host)
	}
	return domains, nil
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}
