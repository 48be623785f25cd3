package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry           *prometheus.Registry
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	PagesPlannedTotal  prometheus.Counter
	ItemsScrapedTotal  prometheus.Counter
	ItemsExcludedTotal prometheus.Counter
	RetriesTotal       prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_requests_total",
			Help: "Total HTTP requests issued by the scraper, by crawl phase.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_request_duration_seconds",
			Help:    "HTTP request latency for scraper requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	pagesPlanned := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_listing_pages_planned_total",
			Help: "Total listing pages scheduled from section item counts.",
		},
	)
	itemsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_items_scraped_total",
			Help: "Total number of product records sent to the pipeline.",
		},
	)
	itemsExcluded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_items_excluded_total",
			Help: "Total number of detail pages dropped by the exclusion filter.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_retries_total",
			Help: "Total number of retry attempts scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, pagesPlanned, itemsScraped, itemsExcluded, retries, errorsTotal)

	return &Metrics{
		Registry:           registry,
		RequestsTotal:      requests,
		RequestDuration:    requestDuration,
		PagesPlannedTotal:  pagesPlanned,
		ItemsScrapedTotal:  itemsScraped,
		ItemsExcludedTotal: itemsExcluded,
		RetriesTotal:       retries,
		ErrorsTotal:        errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// AddPlannedPages adds n scheduled listing pages.
func (m *Metrics) AddPlannedPages(n int) {
	if m == nil {
		return
	}
	m.PagesPlannedTotal.Add(float64(n))
}

// IncItems increments the items scraped counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsScrapedTotal.Inc()
}

// IncExcluded increments the excluded items counter.
func (m *Metrics) IncExcluded() {
	if m == nil {
		return
	}
	m.ItemsExcludedTotal.Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
