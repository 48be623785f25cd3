package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-scrape-marketplace/config"
)

// retryManager re-issues failed requests after a capped exponential backoff.
// Pending retries are tracked so the crawl does not finish while one is
// still waiting on its timer.
type retryManager struct {
	cfg     *config.Config
	metrics *Metrics
	ctx     context.Context

	mu           sync.Mutex
	idle         *sync.Cond // broadcast when pendingCount drops to zero
	attempts     map[string]int
	timers       map[string]*time.Timer
	pendingCount int
	totalRetries int
	stopped      bool
}

func newRetryManager(cfg *config.Config, metrics *Metrics) *retryManager {
	rm := &retryManager{
		cfg:      cfg,
		attempts: make(map[string]int),
		timers:   make(map[string]*time.Timer),
		metrics:  metrics,
		ctx:      context.Background(),
	}
	rm.idle = sync.NewCond(&rm.mu)
	return rm
}

// Schedule arranges for retry to run after a backoff. It reports false when
// key has exhausted its attempts or the manager is stopped.
func (rm *retryManager) Schedule(key string, retry func() error) bool {
	if rm.cfg.MaxRetries == 0 {
		return false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.stopped {
		return false
	}
	if rm.ctx != nil && rm.ctx.Err() != nil {
		return false
	}

	attempt := rm.attempts[key]
	if attempt >= rm.cfg.MaxRetries {
		return false
	}

	attempt++
	rm.attempts[key] = attempt
	rm.totalRetries++
	if rm.metrics != nil {
		rm.metrics.IncRetries()
	}

	delay := rm.backoff(attempt)
	rm.resetTimerLocked(key)
	rm.pendingCount++
	rm.timers[key] = time.AfterFunc(delay, func() {
		rm.fireRetry(key, retry)
	})
	return true
}

func (rm *retryManager) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := rm.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := rm.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func (rm *retryManager) resetTimerLocked(key string) {
	if timer, ok := rm.timers[key]; ok {
		if timer.Stop() {
			rm.doneLocked()
		}
		delete(rm.timers, key)
	}
}

func (rm *retryManager) fireRetry(key string, retry func() error) {
	rm.mu.Lock()
	delete(rm.timers, key)
	stopped := rm.stopped
	ctx := rm.ctx
	rm.mu.Unlock()

	defer func() {
		rm.mu.Lock()
		rm.doneLocked()
		rm.mu.Unlock()
	}()

	if stopped || (ctx != nil && ctx.Err() != nil) {
		return
	}
	if err := retry(); err != nil {
		slog.Debug("retry request failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (rm *retryManager) doneLocked() {
	rm.pendingCount--
	if rm.pendingCount == 0 {
		rm.idle.Broadcast()
	}
}

// Pending returns the number of retries waiting on their timer.
func (rm *retryManager) Pending() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.pendingCount
}

// Wait blocks until every scheduled retry has fired or been stopped.
func (rm *retryManager) Wait() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for rm.pendingCount > 0 {
		rm.idle.Wait()
	}
}

func (rm *retryManager) Stop() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.stopped {
		return
	}

	rm.stopped = true
	for key, timer := range rm.timers {
		if timer.Stop() {
			rm.doneLocked()
		}
		delete(rm.timers, key)
	}
}

func (rm *retryManager) TotalRetries() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.totalRetries
}

func (rm *retryManager) SetContext(ctx context.Context) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if ctx == nil {
		rm.ctx = context.Background()
		return
	}
	rm.ctx = ctx
}
