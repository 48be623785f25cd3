package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-marketplace/config"
	"github.com/aluiziolira/go-scrape-marketplace/models"
)

type mockWriter struct {
	mu          sync.Mutex
	batches     [][]*models.ProductRecord
	closed      bool
	validateErr error
}

func (mw *mockWriter) Write(records []*models.ProductRecord) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	copyBatch := make([]*models.ProductRecord, len(records))
	copy(copyBatch, records)
	mw.batches = append(mw.batches, copyBatch)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.mu.Lock()
	mw.closed = true
	mw.mu.Unlock()
	return nil
}

func (mw *mockWriter) Validate() error {
	return mw.validateErr
}

func (mw *mockWriter) totalWritten() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	total := 0
	for _, batch := range mw.batches {
		total += len(batch)
	}
	return total
}

func (mw *mockWriter) batchSizes() []int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	sizes := make([]int, 0, len(mw.batches))
	for _, batch := range mw.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}

type blockingWriter struct {
	blockCh chan struct{}
}

func (bw *blockingWriter) Write(records []*models.ProductRecord) error {
	<-bw.blockCh
	return nil
}

func (bw *blockingWriter) Close() error {
	return nil
}

func (bw *blockingWriter) Validate() error {
	return nil
}

type failingWriter struct{}

func (failingWriter) Write([]*models.ProductRecord) error { return errors.New("disk full") }
func (failingWriter) Close() error { return nil }
func (failingWriter) Validate() error { return nil }

func testRecord(i int) *models.ProductRecord {
	return &models.ProductRecord{
		ItemStub: models.ItemStub{
			Name:          "Game " + strconv.Itoa(i),
			Category:      "Games on Demand",
			DetailURL:     "http://example.test/en-US/Product/" + strconv.Itoa(i) + "?SortBy=BestSelling",
			DiscoveryDate: "2026-10-18",
		},
		Developer: "Studio",
	}
}

func TestPipelineProcessValidationAndDedup(t *testing.T) {
	cfg := config.DefaultConfig()
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	valid := testRecord(1)
	invalid := testRecord(2)
	invalid.Name = ""
	duplicate := testRecord(1)

	if err := p.Process(valid, invalid, duplicate); err != nil {
		t.Fatalf("process: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.totalWritten(); got != 1 {
		t.Fatalf("written records = %d, want 1", got)
	}

	metrics := p.GetMetrics()
	validation, ok := metrics["validation_errors"].(map[string]int)
	if !ok {
		t.Fatalf("expected validation errors map")
	}
	if validation["invalid_record"] == 0 {
		t.Fatalf("expected invalid_record validation error")
	}
	if validation["duplicate_url"] == 0 {
		t.Fatalf("expected duplicate_url validation error")
	}
	if processed := metrics["processed_records"].(int64); processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
}

func TestPipelineBatchFlushThreshold(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 64
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	for i := 0; i < 65; i++ {
		if err := p.Process(testRecord(i)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	sizes := writer.batchSizes()
	if len(sizes) != 2 {
		t.Fatalf("batch writes = %d, want 2", len(sizes))
	}
	if sizes[0] != 64 || sizes[1] != 1 {
		t.Fatalf("batch sizes = %v, want [64 1]", sizes)
	}
}

func TestPipelineCloseDrainsPendingItems(t *testing.T) {
	cfg := config.DefaultConfig()
	writer := &mockWriter{}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(2)

	for i := 0; i < 100; i++ {
		if err := p.Process(testRecord(i + 200)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := writer.totalWritten(); got != 100 {
		t.Fatalf("written records = %d, want 100", got)
	}
}

func TestPipelineRejectsAfterClose(t *testing.T) {
	p := NewPipeline(context.Background(), &mockWriter{}, config.DefaultConfig())
	p.Start(1)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Process(testRecord(1)); !errors.Is(err, ErrPipelineClosed) {
		t.Fatalf("expected ErrPipelineClosed, got %v", err)
	}
}

func TestPipelineSurfacesWriterError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1
	p := NewPipeline(context.Background(), failingWriter{}, cfg)
	p.Start(1)

	if err := p.Process(testRecord(1)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Close(); err == nil {
		t.Fatalf("expected write error from close")
	}
}

func TestPipelineCloseTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BatchSize = 1

	writer := &blockingWriter{blockCh: make(chan struct{})}
	p := NewPipeline(context.Background(), writer, cfg)
	p.Start(1)

	if err := p.Process(testRecord(1)); err != nil {
		t.Fatalf("process: %v", err)
	}

	previousTimeout := drainTimeout
	drainTimeout = 25 * time.Millisecond
	t.Cleanup(func() {
		drainTimeout = previousTimeout
		close(writer.blockCh)
	})

	if err := p.Close(); err == nil || !errors.Is(err, ErrPipelineCloseTimeout) {
		t.Fatalf("expected close timeout error, got %v", err)
	}
}
