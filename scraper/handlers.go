package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/aluiziolira/go-scrape-marketplace/parser"
	"github.com/aluiziolira/go-scrape-marketplace/pipeline"
	"github.com/gocolly/colly/v2"
)

// handlePlan schedules every listing page of the section the seed page
// belongs to.
func (s *Scraper) handlePlan(ctx context.Context, seedURL string, doc *parser.Document) {
	pages, err := parser.PlanPages(doc, seedURL, s.cfg.PageSize)
	if err != nil {
		s.recordFailure(seedURL, ErrMalformedListing{URL: seedURL, Err: err})
		return
	}
	if max := s.cfg.MaxPages; max > 0 && len(pages) > max {
		pages = pages[:max]
	}

	slog.Info("section planned",
		slog.String("url", seedURL),
		slog.Int("pages", len(pages)),
	)
	if s.Metrics != nil {
		s.Metrics.AddPlannedPages(len(pages))
	}

	for _, page := range pages {
		s.schedule(ctx, page, phaseListing, nil)
	}
}

// handleListing schedules one detail fetch per listing row.
func (s *Scraper) handleListing(ctx context.Context, doc *parser.Document) {
	atomic.AddInt64(&s.pageCount, 1)

	stubs := parser.ParseListing(doc, s.cfg.SiteOrigin, s.now().Format(discoveryDateLayout))
	for i := range stubs {
		stub := stubs[i]
		if stub.DetailURL == "" {
			continue
		}
		// A product listed in several sections is fetched once and keeps the
		// category of the first listing page that reached it.
		if seen, _ := s.scheduled.ContainsOrAdd(stub.DetailURL, struct{}{}); seen {
			continue
		}

		target, err := parser.DetailFetchURL(stub.DetailURL)
		if err != nil {
			s.recordFailure(stub.DetailURL, err)
			continue
		}
		s.schedule(ctx, target, phaseDetail, &stub)
	}
}

// handleDetail extracts the record for a detail page and emits it unless it
// is excluded.
func (s *Scraper) handleDetail(rctx *colly.Context, pageURL string, doc *parser.Document, sink RecordSink) {
	stub, ok := rctx.GetAny(ctxStub).(models.ItemStub)
	if !ok {
		slog.Error("detail response without listing stub", slog.String("url", pageURL))
		return
	}

	record, keep := parser.ExtractProduct(doc, stub)
	if !keep {
		atomic.AddInt64(&s.excludedCount, 1)
		if s.Metrics != nil {
			s.Metrics.IncExcluded()
		}
		slog.Debug("excluded item", slog.String("url", pageURL))
		return
	}

	if err := sink.Process(record); err != nil {
		if errors.Is(err, pipeline.ErrPipelineClosed) || errors.Is(err, context.Canceled) {
			slog.Debug("record dropped during shutdown", slog.String("url", pageURL))
			return
		}
		slog.Error("pipeline process error", slog.String("url", pageURL), slog.Any("error", err))
		return
	}

	atomic.AddInt64(&s.emittedCount, 1)
	if s.Metrics != nil {
		s.Metrics.IncItems()
	}
}

func (s *Scraper) schedule(ctx context.Context, target, phase string, stub *models.ItemStub) {
	err := s.enqueue(ctx, target, phase, stub)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		slog.Debug("crawl cancelled, request not issued", slog.String("url", target))
	default:
		s.recordFailure(target, err)
	}
}
