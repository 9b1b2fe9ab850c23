package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mindsgn/snappriceworker/internal/ingest"
	"mindsgn/snappriceworker/logger"
	cerrors "mindsgn/snappriceworker/pkg/errors"
)

// Crawler drives the page loop for one brand at a time. The page cursor is
// local to each CrawlBrand call, so a fresh invocation always starts at
// page 1.
type Crawler struct {
	fetcher   PageFetcher
	extractor *Extractor
	persister Persister
	pageDelay time.Duration
}

// NewCrawler creates a brand crawler
func NewCrawler(fetcher PageFetcher, extractor *Extractor, persister Persister, pageDelay time.Duration) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		persister: persister,
		pageDelay: pageDelay,
	}
}

// CrawlBrand crawls every search page for the brand. It always returns a
// non-nil error: a terminal condition (brand not found, pages exhausted) or
// a fetch/parse failure. The selector handles all of them with the same
// backoff.
func (c *Crawler) CrawlBrand(ctx context.Context, brand string) error {
	log := logger.ForCrawler(brand)

	for page := 1; ; page++ {
		body, err := c.fetcher.FetchPage(ctx, brand, page)
		if err != nil {
			return cerrors.NewNetwork(brand, fmt.Sprintf("fetch page %d", page), err)
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return cerrors.NewParsing(brand, fmt.Sprintf("parse page %d", page), err)
		}

		totalPages := c.extractor.PageCount(doc)
		if totalPages == 0 {
			// No pagination markers at all: the brand has no results.
			// Extraction is skipped entirely.
			return cerrors.NewBrandNotFound(brand)
		}

		saved, skipped := 0, 0
		for listing := range c.extractor.Listings(doc) {
			if c.persister.Persist(ctx, brand, listing) == ingest.OutcomeSaved {
				saved++
			} else {
				skipped++
			}
		}

		log.Info().
			Int("page", page).
			Int("total_pages", totalPages).
			Int("saved", saved).
			Int("skipped", skipped).
			Msg("Page crawled")

		if page >= totalPages {
			return cerrors.NewPagesExhausted(brand, totalPages)
		}

		// Rate-limit pause between successive page fetches.
		select {
		case <-ctx.Done():
			return cerrors.NewNetwork(brand, "crawl interrupted", ctx.Err())
		case <-time.After(c.pageDelay):
		}
	}
}
