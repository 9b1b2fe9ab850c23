package crawler

import (
	"context"
	"io"

	"mindsgn/snappriceworker/internal/catalog"
	"mindsgn/snappriceworker/internal/ingest"
)

// PageFetcher retrieves one search-result page for a brand
type PageFetcher interface {
	// FetchPage fetches the markup for the given 1-based page index
	FetchPage(ctx context.Context, brand string, page int) (io.Reader, error)
}

// Persister writes one listing to the catalog. Implementations never return
// an error; every failure is absorbed into a skip outcome so a bad listing
// cannot abort the page.
type Persister interface {
	Persist(ctx context.Context, brand string, listing catalog.Listing) ingest.Outcome
}

// BrandCrawler runs one full crawl for a brand. The returned error is never
// nil: it is either a terminal condition or a fetch/parse failure, and the
// selector treats both the same way.
type BrandCrawler interface {
	CrawlBrand(ctx context.Context, brand string) error
}
