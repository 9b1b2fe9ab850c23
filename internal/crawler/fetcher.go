package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"mindsgn/snappriceworker/helpers"
	cerrors "mindsgn/snappriceworker/pkg/errors"
	"mindsgn/snappriceworker/services/cache"
)

// rateLimitKey is the block-cache key set when the storefront answers 429.
const rateLimitKey = "storefront_rate_limited"

// HTTPFetcher fetches search-result pages from the storefront
type HTTPFetcher struct {
	baseURL   string
	cacheSvc  cache.CacheService
	blockTime time.Duration
}

// NewHTTPFetcher creates a fetcher for the given storefront base URL. The
// cache service is optional; when present it is used to back off from the
// storefront after a rate-limit response.
func NewHTTPFetcher(baseURL string, cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL:   baseURL,
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
	}
}

// FetchPage fetches one search-result page for a brand
func (f *HTTPFetcher) FetchPage(ctx context.Context, brand string, page int) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A standing block means the storefront rate limited us recently.
	if f.cacheSvc != nil {
		if _, err := f.cacheSvc.Get(rateLimitKey); err == nil {
			return nil, cerrors.NewRateLimit(brand, f.blockTime)
		}
	}

	pageURL := fmt.Sprintf("%s/s?k=%s&page=%d", f.baseURL, url.QueryEscape(brand), page)

	body, err := helpers.FetchWithRandomHeaders(pageURL)
	if err != nil {
		if f.cacheSvc != nil && helpers.IsRateLimited(err) {
			blockSeconds := fmt.Sprintf("%d", int(f.blockTime/time.Second))
			f.cacheSvc.Set(rateLimitKey, []byte(blockSeconds), f.blockTime)
		}
		return nil, err
	}

	return body, nil
}
