package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindsgn/snappriceworker/internal/catalog"
	"mindsgn/snappriceworker/internal/crawler"
	"mindsgn/snappriceworker/internal/ingest"
	cerrors "mindsgn/snappriceworker/pkg/errors"
	"mindsgn/snappriceworker/services/store"
)

// storefrontPage1 has two pagination markers and one listing; page 2 has
// the markers but no further results
const storefrontPage1 = `
<!DOCTYPE html>
<html>
<body>
	<span class="s-pagination-item">1</span>
	<span class="s-pagination-item">2</span>
	<div class="sg-col-4-of-12">
		<a class="a-link-normal a-text-normal" href="/dp/123">
			<span class="a-size-base-plus a-color-base a-text-normal">Widget</span>
		</a>
		<img class="s-image" src="http://x/y.jpg" />
		<span class="a-price"><span class="a-offscreen">R199.99</span></span>
	</div>
</body>
</html>
`

const storefrontPage2 = `
<!DOCTYPE html>
<html>
<body>
	<span class="s-pagination-item">1</span>
	<span class="s-pagination-item">2</span>
</body>
</html>
`

// memoryStore is an in-memory CatalogStore with the gateway's semantics
type memoryStore struct {
	mu     sync.Mutex
	items  map[string]catalog.ItemUpsert
	ids    map[string]string
	prices []catalog.PricePoint
	nextID int
}

var _ store.CatalogStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items: make(map[string]catalog.ItemUpsert),
		ids:   make(map[string]string),
	}
}

func (m *memoryStore) DistinctBrands(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var brands []string
	for _, item := range m.items {
		if !seen[item.Brand] {
			seen[item.Brand] = true
			brands = append(brands, item.Brand)
		}
	}
	return brands, nil
}

func (m *memoryStore) UpsertItem(ctx context.Context, item catalog.ItemUpsert) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.Link] = item
	if id, ok := m.ids[item.Link]; ok {
		return id, nil
	}
	m.nextID++
	id := fmt.Sprintf("item-%d", m.nextID)
	m.ids[item.Link] = id
	return id, nil
}

func (m *memoryStore) FindRecentPrice(ctx context.Context, itemID string, since time.Time) (*catalog.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prices {
		if p.ItemID == itemID && p.Date.After(since) {
			point := p
			return &point, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) InsertPrice(ctx context.Context, point catalog.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, point)
	return nil
}

func (m *memoryStore) Close(ctx context.Context) error {
	return nil
}

// newStorefront serves the two-page acme fixture and records fetched pages
func newStorefront(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var requests []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s", r.URL.Path)
		brand := r.URL.Query().Get("k")
		page := r.URL.Query().Get("page")

		mu.Lock()
		requests = append(requests, brand+":"+page)
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch page {
		case "1":
			w.Write([]byte(storefrontPage1))
		default:
			w.Write([]byte(storefrontPage2))
		}
	}))

	return server, &requests
}

func TestCrawlBrandEndToEnd(t *testing.T) {
	server, requests := newStorefront(t)
	defer server.Close()

	catalogStore := newMemoryStore()
	fetcher := crawler.NewHTTPFetcher(server.URL, nil, time.Minute)
	extractor := crawler.NewExtractor(server.URL)
	adapter := ingest.NewAdapter(catalogStore, nil, 12*time.Hour, "R", "zar")
	brandCrawler := crawler.NewCrawler(fetcher, extractor, adapter, time.Millisecond)

	err := brandCrawler.CrawlBrand(context.Background(), "acme")

	reason, ok := cerrors.IsTerminal(err)
	require.True(t, ok)
	assert.Equal(t, cerrors.ReasonPagesExhausted, reason)

	// Both pages fetched in order, nothing past the reported total
	assert.Equal(t, []string{"acme:1", "acme:2"}, *requests)

	// Exactly one item, keyed by the absolutized link
	require.Len(t, catalogStore.items, 1)
	item, ok := catalogStore.items[server.URL+"/dp/123"]
	require.True(t, ok)
	assert.Equal(t, "Widget", item.Title)
	assert.Equal(t, "acme", item.Brand)
	assert.Equal(t, []string{"http://x/y.jpg"}, item.Images)

	// Exactly one price point despite the item appearing on a re-crawl
	// candidate list; page 2 had no listings
	require.Len(t, catalogStore.prices, 1)
	assert.Equal(t, 199.99, catalogStore.prices[0].Price)
	assert.Equal(t, "zar", catalogStore.prices[0].Currency)
}

func TestCrawlBrandDedupAcrossCrawls(t *testing.T) {
	server, _ := newStorefront(t)
	defer server.Close()

	catalogStore := newMemoryStore()
	fetcher := crawler.NewHTTPFetcher(server.URL, nil, time.Minute)
	extractor := crawler.NewExtractor(server.URL)
	adapter := ingest.NewAdapter(catalogStore, nil, 12*time.Hour, "R", "zar")
	brandCrawler := crawler.NewCrawler(fetcher, extractor, adapter, time.Millisecond)

	// Two back-to-back crawls of the same brand: the second one refreshes
	// the item but must not add a second price point inside the window
	for i := 0; i < 2; i++ {
		err := brandCrawler.CrawlBrand(context.Background(), "acme")
		reason, ok := cerrors.IsTerminal(err)
		require.True(t, ok)
		assert.Equal(t, cerrors.ReasonPagesExhausted, reason)
	}

	assert.Len(t, catalogStore.items, 1)
	assert.Len(t, catalogStore.prices, 1)
}
