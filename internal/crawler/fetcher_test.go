package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "mindsgn/snappriceworker/pkg/errors"
	"mindsgn/snappriceworker/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

// Ensure MockCacheService implements cache.CacheService
var _ cache.CacheService = (*MockCacheService)(nil)

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{cache: make(map[string][]byte)}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, errors.New("cache miss")
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

func TestHTTPFetcherBuildsSearchURL(t *testing.T) {
	var gotPath string
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.URL, nil, time.Minute)
	body, err := fetcher.FetchPage(context.Background(), "acme tools", 2)
	require.NoError(t, err)

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html>")

	assert.Equal(t, "/s", gotPath)
	assert.Equal(t, "k=acme+tools&page=2", gotQuery)
}

func TestHTTPFetcherSetsBlockOnRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	fetcher := NewHTTPFetcher(server.URL, mockCache, 300*time.Second)

	_, err := fetcher.FetchPage(context.Background(), "acme", 1)
	require.Error(t, err)

	// The block key is set, so the next fetch short-circuits
	val, cacheErr := mockCache.Get(rateLimitKey)
	require.NoError(t, cacheErr)
	assert.Equal(t, "300", string(val))

	_, err = fetcher.FetchPage(context.Background(), "acme", 1)
	require.Error(t, err)
	var ce *cerrors.CrawlError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, cerrors.ErrorTypeRateLimit, ce.Type)
}

func TestHTTPFetcherPlainErrorDoesNotBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	fetcher := NewHTTPFetcher(server.URL, mockCache, 300*time.Second)

	_, err := fetcher.FetchPage(context.Background(), "acme", 1)
	require.Error(t, err)

	_, cacheErr := mockCache.Get(rateLimitKey)
	assert.Error(t, cacheErr, "a plain fetch failure must not set the block key")
}
