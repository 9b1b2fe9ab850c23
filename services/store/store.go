package store

import (
	"context"
	"time"

	"mindsgn/snappriceworker/internal/catalog"
)

// CatalogStore is the thin gateway over the document database. It carries no
// business logic; the dedup window and upsert policy live in the ingest
// adapter.
type CatalogStore interface {
	// DistinctBrands returns the set of brand values present among items
	DistinctBrands(ctx context.Context) ([]string, error)

	// UpsertItem creates or refreshes the item keyed by its link and
	// returns the item's identity
	UpsertItem(ctx context.Context, item catalog.ItemUpsert) (string, error)

	// FindRecentPrice returns a price point for the item newer than since,
	// or nil when none exists
	FindRecentPrice(ctx context.Context, itemID string, since time.Time) (*catalog.PricePoint, error)

	// InsertPrice appends a price point
	InsertPrice(ctx context.Context, point catalog.PricePoint) error

	// Close releases the underlying connection
	Close(ctx context.Context) error
}
