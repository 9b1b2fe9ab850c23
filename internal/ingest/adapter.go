package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mindsgn/snappriceworker/internal/catalog"
	"mindsgn/snappriceworker/logger"
	"mindsgn/snappriceworker/services/publisher"
	"mindsgn/snappriceworker/services/store"
)

// Outcome reports what happened to one listing. There is no error outcome:
// failures are logged here and folded into a skip so the page crawl keeps
// moving.
type Outcome int

const (
	// OutcomeSaved means the item was upserted and a price point inserted
	OutcomeSaved Outcome = iota
	// OutcomeSkippedRecentPrice means the item already has a price point
	// inside the dedup window
	OutcomeSkippedRecentPrice
	// OutcomeSkippedInvalidPrice means the raw price text did not parse
	OutcomeSkippedInvalidPrice
	// OutcomeSkippedStore means a store operation failed
	OutcomeSkippedStore
)

// String implements fmt.Stringer
func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkippedRecentPrice:
		return "skipped_recent_price"
	case OutcomeSkippedInvalidPrice:
		return "skipped_invalid_price"
	case OutcomeSkippedStore:
		return "skipped_store"
	default:
		return "unknown"
	}
}

// Adapter turns a raw listing into catalog mutations: an idempotent item
// upsert followed by a dedup-checked price insert.
type Adapter struct {
	store     store.CatalogStore
	publisher publisher.Publisher
	window    time.Duration
	symbol    string
	currency  string
	now       func() time.Time
	log       *logger.Logger
}

// NewAdapter creates a persistence adapter. The publisher is optional; when
// nil no price events are emitted.
func NewAdapter(s store.CatalogStore, pub publisher.Publisher, window time.Duration, symbol, currency string) *Adapter {
	return &Adapter{
		store:     s,
		publisher: pub,
		window:    window,
		symbol:    symbol,
		currency:  currency,
		now:       time.Now,
		log:       logger.ForIngest(),
	}
}

// Persist writes one listing. Item upsert first, then a price insert unless
// a point already exists inside the dedup window.
func (a *Adapter) Persist(ctx context.Context, brand string, listing catalog.Listing) Outcome {
	price, err := ParsePrice(listing.RawPrice, a.symbol)
	if err != nil {
		a.log.Debug().
			Str("link", listing.Link).
			Str("raw_price", listing.RawPrice).
			Err(err).
			Msg("Listing dropped: bad price")
		return OutcomeSkippedInvalidPrice
	}

	var images []string
	if listing.Image != "" {
		images = []string{listing.Image}
	}

	itemID, err := a.store.UpsertItem(ctx, catalog.ItemUpsert{
		Link:   listing.Link,
		Title:  listing.Title,
		Brand:  brand,
		Images: images,
	})
	if err != nil {
		a.log.Error().Str("link", listing.Link).Err(err).Msg("Item upsert failed")
		return OutcomeSkippedStore
	}

	now := a.now()
	recent, err := a.store.FindRecentPrice(ctx, itemID, now.Add(-a.window))
	if err != nil {
		a.log.Error().Str("item_id", itemID).Err(err).Msg("Recent price lookup failed")
		return OutcomeSkippedStore
	}
	if recent != nil {
		// Already have a fresh observation; not an error.
		return OutcomeSkippedRecentPrice
	}

	point := catalog.PricePoint{
		ItemID:   itemID,
		Date:     now,
		Currency: a.currency,
		Price:    price,
	}
	if err := a.store.InsertPrice(ctx, point); err != nil {
		a.log.Error().Str("item_id", itemID).Err(err).Msg("Price insert failed")
		return OutcomeSkippedStore
	}

	a.publish(itemID, brand, listing, point)
	return OutcomeSaved
}

// publish emits a price event, best effort
func (a *Adapter) publish(itemID, brand string, listing catalog.Listing, point catalog.PricePoint) {
	if a.publisher == nil {
		return
	}

	event := catalog.PriceEvent{
		ItemID:   itemID,
		Link:     listing.Link,
		Title:    listing.Title,
		Brand:    brand,
		Price:    point.Price,
		Currency: point.Currency,
		Date:     point.Date,
	}

	data, err := json.Marshal(event)
	if err != nil {
		a.log.Error().Err(err).Msg("Price event marshal failed")
		return
	}
	if err := a.publisher.Publish(data); err != nil {
		a.log.Warn().Err(err).Msg("Price event publish failed")
	}
}

// ParsePrice splits raw price text on the currency symbol and parses the
// numeric remainder. Thousands separators are tolerated; anything else is an
// error, never a zero price.
func ParsePrice(raw, symbol string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty price text")
	}

	parts := strings.SplitN(raw, symbol, 2)
	if len(parts) < 2 {
		return 0, fmt.Errorf("currency symbol %q not found in %q", symbol, raw)
	}

	numeric := strings.TrimSpace(strings.ReplaceAll(parts[1], ",", ""))
	numeric = strings.ReplaceAll(numeric, " ", "")

	price, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, fmt.Errorf("price %q out of range", raw)
	}
	return price, nil
}
