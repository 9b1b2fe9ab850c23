package catalog

import "time"

// Listing is one raw search-result candidate extracted from a storefront
// page. Fields are whatever the markup yielded; validation happens at the
// persistence boundary, not here.
type Listing struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	Link     string `json:"link"`
	RawPrice string `json:"raw_price"`
}

// ItemUpsert carries the fields written on every item upsert. The link is
// the natural key; there is no upstream item id.
type ItemUpsert struct {
	Link   string
	Title  string
	Brand  string
	Images []string
}

// PricePoint is a timestamped price observation for an item. Points are
// append-only; the worker never mutates or deletes them.
type PricePoint struct {
	ItemID   string    `bson:"itemID" json:"item_id"`
	Date     time.Time `bson:"date" json:"date"`
	Currency string    `bson:"currency" json:"currency"`
	Price    float64   `bson:"price" json:"price"`
}

// PriceEvent is published to the event stream after a price point lands.
type PriceEvent struct {
	ItemID   string    `json:"item_id"`
	Link     string    `json:"link"`
	Title    string    `json:"title"`
	Brand    string    `json:"brand"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
}
