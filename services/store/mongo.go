package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mindsgn/snappriceworker/internal/catalog"
	"mindsgn/snappriceworker/logger"
)

const (
	itemsCollection  = "items"
	pricesCollection = "prices"

	connectTimeout = 10 * time.Second
)

// In development the client is cached at package level and reused across
// constructions, so repeated wiring during iterative runs does not pile up
// connections. Production always dials fresh.
var (
	cachedMu     sync.Mutex
	cachedClient *mongo.Client
)

// MongoStore implements CatalogStore on top of MongoDB
type MongoStore struct {
	client    *mongo.Client
	items     *mongo.Collection
	prices    *mongo.Collection
	sourceTag string
	shared    bool
	log       *logger.Logger
}

// MongoConfig holds the connection parameters for the catalog database
type MongoConfig struct {
	URI       string
	Database  string
	SourceTag string

	// ReuseClient enables the development-mode shared client
	ReuseClient bool
}

// NewMongoStore connects to MongoDB and returns a catalog store backed by
// the items and prices collections.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, shared, err := connect(ctx, cfg.URI, cfg.ReuseClient)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)

	return &MongoStore{
		client:    client,
		items:     db.Collection(itemsCollection),
		prices:    db.Collection(pricesCollection),
		sourceTag: cfg.SourceTag,
		shared:    shared,
		log:       logger.ForStore(),
	}, nil
}

func connect(ctx context.Context, uri string, reuse bool) (*mongo.Client, bool, error) {
	if reuse {
		cachedMu.Lock()
		defer cachedMu.Unlock()
		if cachedClient != nil {
			return cachedClient, true, nil
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, false, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, false, fmt.Errorf("mongodb ping: %w", err)
	}

	if reuse {
		cachedClient = client
	}
	return client, reuse, nil
}

// DistinctBrands returns the distinct brand values present among items
func (s *MongoStore) DistinctBrands(ctx context.Context) ([]string, error) {
	values, err := s.items.Distinct(ctx, "brand", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct brands: %w", err)
	}

	brands := make([]string, 0, len(values))
	for _, v := range values {
		if brand, ok := v.(string); ok && brand != "" {
			brands = append(brands, brand)
		}
	}
	return brands, nil
}

// UpsertItem creates or refreshes the item keyed by link and returns the
// hex form of its object id.
func (s *MongoStore) UpsertItem(ctx context.Context, item catalog.ItemUpsert) (string, error) {
	filter := bson.M{"link": item.Link}
	update := bson.M{
		"$set": bson.M{
			"title":   item.Title,
			"brand":   item.Brand,
			"images":  item.Images,
			"link":    item.Link,
			"updated": time.Now(),
			"sources": bson.M{
				"source": s.sourceTag,
			},
		},
	}

	res, err := s.items.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("upsert item: %w", err)
	}

	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}

	// Existing item: resolve the id with a follow-up lookup.
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := s.items.FindOne(ctx, filter).Decode(&doc); err != nil {
		return "", fmt.Errorf("find upserted item: %w", err)
	}
	return doc.ID.Hex(), nil
}

// FindRecentPrice returns the item's price point newer than since, or nil
// when none exists.
func (s *MongoStore) FindRecentPrice(ctx context.Context, itemID string, since time.Time) (*catalog.PricePoint, error) {
	filter := bson.M{
		"itemID": itemID,
		"date":   bson.M{"$gt": since},
	}

	var point catalog.PricePoint
	err := s.prices.FindOne(ctx, filter).Decode(&point)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recent price: %w", err)
	}
	return &point, nil
}

// InsertPrice appends a price point
func (s *MongoStore) InsertPrice(ctx context.Context, point catalog.PricePoint) error {
	if _, err := s.prices.InsertOne(ctx, point); err != nil {
		return fmt.Errorf("insert price: %w", err)
	}
	s.log.Debug().
		Str("item_id", point.ItemID).
		Float64("price", point.Price).
		Msg("Price point inserted")
	return nil
}

// Close disconnects the client unless it is the shared development client
func (s *MongoStore) Close(ctx context.Context) error {
	if s.shared {
		return nil
	}
	return s.client.Disconnect(ctx)
}
