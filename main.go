package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mindsgn/snappriceworker/config"
	"mindsgn/snappriceworker/internal/crawler"
	"mindsgn/snappriceworker/internal/ingest"
	"mindsgn/snappriceworker/logger"
	"mindsgn/snappriceworker/services/cache"
	"mindsgn/snappriceworker/services/publisher"
	"mindsgn/snappriceworker/services/store"
	"mindsgn/snappriceworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Dur("page_delay", cfg.PageDelay).
		Dur("dedup_window", cfg.DedupWindow).
		Msg("Starting catalog worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Connect to the catalog store
	catalogStore, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:         cfg.MongoURI,
		Database:    cfg.MongoDatabase,
		SourceTag:   cfg.SourceTag,
		ReuseClient: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to catalog store")
	}
	defer catalogStore.Close(ctx)

	log.Info().Str("database", cfg.MongoDatabase).Msg("Connected to MongoDB")

	// Optional rate-limit block cache
	var blockCache cache.CacheService
	if cfg.MemcacheAddr != "" {
		blockCache = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Rate-limit block cache enabled")
	}

	// Optional price-event publisher
	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		defer redisPub.Close()
		pub = redisPub
		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Price-event publisher enabled")
	}

	// Assemble the crawl pipeline
	fetcher := crawler.NewHTTPFetcher(cfg.BaseURL, blockCache, cfg.RateLimitBlock)
	extractor := crawler.NewExtractor(cfg.BaseURL)
	adapter := ingest.NewAdapter(catalogStore, pub, cfg.DedupWindow, cfg.CurrencySymbol, cfg.CurrencyCode)
	brandCrawler := crawler.NewCrawler(fetcher, extractor, adapter, cfg.PageDelay)

	w := worker.NewWorker(ctx, catalogStore, brandCrawler, cfg.RetryDelay)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting brand selection loop")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
