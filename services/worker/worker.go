package worker

import (
	"context"
	"math"
	"math/rand"
	"time"

	"mindsgn/snappriceworker/internal/crawler"
	"mindsgn/snappriceworker/logger"
	cerrors "mindsgn/snappriceworker/pkg/errors"
	"mindsgn/snappriceworker/services/store"
)

// Worker is the brand selector: it draws a random known brand, hands it to
// the crawler, and retries forever with a fixed backoff. Every crawl outcome
// routes through the same backoff; there is no separate success path.
type Worker struct {
	ctx        context.Context
	store      store.CatalogStore
	crawler    crawler.BrandCrawler
	retryDelay time.Duration
	rand       *rand.Rand
	log        *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(ctx context.Context, s store.CatalogStore, c crawler.BrandCrawler, retryDelay time.Duration) *Worker {
	return &Worker{
		ctx:        ctx,
		store:      s,
		crawler:    c,
		retryDelay: retryDelay,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        logger.ForSelector(),
	}
}

// Start runs the selection loop until the context is cancelled
func (w *Worker) Start() error {
	for {
		w.runOnce()

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.retryDelay):
		}
	}
}

// runOnce performs one selection cycle: draw a brand and crawl it. Failures
// at any stage just end the cycle; Start applies the backoff.
func (w *Worker) runOnce() {
	brands, err := w.store.DistinctBrands(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Brand lookup failed")
		return
	}
	if len(brands) == 0 {
		// No seed data yet; handled like any other failure.
		w.log.Warn().Msg("No brands in catalog")
		return
	}

	brand := brands[w.drawIndex(len(brands))]
	w.log.Info().Str("brand", brand).Int("brand_count", len(brands)).Msg("Brand selected")

	err = w.crawler.CrawlBrand(w.ctx, brand)
	if reason, ok := cerrors.IsTerminal(err); ok {
		w.log.Info().Str("brand", brand).Str("reason", string(reason)).Msg("Crawl finished")
		return
	}
	w.log.Error().Str("brand", brand).Err(err).Msg("Crawl failed")
}

// drawIndex draws a random brand index. This keeps the historical draw
// shape: a uniform float over [0, n-1] rounded to the nearest index, which
// gives the first and last brand half the weight of interior ones.
// Calibration downstream assumes this distribution, so it is kept rather
// than silently made uniform.
func (w *Worker) drawIndex(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(w.rand.Float64() * float64(n-1)))
}
