// Package dataset assembles the full festival menu: the four backing-store
// queries fanned out concurrently, live ratings overlaid from the rating
// cache, and the result memoized to bound backing-store load.
package dataset

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cbrevik/cbc-menu/internal/domain"
	"github.com/cbrevik/cbc-menu/internal/metrics"
)

// Source is the backing-store contract for the four menu queries.
type Source interface {
	Beers(ctx context.Context) ([]domain.Beer, error)
	Breweries(ctx context.Context) ([]string, error)
	Superstyles(ctx context.Context) ([]string, error)
	Metastyles(ctx context.Context) ([]string, error)
}

// RatingOverlay is the rating cache surface the service needs: a resync
// before each rebuild, then per-beer lookups while overlaying.
type RatingOverlay interface {
	Refresh(ctx context.Context) error
	Entry(beerID int) (domain.RatingEntry, bool)
}

// Service memoizes the assembled dataset for a TTL window. Rating mutations
// bypass this memo entirely (they flow over the realtime channel), so live
// ratings stay current between rebuilds.
type Service struct {
	source  Source
	ratings RatingOverlay
	clock   clockwork.Clock
	ttl     time.Duration

	group singleflight.Group

	mu       sync.Mutex
	cached   *domain.Dataset
	cachedAt time.Time
}

func NewService(source Source, ratings RatingOverlay, clock clockwork.Clock, ttl time.Duration) *Service {
	return &Service{
		source:  source,
		ratings: ratings,
		clock:   clock,
		ttl:     ttl,
	}
}

// Dataset returns the current menu snapshot, rebuilding it from the backing
// store when the memoized copy has expired. Concurrent callers share a single
// rebuild. On failure no partial dataset is ever returned, and a previously
// memoized copy past its TTL is not served as a fallback.
func (s *Service) Dataset(ctx context.Context) (*domain.Dataset, error) {
	s.mu.Lock()
	if s.cached != nil && s.clock.Since(s.cachedAt) < s.ttl {
		cached := s.cached
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	result, err, _ := s.group.Do("dataset", func() (any, error) {
		ds, err := s.rebuild(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = ds
		s.cachedAt = s.clock.Now()
		s.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Dataset), nil
}

func (s *Service) rebuild(ctx context.Context) (*domain.Dataset, error) {
	start := s.clock.Now()

	// The rating cache must be resynced before the overlay below, or beers
	// would carry live ratings from the previous window.
	if err := s.ratings.Refresh(ctx); err != nil {
		metrics.DatasetRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var (
		beers       []domain.Beer
		breweries   []string
		superstyles []string
		metastyles  []string
	)

	// Fan out the four queries; first error cancels the rest and fails the
	// whole rebuild, discarding any partial results.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		beers, err = s.source.Beers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		breweries, err = s.source.Breweries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		superstyles, err = s.source.Superstyles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metastyles, err = s.source.Metastyles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.DatasetRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	for i := range beers {
		decorate(&beers[i], s.ratings)
	}

	metrics.DatasetRefreshesTotal.WithLabelValues("ok").Inc()
	metrics.DatasetQueryDuration.Observe(s.clock.Since(start).Seconds())

	return &domain.Dataset{
		Beers:       beers,
		Breweries:   breweries,
		Superstyles: superstyles,
		Metastyles:  metastyles,
	}, nil
}

// decorate attaches the rounded Untappd rating and, when votes exist, the
// live rating fields.
func decorate(beer *domain.Beer, ratings RatingOverlay) {
	if beer.UntappdRating != 0 {
		beer.UntappdRatingClamped = clamp(beer.UntappdRating)
	}

	entry, ok := ratings.Entry(beer.ID)
	if !ok {
		beer.LiveRating = nil
		beer.LiveRatingClamped = ""
		beer.LiveRatingCount = 0
		return
	}

	live := entry.Rating
	beer.LiveRating = &live
	beer.LiveRatingClamped = clamp(entry.Rating)
	beer.LiveRatingCount = entry.Count
}

// clamp renders a rating with exactly two decimals, matching the JSON the
// original clients consume.
func clamp(rating float64) string {
	return strconv.FormatFloat(rating, 'f', 2, 64)
}
