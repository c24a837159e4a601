package dataset

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

type fakeSource struct {
	mu           sync.Mutex
	beers        []domain.Beer
	breweries    []string
	superstyles  []string
	metastyles   []string
	breweriesErr error
	beerCalls    int
}

func (f *fakeSource) Beers(context.Context) ([]domain.Beer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beerCalls++
	beers := make([]domain.Beer, len(f.beers))
	copy(beers, f.beers)
	return beers, nil
}

func (f *fakeSource) Breweries(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.breweriesErr != nil {
		return nil, f.breweriesErr
	}
	return f.breweries, nil
}

func (f *fakeSource) Superstyles(context.Context) ([]string, error) {
	return f.superstyles, nil
}

func (f *fakeSource) Metastyles(context.Context) ([]string, error) {
	return f.metastyles, nil
}

type fakeOverlay struct {
	mu        sync.Mutex
	entries   map[int]domain.RatingEntry
	err       error
	refreshes int
	lookups   int
}

func (f *fakeOverlay) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.err
}

func (f *fakeOverlay) Entry(beerID int) (domain.RatingEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	entry, ok := f.entries[beerID]
	return entry, ok
}

func testBeers() []domain.Beer {
	return []domain.Beer{
		{ID: 1, Name: "Spontandoubleblueberry", Brewery: "Lindemans", Session: domain.SessionBlue, UntappdRating: 4.321},
		{ID: 2, Name: "Fou' Foune", Brewery: "Cantillon", Session: domain.SessionYellow},
	}
}

func newTestService(source *fakeSource, overlay *fakeOverlay, clock clockwork.Clock) *Service {
	return NewService(source, overlay, clock, 120*time.Second)
}

func TestDataset_AssemblesAndOverlays(t *testing.T) {
	source := &fakeSource{
		beers:       testBeers(),
		breweries:   []string{"Cantillon", "Lindemans"},
		superstyles: []string{"Lambic"},
		metastyles:  []string{"Sour"},
	}
	overlay := &fakeOverlay{entries: map[int]domain.RatingEntry{
		1: {Rating: 4.5666, Count: 3},
	}}

	svc := newTestService(source, overlay, clockwork.NewFakeClock())
	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Cantillon", "Lindemans"}, ds.Breweries)
	assert.Equal(t, []string{"Lambic"}, ds.Superstyles)
	assert.Equal(t, []string{"Sour"}, ds.Metastyles)
	require.Len(t, ds.Beers, 2)

	rated := ds.Beers[0]
	require.NotNil(t, rated.LiveRating)
	assert.InDelta(t, 4.5666, *rated.LiveRating, 1e-9)
	assert.Equal(t, "4.57", rated.LiveRatingClamped)
	assert.Equal(t, 3, rated.LiveRatingCount)
	assert.Equal(t, "4.32", rated.UntappdRatingClamped)

	unrated := ds.Beers[1]
	assert.Nil(t, unrated.LiveRating)
	assert.Empty(t, unrated.LiveRatingClamped)
	assert.Zero(t, unrated.LiveRatingCount)
}

func TestDataset_RefreshesRatingsBeforeOverlay(t *testing.T) {
	source := &fakeSource{beers: testBeers()}
	overlay := &fakeOverlay{}

	svc := newTestService(source, overlay, clockwork.NewFakeClock())
	_, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, overlay.refreshes)
	assert.Equal(t, len(source.beers), overlay.lookups)
}

func TestDataset_AnyQueryFailureFailsTheWholeCall(t *testing.T) {
	source := &fakeSource{
		beers:        testBeers(),
		breweriesErr: errors.New("neo4j unavailable"),
	}

	svc := newTestService(source, &fakeOverlay{}, clockwork.NewFakeClock())
	ds, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.Nil(t, ds, "no partial dataset on failure")
}

func TestDataset_RatingRefreshFailureFailsTheWholeCall(t *testing.T) {
	source := &fakeSource{beers: testBeers()}
	overlay := &fakeOverlay{err: errors.New("redis unavailable")}

	svc := newTestService(source, overlay, clockwork.NewFakeClock())
	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, source.beerCalls, "queries are pointless if the rating resync failed")
}

func TestDataset_MemoizesWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := &fakeSource{beers: testBeers()}

	svc := newTestService(source, &fakeOverlay{}, clock)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	clock.Advance(119 * time.Second)
	second, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "requests within the TTL reuse the memoized dataset")
	assert.Equal(t, 1, source.beerCalls)
}

func TestDataset_RebuildsAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := &fakeSource{beers: testBeers()}

	svc := newTestService(source, &fakeOverlay{}, clock)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	clock.Advance(121 * time.Second)
	second, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, source.beerCalls)
}

func TestDataset_FailureDoesNotPoisonMemo(t *testing.T) {
	clock := clockwork.NewFakeClock()
	source := &fakeSource{
		beers:        testBeers(),
		breweriesErr: errors.New("neo4j unavailable"),
	}

	svc := newTestService(source, &fakeOverlay{}, clock)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)

	source.mu.Lock()
	source.breweriesErr = nil
	source.mu.Unlock()

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Beers, 2)
}
