// Package rating maintains the process-wide live rating cache: a mapping of
// beer ID to running mean and vote count, resynced from the backing store and
// mutated by incoming rate submissions.
//
// The cache never writes back to the backing store. Persistence is an
// external job; a process restart loses any ratings submitted since that job
// last ran. This is the intended behavior, not a gap to paper over.
package rating

import (
	"context"
	"math"
	"sync"

	"github.com/cbrevik/cbc-menu/internal/domain"
	"github.com/cbrevik/cbc-menu/internal/metrics"
)

// EntrySource is the backing-store view of the persisted rating keys.
type EntrySource interface {
	Entries(ctx context.Context) (map[int]domain.RatingEntry, error)
}

// Publisher pushes rate events to realtime subscribers.
type Publisher interface {
	Publish(event domain.RateEvent)
}

// Cache is the in-memory rating mapping. Safe for concurrent use, but note
// that Refresh replaces the whole mapping: a refresh racing a Submit keeps
// whichever finishes last, so a submit landing mid-refresh can be silently
// dropped until it is next persisted externally.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]domain.RatingEntry

	source    EntrySource
	publisher Publisher
}

func NewCache(source EntrySource) *Cache {
	return &Cache{
		entries: make(map[int]domain.RatingEntry),
		source:  source,
	}
}

// SetPublisher wires the realtime broadcaster. Wired once at startup; the
// broadcaster needs the cache's Snapshot for its connect-time event, so the
// two are linked after construction.
func (c *Cache) SetPublisher(p Publisher) {
	c.publisher = p
}

// Refresh rebuilds the mapping from scratch from the backing store. This is
// a full resynchronization: in-memory entries not yet persisted are
// overwritten, not merged.
func (c *Cache) Refresh(ctx context.Context) error {
	entries, err := c.source.Entries(ctx)
	if err != nil {
		metrics.RatingCacheRefreshesTotal.WithLabelValues("error").Inc()
		return err
	}

	c.mu.Lock()
	c.entries = entries
	size := len(entries)
	c.mu.Unlock()

	metrics.RatingCacheRefreshesTotal.WithLabelValues("ok").Inc()
	metrics.RatingCacheSize.Set(float64(size))
	return nil
}

// Submit records a rating for a beer and returns the updated entry.
//
// newVoter distinguishes the two submission verbs: true appends a new vote
// (count goes up), false amends the submitter's previous vote (count stays).
// The first entry for a beer is always created with count 1, regardless of
// the verb, so the running-mean update never divides by zero.
func (c *Cache) Submit(beerID int, value float64, newVoter bool) (domain.RatingEntry, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.RatingEntry{}, domain.ErrInvalidRating
	}

	c.mu.Lock()
	entry, ok := c.entries[beerID]
	if !ok {
		entry = domain.RatingEntry{Rating: value, Count: 1}
	} else {
		count := entry.Count
		if newVoter {
			count++
		}
		entry.Rating = (entry.Rating*float64(count-1) + value) / float64(count)
		entry.Count = count
	}
	c.entries[beerID] = entry
	size := len(c.entries)
	c.mu.Unlock()

	verb := "amend"
	if newVoter {
		verb = "new"
	}
	metrics.RatingsSubmittedTotal.WithLabelValues(verb).Inc()
	metrics.RatingCacheSize.Set(float64(size))

	if c.publisher != nil {
		c.publisher.Publish(domain.RateEvent{Beer: beerID, Rating: entry.Rating, Count: entry.Count})
	}
	return entry, nil
}

// Entry returns the live rating entry for a beer, if any vote has been recorded.
func (c *Cache) Entry(beerID int) (domain.RatingEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[beerID]
	return entry, ok
}

// Snapshot returns a copy of the full mapping, for the connect-time update
// event and for tests.
func (c *Cache) Snapshot() map[int]domain.RatingEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[int]domain.RatingEntry, len(c.entries))
	for id, entry := range c.entries {
		snapshot[id] = entry
	}
	return snapshot
}
