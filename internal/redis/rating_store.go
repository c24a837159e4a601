package redis

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// Rating keys are written by the external persistence job as
// "_br<beerID>_rating" and "_br<beerID>_count". This server only reads them.
const ratingKeyPattern = "_br*"

var ratingKeyRe = regexp.MustCompile(`(\d+)_(\w+)`)

// RatingStore reads the persisted rating keys the cache resyncs from.
type RatingStore struct {
	rdb *goredis.Client
}

func NewRatingStore(rdb *goredis.Client) *RatingStore {
	return &RatingStore{rdb: rdb}
}

// Entries scans for all rating keys and batch-fetches their values,
// assembling one RatingEntry per beer. Keys that match the scan pattern but
// not the <beerID>_<field> shape are skipped.
func (s *RatingStore) Entries(ctx context.Context) (map[int]domain.RatingEntry, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, ratingKeyPattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rating keys: %w", err)
	}

	entries := make(map[int]domain.RatingEntry)
	if len(keys) == 0 {
		return entries, nil
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rating values: %w", err)
	}

	for i, key := range keys {
		beerID, field, ok := parseRatingKey(key)
		if !ok {
			continue
		}
		raw, ok := values[i].(string)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		entry := entries[beerID]
		switch field {
		case "rating":
			entry.Rating = value
		case "count":
			entry.Count = int(value)
		default:
			continue
		}
		entries[beerID] = entry
	}
	return entries, nil
}

// parseRatingKey extracts the beer ID and field name from a rating key.
func parseRatingKey(key string) (beerID int, field string, ok bool) {
	m := ratingKeyRe.FindStringSubmatch(key)
	if m == nil {
		return 0, "", false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return id, m[2], true
}
