package domain

// RatingEntry holds the running mean and vote count for one beer.
// Rating is always the arithmetic mean of exactly Count submitted values,
// updated incrementally rather than recomputed from history.
type RatingEntry struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// RateEvent is pushed to realtime subscribers after every successful
// rating mutation.
type RateEvent struct {
	Beer   int     `json:"beer"`
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}
