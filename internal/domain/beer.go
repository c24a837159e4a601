package domain

// Session is the colour-coded pour slot a beer is served in.
type Session string

const (
	SessionYellow Session = "yellow"
	SessionBlue   Session = "blue"
	SessionRed    Session = "red"
	SessionGreen  Session = "green"
)

// SessionOrder is the fixed serving order used when sorting beers within a brewery.
var SessionOrder = []Session{SessionYellow, SessionBlue, SessionRed, SessionGreen}

// OrderIndex returns the position of s in the fixed session order.
// Unknown sessions sort after all known ones.
func (s Session) OrderIndex() int {
	for i, known := range SessionOrder {
		if s == known {
			return i
		}
	}
	return len(SessionOrder)
}

// Beer is a single festival pour with its brewery, session and style
// denormalized onto it, plus the externally sourced Untappd rating and,
// when at least one on-site vote has been recorded, the live rating.
type Beer struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Brewery       string  `json:"brewery"`
	Session       Session `json:"session"`
	Location      string  `json:"location,omitempty"`
	Percent       float64 `json:"percent,omitempty"`
	SuppliedStyle string  `json:"mbcc_desc,omitempty"`
	Superstyle    string  `json:"superstyle,omitempty"`
	Metastyle     string  `json:"metastyle,omitempty"`
	Description   string  `json:"desc,omitempty"`
	UntappdBeerID int64   `json:"ut_bid,omitempty"`

	UntappdRating        float64 `json:"ut_rating,omitempty"`
	UntappdRatingClamped string  `json:"ut_rating_clamped,omitempty"`

	LiveRating        *float64 `json:"live_rating,omitempty"`
	LiveRatingClamped string   `json:"live_rating_clamped,omitempty"`
	LiveRatingCount   int      `json:"live_rating_count,omitempty"`
}

// Dataset is an immutable snapshot of the full festival menu.
// It is replaced wholesale on refresh, never mutated in place.
type Dataset struct {
	Beers       []Beer   `json:"beers"`
	Breweries   []string `json:"breweries"`
	Superstyles []string `json:"superstyles"`
	Metastyles  []string `json:"metastyles"`
}
