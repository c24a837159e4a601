package view

import (
	"sort"
	"strings"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// BrewerySection is one brewery's matched beers, ordered by session.
type BrewerySection struct {
	Name  string
	Beers []domain.Beer
}

// BeerList is the computed view: breweries in display order and the total
// matched beer count.
type BeerList struct {
	Breweries []BrewerySection
	BeerCount int
}

// ComputeView filters beers by the state's colour, metastyle, search text and
// tasted/saved flags, groups the survivors by brewery, sorts breweries by the
// configured order (alphabetical by default) and each brewery's beers by the
// fixed session order.
func ComputeView(beers []domain.Beer, state State) BeerList {
	var matched []domain.Beer
	for _, beer := range beers {
		if matches(beer, state) {
			matched = append(matched, beer)
		}
	}

	grouped := make(map[string][]domain.Beer)
	for _, beer := range matched {
		grouped[beer.Brewery] = append(grouped[beer.Brewery], beer)
	}

	sections := make([]BrewerySection, 0, len(grouped))
	for name, beers := range grouped {
		sort.SliceStable(beers, func(i, j int) bool {
			return beers[i].Session.OrderIndex() < beers[j].Session.OrderIndex()
		})
		sections = append(sections, BrewerySection{Name: name, Beers: beers})
	}

	switch state.Order {
	case "rating":
		// Highest-rated brewery first, name as tiebreak.
		sort.SliceStable(sections, func(i, j int) bool {
			ri, rj := topRating(sections[i]), topRating(sections[j])
			if ri != rj {
				return ri > rj
			}
			return sections[i].Name < sections[j].Name
		})
	default:
		sort.SliceStable(sections, func(i, j int) bool {
			return sections[i].Name < sections[j].Name
		})
	}

	return BeerList{Breweries: sections, BeerCount: len(matched)}
}

func matches(beer domain.Beer, state State) bool {
	if state.Colour != "" && beer.Session != domain.Session(state.Colour) {
		return false
	}
	if state.Metastyle != "" && !strings.EqualFold(beer.Metastyle, state.Metastyle) {
		return false
	}
	if state.Search != "" && !searchMatch(beer, state.Search) {
		return false
	}
	if state.Tasted && !state.TastedIDs[beer.ID] {
		return false
	}
	if state.Saved && !state.SavedIDs[beer.ID] {
		return false
	}
	return true
}

func searchMatch(beer domain.Beer, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{beer.Name, beer.Brewery, beer.SuppliedStyle, beer.Superstyle} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// topRating is a brewery's best beer rating for the rating order. Live
// ratings take precedence over Untappd ratings for beers with votes, so the
// order tracks the festival floor once voting starts.
func topRating(section BrewerySection) float64 {
	top := 0.0
	for _, beer := range section.Beers {
		rating := beer.UntappdRating
		if beer.LiveRating != nil {
			rating = *beer.LiveRating
		}
		if rating > top {
			top = rating
		}
	}
	return top
}
