// Package export renders the festival menu as the CSV dump handed to
// spreadsheet users. Row order is deterministic: breweries alphabetically,
// then each brewery's beers in the fixed session order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// Header is the fixed CSV column set. Existing downstream sheets depend on
// the exact names and order.
var Header = []string{
	"brewery",
	"session",
	"beer",
	"abv",
	"supplied style",
	"untappd style",
	"metastyle",
	"untappd rating",
	"description",
	"untappd link",
}

// WriteCSV writes the dataset as CSV.
func WriteCSV(w io.Writer, ds *domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	breweries := make([]string, len(ds.Breweries))
	copy(breweries, ds.Breweries)
	sort.Strings(breweries)

	for _, brewery := range breweries {
		for _, beer := range beersFor(ds.Beers, brewery) {
			if err := cw.Write(row(beer)); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func beersFor(beers []domain.Beer, brewery string) []domain.Beer {
	var matched []domain.Beer
	for _, beer := range beers {
		if beer.Brewery == brewery {
			matched = append(matched, beer)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Session.OrderIndex() < matched[j].Session.OrderIndex()
	})
	return matched
}

func row(beer domain.Beer) []string {
	return []string{
		beer.Brewery,
		string(beer.Session),
		beer.Name,
		strconv.FormatFloat(beer.Percent, 'f', -1, 64),
		beer.SuppliedStyle,
		beer.Superstyle,
		beer.Metastyle,
		strconv.FormatFloat(beer.UntappdRating, 'f', -1, 64),
		beer.Description,
		untappdLink(beer),
	}
}

func untappdLink(beer domain.Beer) string {
	return fmt.Sprintf("https://untappd.com/b/_/%d", beer.UntappdBeerID)
}
