package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// Store serves the four menu queries the aggregation service fans out to.
type Store struct {
	client *Client
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Beers(ctx context.Context) ([]domain.Beer, error) {
	rows, err := s.client.Run(ctx, beerQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("beers query: %w", err)
	}

	beers := make([]domain.Beer, 0, len(rows))
	for _, row := range rows {
		beer, err := beerFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("beers query: %w", err)
		}
		beers = append(beers, beer)
	}
	return beers, nil
}

func (s *Store) Breweries(ctx context.Context) ([]string, error) {
	return s.names(ctx, breweriesQuery, "breweries")
}

func (s *Store) Superstyles(ctx context.Context) ([]string, error) {
	return s.names(ctx, superstylesQuery, "superstyles")
}

func (s *Store) Metastyles(ctx context.Context) ([]string, error) {
	return s.names(ctx, metastylesQuery, "metastyles")
}

// names projects the "name" column off each row of a single-column query.
func (s *Store) names(ctx context.Context, cypher, label string) ([]string, error) {
	rows, err := s.client.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", label, err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, asString(row["name"]))
	}
	return names, nil
}

// beerFromRow maps one query record onto a domain.Beer. The beer column is a
// node whose properties carry the per-beer fields; the remaining columns are
// denormalized join results.
func beerFromRow(row map[string]any) (domain.Beer, error) {
	props, err := nodeProps(row["beer"])
	if err != nil {
		return domain.Beer{}, err
	}

	id, ok := asInt(props["id"])
	if !ok {
		return domain.Beer{}, fmt.Errorf("beer node %q has no integer id", asString(props["name"]))
	}

	beer := domain.Beer{
		ID:            id,
		Name:          asString(props["name"]),
		Percent:       asFloat(props["percent"]),
		SuppliedStyle: asString(props["mbcc_desc"]),
		Description:   asString(props["desc"]),
		UntappdRating: asFloat(props["ut_rating"]),
		Brewery:       asString(row["brewery"]),
		Session:       domain.Session(asString(row["session"])),
		Location:      asString(row["location"]),
		Superstyle:    asString(row["superstyle"]),
		Metastyle:     asString(row["metastyle"]),
	}
	if bid, ok := asInt(props["ut_bid"]); ok {
		beer.UntappdBeerID = int64(bid)
	}
	return beer, nil
}

func nodeProps(v any) (map[string]any, error) {
	switch n := v.(type) {
	case dbtype.Node:
		return n.Props, nil
	case map[string]any:
		// Plain maps show up in tests and disk dumps.
		return n, nil
	default:
		return nil, fmt.Errorf("unexpected beer column type %T", v)
	}
}

// Neo4j returns integers as int64 and floats as float64; disk dumps
// deserialize all numbers as float64.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
