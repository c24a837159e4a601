package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

func TestFileSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	ds := &domain.Dataset{
		Beers: []domain.Beer{
			{ID: 1, Name: "Spontanale", Brewery: "Mikkeller", Session: domain.SessionBlue},
		},
		Breweries:   []string{"Mikkeller"},
		Superstyles: []string{"Sour"},
		Metastyles:  []string{"sour"},
	}
	require.NoError(t, WriteFile(path, ds))

	src, err := NewFileSource(path)
	require.NoError(t, err)

	ctx := context.Background()

	beers, err := src.Beers(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Beers, beers)

	breweries, err := src.Breweries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mikkeller"}, breweries)

	superstyles, err := src.Superstyles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sour"}, superstyles)

	metastyles, err := src.Metastyles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sour"}, metastyles)
}

func TestFileSource_BeersReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	ds := &domain.Dataset{
		Beers: []domain.Beer{{ID: 1, Name: "Spontanale"}},
	}
	require.NoError(t, WriteFile(path, ds))

	src, err := NewFileSource(path)
	require.NoError(t, err)

	first, err := src.Beers(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := src.Beers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Spontanale", second[0].Name)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestFileSource_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSource(path)
	require.Error(t, err)
}
