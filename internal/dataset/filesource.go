package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cbrevik/cbc-menu/internal/domain"
)

// FileSource serves the menu from a local JSON dump instead of the graph
// store. Used at the festival venue where the database may be unreachable.
type FileSource struct {
	ds domain.Dataset
}

// NewFileSource reads a dataset dump previously written by WriteFile.
func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &FileSource{ds: ds}, nil
}

func (f *FileSource) Beers(context.Context) ([]domain.Beer, error) {
	// Copy so the overlay pass never mutates the loaded dump.
	beers := make([]domain.Beer, len(f.ds.Beers))
	copy(beers, f.ds.Beers)
	return beers, nil
}

func (f *FileSource) Breweries(context.Context) ([]string, error) {
	return f.ds.Breweries, nil
}

func (f *FileSource) Superstyles(context.Context) ([]string, error) {
	return f.ds.Superstyles, nil
}

func (f *FileSource) Metastyles(context.Context) ([]string, error) {
	return f.ds.Metastyles, nil
}

// WriteFile persists a dataset as the JSON dump FileSource reads.
func WriteFile(path string, ds *domain.Dataset) error {
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}
