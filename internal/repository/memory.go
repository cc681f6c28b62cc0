package repository

import (
	"context"
	"fmt"
	"sort"

	"casemap-api/internal/cases"
	"casemap-api/internal/geojson"
	"casemap-api/internal/models"
)

// MemoryStore serves towns and boundaries directly from the two input files,
// for running the API without a database. Everything is loaded once at
// construction and is immutable afterwards.
type MemoryStore struct {
	fc     *geojson.FeatureCollection
	towns  []models.Town
	byName map[string]models.Town
}

// NewMemoryStore loads the boundary file and the case workbook.
func NewMemoryStore(geojsonPath, casesPath string) (*MemoryStore, error) {
	fc, err := geojson.Load(geojsonPath)
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	towns, err := cases.Read(casesPath)
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	sort.Slice(towns, func(i, j int) bool { return towns[i].Name < towns[j].Name })

	byName := make(map[string]models.Town, len(towns))
	for _, t := range towns {
		byName[t.Name] = t
	}

	return &MemoryStore{fc: fc, towns: towns, byName: byName}, nil
}

// ListTowns returns every town from the case workbook, ordered by name.
func (r *MemoryStore) ListTowns(_ context.Context) ([]models.Town, error) {
	out := make([]models.Town, len(r.towns))
	copy(out, r.towns)
	return out, nil
}

// GetTownByName returns a single town's case count.
func (r *MemoryStore) GetTownByName(_ context.Context, name string) (*models.Town, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, ErrTownNotFound
	}
	return &t, nil
}

// FeatureCollection returns an independent copy of the boundary collection.
// Callers annotate feature properties during a join, so the shared parse
// result must not leak out.
func (r *MemoryStore) FeatureCollection(_ context.Context) (*geojson.FeatureCollection, error) {
	return r.fc.Clone(), nil
}
