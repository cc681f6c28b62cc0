package service

import (
	"context"
	"fmt"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/geojson"
	"casemap-api/internal/models"
)

// ChoroplethService builds the joined, color-annotated feature collection
// that both the GeoJSON endpoint and the map page serve.
type ChoroplethService struct {
	store MapStore
	title string
	scale choropleth.Scale
}

// MapStore interface for dependency injection
type MapStore interface {
	FeatureCollection(ctx context.Context) (*geojson.FeatureCollection, error)
	ListTowns(ctx context.Context) ([]models.Town, error)
}

// MapData is a fully joined choropleth ready for rendering or serialization.
type MapData struct {
	Collection *geojson.FeatureCollection
	Coverage   models.CoverageReport
	Scale      choropleth.Scale
	Title      string
}

// NewChoroplethService creates a new choropleth service with the default
// title and color range.
func NewChoroplethService(store MapStore, title string, scale choropleth.Scale) *ChoroplethService {
	return &ChoroplethService{store: store, title: title, scale: scale}
}

// BuildMap fetches boundaries and case counts, joins them, and annotates the
// features. A non-nil min or max overrides the default color range.
func (s *ChoroplethService) BuildMap(ctx context.Context, min, max *float64) (*MapData, error) {
	scale := s.scale
	if min != nil {
		scale.Min = *min
	}
	if max != nil {
		scale.Max = *max
	}
	scale, err := choropleth.NewScale(scale.Min, scale.Max)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	fc, err := s.store.FeatureCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load boundaries: %w", err)
	}

	towns, err := s.store.ListTowns(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load case counts: %w", err)
	}

	coverage := choropleth.Join(fc, towns, scale)

	return &MapData{
		Collection: fc,
		Coverage:   coverage,
		Scale:      scale,
		Title:      s.title,
	}, nil
}

// Ready reports whether the store is reachable and holds case data to serve.
func (s *ChoroplethService) Ready(ctx context.Context) error {
	towns, err := s.store.ListTowns(ctx)
	if err != nil {
		return fmt.Errorf("service: store not reachable: %w", err)
	}
	if len(towns) == 0 {
		return fmt.Errorf("service: no case data loaded")
	}
	return nil
}

// Coverage reports join completeness between the case table and the
// boundaries under the default color range.
func (s *ChoroplethService) Coverage(ctx context.Context) (models.CoverageReport, error) {
	data, err := s.BuildMap(ctx, nil, nil)
	if err != nil {
		return models.CoverageReport{}, err
	}
	return data.Coverage, nil
}
