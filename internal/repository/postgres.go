package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casemap-api/internal/geojson"
	"casemap-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTownNotFound is returned when a lookup by name matches no town.
var ErrTownNotFound = errors.New("repository: town not found")

// PostgresStore serves towns and boundary geometry from a PostGIS-backed
// towns table populated by the importer.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListTowns returns every town with a reported case count, ordered by name.
func (r *PostgresStore) ListTowns(ctx context.Context) ([]models.Town, error) {
	sql := `
		SELECT name, confirmed_cases
		FROM towns
		WHERE confirmed_cases IS NOT NULL
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to list towns: %w", err)
	}
	defer rows.Close()

	var towns []models.Town
	for rows.Next() {
		var t models.Town
		if err := rows.Scan(&t.Name, &t.ConfirmedCases); err != nil {
			return nil, fmt.Errorf("repository: failed to scan town: %w", err)
		}
		towns = append(towns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return towns, nil
}

// GetTownByName returns a single town's case count.
func (r *PostgresStore) GetTownByName(ctx context.Context, name string) (*models.Town, error) {
	sql := `
		SELECT name, confirmed_cases
		FROM towns
		WHERE name = $1 AND confirmed_cases IS NOT NULL
	`

	var t models.Town
	err := r.db.QueryRow(ctx, sql, name).Scan(&t.Name, &t.ConfirmedCases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTownNotFound
		}
		return nil, fmt.Errorf("repository: failed to get town: %w", err)
	}

	return &t, nil
}

// FeatureCollection rebuilds the boundary collection from stored geometry.
// Rows without geometry (case rows that never matched a boundary) are
// excluded; they surface through ListTowns and the coverage report instead.
func (r *PostgresStore) FeatureCollection(ctx context.Context) (*geojson.FeatureCollection, error) {
	sql := `
		SELECT name, ST_AsGeoJSON(geom)
		FROM towns
		WHERE geom IS NOT NULL
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query geometry: %w", err)
	}
	defer rows.Close()

	fc := &geojson.FeatureCollection{Type: "FeatureCollection"}
	for rows.Next() {
		var name, geomJSON string
		if err := rows.Scan(&name, &geomJSON); err != nil {
			return nil, fmt.Errorf("repository: failed to scan geometry row: %w", err)
		}

		var geom geojson.Geometry
		if err := json.Unmarshal([]byte(geomJSON), &geom); err != nil {
			return nil, fmt.Errorf("repository: invalid stored geometry for %q: %w", name, err)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Type:       "Feature",
			ID:         name,
			Properties: map[string]interface{}{"name": name},
			Geometry:   geom,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("repository: no boundary geometry loaded, run the importer first")
	}

	return fc, nil
}
