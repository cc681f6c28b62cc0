package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"casemap-api/internal/cases"
	"casemap-api/internal/config"
	"casemap-api/internal/geojson"
	"casemap-api/internal/models"

	"github.com/jackc/pgx/v5"
)

// TownRecord is one row bound for the towns table. Count and geometry are
// each optional so unmatched entries from either input survive the import.
type TownRecord struct {
	Name           string
	ConfirmedCases *int
	GeometryJSON   []byte
}

func main() {
	geojsonFile := flag.String("geojson", "towns.geojson", "Path to the town boundary GeoJSON file")
	casesFile := flag.String("cases", "cases.xlsx", "Path to the confirmed-cases workbook")
	flag.Parse()

	fmt.Printf("Starting import from %s and %s\n", *geojsonFile, *casesFile)

	records, report, err := buildRecords(*geojsonFile, *casesFile)
	if err != nil {
		fmt.Printf("Error reading input files: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Prepared %d records (%d matched)\n", len(records), report.MatchedCount)
	for _, name := range report.TownsWithoutGeometry {
		fmt.Printf("Warning: case row %q has no boundary\n", name)
	}
	for _, name := range report.FeaturesWithoutCases {
		fmt.Printf("Warning: boundary %q has no case row\n", name)
	}

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Connect to DB
	conn, err := pgx.Connect(context.Background(), cfg.DBSource)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	// Ensure table exists
	err = createTableIfNotExists(conn)
	if err != nil {
		fmt.Printf("Error creating table: %v\n", err)
		os.Exit(1)
	}

	// Insert records
	err = insertRecords(conn, records)
	if err != nil {
		fmt.Printf("Error inserting records: %v\n", err)
		os.Exit(1)
	}

	// Verify data
	err = verifyImport(conn, len(records))
	if err != nil {
		fmt.Printf("Error verifying import: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully imported %d records\n", len(records))
}

// buildRecords parses both inputs and merges them into one record per town
// name, from either side of the join.
func buildRecords(geojsonPath, casesPath string) ([]TownRecord, models.CoverageReport, error) {
	fc, err := geojson.Load(geojsonPath)
	if err != nil {
		return nil, models.CoverageReport{}, err
	}

	towns, err := cases.Read(casesPath)
	if err != nil {
		return nil, models.CoverageReport{}, err
	}

	countByName := make(map[string]int, len(towns))
	for _, t := range towns {
		countByName[t.Name] = t.ConfirmedCases
	}

	report := models.CoverageReport{}
	records := make([]TownRecord, 0, len(fc.Features)+len(towns))
	seen := make(map[string]bool, len(fc.Features))

	for _, f := range fc.Features {
		geomJSON, err := json.Marshal(f.Geometry)
		if err != nil {
			return nil, models.CoverageReport{}, fmt.Errorf("invalid geometry for %q: %w", f.ID, err)
		}

		rec := TownRecord{Name: f.ID, GeometryJSON: geomJSON}
		if count, ok := countByName[f.ID]; ok {
			rec.ConfirmedCases = &count
			report.MatchedCount++
		} else {
			report.FeaturesWithoutCases = append(report.FeaturesWithoutCases, f.ID)
		}
		seen[f.ID] = true
		records = append(records, rec)
	}

	// Case rows with no boundary still get a row, with NULL geometry.
	for _, t := range towns {
		if seen[t.Name] {
			continue
		}
		count := t.ConfirmedCases
		records = append(records, TownRecord{Name: t.Name, ConfirmedCases: &count})
		report.TownsWithoutGeometry = append(report.TownsWithoutGeometry, t.Name)
	}

	sort.Strings(report.TownsWithoutGeometry)
	sort.Strings(report.FeaturesWithoutCases)
	return records, report, nil
}

func createTableIfNotExists(conn *pgx.Conn) error {
	query := `
	CREATE TABLE IF NOT EXISTS towns (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		confirmed_cases INTEGER,
		geom GEOMETRY(MULTIPOLYGON, 4326)
	);
	CREATE INDEX IF NOT EXISTS towns_geom_idx ON towns USING GIST (geom);
	`
	_, err := conn.Exec(context.Background(), query)
	return err
}

func insertRecords(conn *pgx.Conn, records []TownRecord) error {
	ctx := context.Background()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Re-running the importer replaces the previous load.
	if _, err := tx.Exec(ctx, "TRUNCATE towns"); err != nil {
		return err
	}

	// ST_Multi coerces plain polygons so mixed inputs land in one column type.
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO towns (name, confirmed_cases, geom)
			VALUES ($1, $2, ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($3::text), 4326)))`,
			r.Name, r.ConfirmedCases, nullableText(r.GeometryJSON),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// nullableText keeps NULL geometry NULL instead of passing an empty string
// into ST_GeomFromGeoJSON.
func nullableText(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func verifyImport(conn *pgx.Conn, expectedCount int) error {
	var count int
	err := conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM towns").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if count != expectedCount {
		return fmt.Errorf("record count mismatch: expected %d, got %d", expectedCount, count)
	}

	// Check a sample geom
	var geom string
	err = conn.QueryRow(context.Background(), "SELECT ST_AsText(geom) FROM towns WHERE geom IS NOT NULL LIMIT 1").Scan(&geom)
	if err != nil {
		return fmt.Errorf("failed to check geom: %w", err)
	}

	fmt.Printf("Sample geom: %.60s...\n", geom)
	return nil
}
