package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"casemap-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testBoundaries = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "Irvine"},
			"geometry": {"type": "Polygon", "coordinates": [[[-117.8, 33.6], [-117.7, 33.6], [-117.7, 33.7], [-117.8, 33.6]]]}
		},
		{
			"type": "Feature",
			"properties": {"name": "Anaheim"},
			"geometry": {"type": "Polygon", "coordinates": [[[-117.95, 33.8], [-117.9, 33.8], [-117.9, 33.87], [-117.95, 33.8]]]}
		}
	]
}`

func writeTestInputs(t *testing.T) (geojsonPath, casesPath string) {
	t.Helper()
	dir := t.TempDir()

	geojsonPath = filepath.Join(dir, "towns.geojson")
	require.NoError(t, os.WriteFile(geojsonPath, []byte(testBoundaries), 0o644))

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "Confirmed Cases"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Irvine", 120}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Anaheim", 87}))
	casesPath = filepath.Join(dir, "cases.xlsx")
	require.NoError(t, f.SaveAs(casesPath))

	return geojsonPath, casesPath
}

func TestMemoryStore(t *testing.T) {
	geojsonPath, casesPath := writeTestInputs(t)
	ctx := context.Background()

	store, err := NewMemoryStore(geojsonPath, casesPath)
	require.NoError(t, err)

	t.Run("ListTowns returns sorted towns", func(t *testing.T) {
		towns, err := store.ListTowns(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Town{
			{Name: "Anaheim", ConfirmedCases: 87},
			{Name: "Irvine", ConfirmedCases: 120},
		}, towns)
	})

	t.Run("GetTownByName finds a town", func(t *testing.T) {
		town, err := store.GetTownByName(ctx, "Irvine")
		require.NoError(t, err)
		assert.Equal(t, &models.Town{Name: "Irvine", ConfirmedCases: 120}, town)
	})

	t.Run("GetTownByName misses", func(t *testing.T) {
		_, err := store.GetTownByName(ctx, "Atlantis")
		assert.True(t, errors.Is(err, ErrTownNotFound))
	})

	t.Run("FeatureCollection returns independent copies", func(t *testing.T) {
		first, err := store.FeatureCollection(ctx)
		require.NoError(t, err)
		first.Features[0].Properties["fill"] = "#000000"

		second, err := store.FeatureCollection(ctx)
		require.NoError(t, err)
		assert.NotContains(t, second.Features[0].Properties, "fill")
		assert.Len(t, second.Features, 2)
	})
}

func TestNewMemoryStore_Errors(t *testing.T) {
	geojsonPath, casesPath := writeTestInputs(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := NewMemoryStore(missing, casesPath)
	assert.Error(t, err)

	_, err = NewMemoryStore(geojsonPath, missing)
	assert.Error(t, err)
}
