package choropleth

import (
	"sort"

	"casemap-api/internal/geojson"
	"casemap-api/internal/models"
)

// Property keys written onto joined features.
const (
	PropertyCases = "confirmed_cases"
	PropertyFill  = "fill"
)

// Join matches case rows onto boundary features by feature ID and annotates
// each feature with its count and fill color. Features without a case row get
// the no-data fill and no count property; both kinds of mismatch are
// collected into the returned coverage report rather than failing the join.
func Join(fc *geojson.FeatureCollection, towns []models.Town, scale Scale) models.CoverageReport {
	byName := make(map[string]models.Town, len(towns))
	for _, t := range towns {
		byName[t.Name] = t
	}

	report := models.CoverageReport{}
	matched := make(map[string]bool, len(towns))

	for _, f := range fc.Features {
		town, ok := byName[f.ID]
		if !ok {
			f.Properties[PropertyFill] = NoDataFill
			report.FeaturesWithoutCases = append(report.FeaturesWithoutCases, f.ID)
			continue
		}
		matched[town.Name] = true
		f.Properties[PropertyCases] = town.ConfirmedCases
		f.Properties[PropertyFill] = scale.Color(float64(town.ConfirmedCases))
	}

	for _, t := range towns {
		if !matched[t.Name] {
			report.TownsWithoutGeometry = append(report.TownsWithoutGeometry, t.Name)
		}
	}
	report.MatchedCount = len(matched)

	sort.Strings(report.TownsWithoutGeometry)
	sort.Strings(report.FeaturesWithoutCases)
	return report
}
