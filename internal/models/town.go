package models

// Town represents a single mapped region, pairing its display name with the confirmed case count reported for it.
type Town struct {
	Name           string `json:"name"`
	ConfirmedCases int    `json:"confirmed_cases"`
}

// CoverageReport describes how completely the case table and the boundary file
// matched when joined on town name. A fully clean join has both slices empty.
type CoverageReport struct {
	MatchedCount         int      `json:"matched_count"`
	TownsWithoutGeometry []string `json:"towns_without_geometry"`
	FeaturesWithoutCases []string `json:"features_without_cases"`
}

// Clean reports whether every case row matched a boundary and vice versa.
func (r CoverageReport) Clean() bool {
	return len(r.TownsWithoutGeometry) == 0 && len(r.FeaturesWithoutCases) == 0
}
