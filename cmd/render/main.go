package main

import (
	"flag"
	"fmt"
	"os"

	"casemap-api/internal/cases"
	"casemap-api/internal/choropleth"
	"casemap-api/internal/geojson"
)

// One-shot renderer: reads the boundary file and the case workbook from disk
// and writes a standalone choropleth HTML page, no server or database needed.
func main() {
	geojsonFile := flag.String("geojson", "towns.geojson", "Path to the town boundary GeoJSON file")
	casesFile := flag.String("cases", "cases.xlsx", "Path to the confirmed-cases workbook")
	out := flag.String("out", "choropleth.html", "Output HTML file")
	title := flag.String("title", "Confirmed COVID-19 Cases in Orange County (By City)", "Map title")
	min := flag.Float64("min", 0, "Color range minimum")
	max := flag.Float64("max", 150, "Color range maximum")
	flag.Parse()

	scale, err := choropleth.NewScale(*min, *max)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fc, err := geojson.Load(*geojsonFile)
	if err != nil {
		fmt.Printf("Error loading boundaries: %v\n", err)
		os.Exit(1)
	}

	bounds, err := fc.Bounds()
	if err != nil {
		fmt.Printf("Error computing bounds: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Map bounds: lon [%v, %v], lat [%v, %v]\n", bounds.MinLon, bounds.MaxLon, bounds.MinLat, bounds.MaxLat)

	towns, err := cases.Read(*casesFile)
	if err != nil {
		fmt.Printf("Error loading cases: %v\n", err)
		os.Exit(1)
	}

	report := choropleth.Join(fc, towns, scale)
	fmt.Printf("Joined %d towns\n", report.MatchedCount)
	for _, name := range report.TownsWithoutGeometry {
		fmt.Printf("Warning: case row %q has no boundary\n", name)
	}
	for _, name := range report.FeaturesWithoutCases {
		fmt.Printf("Warning: boundary %q has no case row\n", name)
	}

	renderer, err := choropleth.NewRenderer()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Printf("Error creating output file: %v\n", err)
		os.Exit(1)
	}

	if err := renderer.Render(f, fc, *title, scale); err != nil {
		f.Close()
		fmt.Printf("Error rendering map: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Printf("Error writing output file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *out)
}
