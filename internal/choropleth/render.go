package choropleth

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"casemap-api/internal/geojson"
)

//go:embed map.tmpl.html
var pageTemplate string

// Renderer emits a standalone interactive choropleth HTML document. The page
// carries the joined GeoJSON inline and delegates drawing to Leaflet in the
// browser.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("map").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("choropleth: failed to parse page template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type pageData struct {
	Title      string
	GeoJSON    template.JS
	Legend     []LegendEntry
	NoDataFill string
}

// Render writes the map page for an already-joined feature collection.
func (r *Renderer) Render(w io.Writer, fc *geojson.FeatureCollection, title string, scale Scale) error {
	raw, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("choropleth: failed to encode feature collection: %w", err)
	}

	data := pageData{
		Title:      title,
		GeoJSON:    template.JS(raw),
		Legend:     scale.Legend(6),
		NoDataFill: NoDataFill,
	}

	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("choropleth: failed to render page: %w", err)
	}
	return nil
}
