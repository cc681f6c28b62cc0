package geojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Geometry holds a GeoJSON geometry with its coordinates left untyped, since
// polygon and multipolygon nesting depth differ.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Feature is a single town boundary. ID is derived from the trimmed
// properties name so case rows can be matched against it.
type Feature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   Geometry               `json:"geometry"`
}

// FeatureCollection is the outer GeoJSON container.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Name     string     `json:"name,omitempty"`
	Features []*Feature `json:"features"`
}

// Bounds is a lon/lat bounding box over every position in a collection.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Load reads and parses a GeoJSON file from disk.
func Load(path string) (*FeatureCollection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geojson: failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes a FeatureCollection and assigns each feature an ID from its
// trimmed properties name. The source data carries stray whitespace around
// names, and the name is the join key, so trimming happens here and nowhere
// else.
func Parse(r io.Reader) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geojson: failed to decode: %w", err)
	}

	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geojson: expected FeatureCollection, got %q", fc.Type)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("geojson: collection contains no features")
	}

	for i, f := range fc.Features {
		name, ok := f.Properties["name"].(string)
		if !ok {
			return nil, fmt.Errorf("geojson: feature %d has no name property", i)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("geojson: feature %d has a blank name", i)
		}
		f.ID = name
	}

	return &fc, nil
}

// Clone returns a copy of the collection whose features and property maps are
// independent of the original. Coordinates are shared; they are never
// mutated after parsing.
func (fc *FeatureCollection) Clone() *FeatureCollection {
	out := &FeatureCollection{
		Type:     fc.Type,
		Name:     fc.Name,
		Features: make([]*Feature, len(fc.Features)),
	}
	for i, f := range fc.Features {
		props := make(map[string]interface{}, len(f.Properties)+2)
		for k, v := range f.Properties {
			props[k] = v
		}
		out.Features[i] = &Feature{
			Type:       f.Type,
			ID:         f.ID,
			Properties: props,
			Geometry:   f.Geometry,
		}
	}
	return out
}

// Bounds walks every coordinate in the collection and returns the enclosing
// lon/lat box, used to fit the map viewport to the data.
func (fc *FeatureCollection) Bounds() (Bounds, error) {
	b := Bounds{MinLon: 180, MinLat: 90, MaxLon: -180, MaxLat: -90}
	found := false

	for _, f := range fc.Features {
		walkPositions(f.Geometry.Coordinates, func(lon, lat float64) {
			found = true
			if lon < b.MinLon {
				b.MinLon = lon
			}
			if lon > b.MaxLon {
				b.MaxLon = lon
			}
			if lat < b.MinLat {
				b.MinLat = lat
			}
			if lat > b.MaxLat {
				b.MaxLat = lat
			}
		})
	}

	if !found {
		return Bounds{}, fmt.Errorf("geojson: collection has no coordinates")
	}
	return b, nil
}

// walkPositions recurses through the untyped coordinate nesting and invokes
// fn for every [lon, lat] leaf pair.
func walkPositions(coords interface{}, fn func(lon, lat float64)) {
	arr, ok := coords.([]interface{})
	if !ok || len(arr) == 0 {
		return
	}

	lon, lonOK := toFloat(arr[0])
	if lonOK && len(arr) >= 2 {
		if lat, latOK := toFloat(arr[1]); latOK {
			fn(lon, lat)
			return
		}
	}

	for _, inner := range arr {
		walkPositions(inner, fn)
	}
}

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
