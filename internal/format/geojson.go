package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tdewolff/minify/v2"
	minifyjson "github.com/tdewolff/minify/v2/json"

	"github.com/woozymasta/openelevation/internal/geo"
)

// CollectionName is the name of every FeatureCollection produced by ToGeoJSON.
const CollectionName = "open_elevation"

const geoJSONMediaType = "application/geo+json"

var jsonMinifier = newJSONMinifier()

func newJSONMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(geoJSONMediaType, minifyjson.Minify)
	return m
}

// MissingFieldError is returned when a feature lacks a result property.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("feature %d: missing property %q", e.Index, e.Field)
}

// ToGeoJSON wraps each result as a Point feature. Geometry coordinates are
// [longitude, latitude].
func ToGeoJSON(results []geo.Result) geo.FeatureCollection {
	features := make([]geo.Feature, len(results))
	for i, r := range results {
		features[i] = geo.NewPoint(r.Longitude, r.Latitude, map[string]any{
			"longitude": r.Longitude,
			"latitude":  r.Latitude,
			"elevation": r.Elevation,
		})
	}
	return geo.FeatureCollection{
		Type:     "FeatureCollection",
		Name:     CollectionName,
		Features: features,
	}
}

// CoordinatesToGeoJSON wraps each coordinate as a Point feature without an
// elevation.
func CoordinatesToGeoJSON(coords []geo.Coordinate, name string) geo.FeatureCollection {
	features := make([]geo.Feature, len(coords))
	for i, c := range coords {
		features[i] = geo.NewPoint(c.Longitude, c.Latitude, map[string]any{
			"longitude": c.Longitude,
			"latitude":  c.Latitude,
		})
	}
	return geo.FeatureCollection{
		Type:     "FeatureCollection",
		Name:     name,
		Features: features,
	}
}

// FromGeoJSON reads the longitude, latitude and elevation properties back from
// the features of fc.
func FromGeoJSON(fc geo.FeatureCollection) ([]geo.Result, error) {
	results := make([]geo.Result, len(fc.Features))
	for i, f := range fc.Features {
		var values [3]float64
		for j, field := range Header {
			value, ok := f.Properties[field]
			if !ok || value == nil {
				return nil, &MissingFieldError{Index: i, Field: field}
			}
			number, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("feature %d: property %q: not a number", i, field)
			}
			values[j] = number
		}
		results[i] = geo.Result{Longitude: values[0], Latitude: values[1], Elevation: values[2]}
	}
	return results, nil
}

// MarshalGeoJSON returns fc as compact JSON.
func MarshalGeoJSON(fc geo.FeatureCollection) ([]byte, error) {
	if fc.Features == nil {
		fc.Features = []geo.Feature{}
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jsonMinifier.Minify(geoJSONMediaType, &buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
