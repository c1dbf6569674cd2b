package extract

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/woozymasta/openelevation/internal/geo"
)

// Input structures for GeoJSON parsing. Coordinates are pointers so that
// null entries can be told apart from zero.
type inputCollection struct {
	Features []inputFeature `json:"features"`
}

type inputFeature struct {
	Geometry *struct {
		Type        string     `json:"type"`
		Coordinates []*float64 `json:"coordinates"`
	} `json:"geometry"`
}

// FromGeoJSON extracts the Point features of the document read from r, in
// feature order. Features with another geometry type, without geometry, or
// with a missing or null longitude or latitude are skipped.
func FromGeoJSON(r io.Reader) ([]geo.Coordinate, error) {
	var fc inputCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	coords := make([]geo.Coordinate, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil || f.Geometry.Type != "Point" {
			continue
		}
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		if lon == nil || lat == nil {
			continue
		}
		coords = append(coords, geo.Coordinate{Latitude: *lat, Longitude: *lon})
	}

	return coords, nil
}
