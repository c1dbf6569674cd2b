// Package extract turns uploaded GeoJSON or CSV documents into a flat list of
// query coordinates.
package extract

import "fmt"

// Source records how coordinates were derived. It is informational only.
type Source string

const (
	SourceGeoJSON Source = "geojson"
	SourceDirect  Source = "direct" // lat/lon style columns
	SourceXY      Source = "xy"     // generic x/y columns
	SourceEN      Source = "en"     // easting/northing columns
)

// Label returns a user facing description of s, e.g. "csv (direct)".
func (s Source) Label() string {
	switch s {
	case "":
		return "unknown"
	case SourceGeoJSON:
		return string(s)
	default:
		return fmt.Sprintf("csv (%s)", s)
	}
}
