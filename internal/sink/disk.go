package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Disk writes datasets into Dir, creating it if needed.
type Disk struct {
	Dir string
}

// Save writes <Dir>/<name>.csv and <Dir>/<name>.geojson.
func (d Disk) Save(ctx context.Context, name string, ds Dataset) ([]string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(d.Dir, name+ExtCSV)
	geoJSONPath := filepath.Join(d.Dir, name+ExtGeoJSON)

	if err := os.WriteFile(csvPath, ds.CSV, 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(geoJSONPath, ds.GeoJSON, 0644); err != nil {
		return nil, err
	}

	log.Debug().
		Str("csv", csvPath).
		Str("geojson", geoJSONPath).
		Msg("Outputs written to disk")

	return []string{csvPath, geoJSONPath}, nil
}
