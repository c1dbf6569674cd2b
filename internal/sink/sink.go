// Package sink persists formatted lookup output.
package sink

import (
	"context"
	"time"

	"github.com/woozymasta/openelevation/internal/config"
)

const (
	ExtCSV     = ".csv"
	ExtGeoJSON = ".geojson"

	MediaTypeCSV     = "text/csv"
	MediaTypeGeoJSON = "application/geo+json"
)

// A Dataset is the serialized output of one lookup.
type Dataset struct {
	CSV     []byte
	GeoJSON []byte
}

// A Sink stores a Dataset under a base name and returns the locations written.
type Sink interface {
	Save(ctx context.Context, name string, ds Dataset) ([]string, error)
}

// BaseName returns the timestamped file stem for output saved at t.
func BaseName(t time.Time) string {
	return "open_elevation_" + t.Format("20060102_150405")
}

// New returns the S3 sink when s3cfg names a bucket, otherwise a Disk sink
// writing into dir.
func New(ctx context.Context, dir string, s3cfg config.S3) (Sink, error) {
	if s3cfg.Bucket == "" {
		return Disk{Dir: dir}, nil
	}
	return NewS3(ctx, s3cfg.Bucket, s3cfg.Prefix, s3cfg.Region, s3cfg.AccessKey, s3cfg.SecretKey)
}
