// Package processor runs the extract, lookup and format stages of an
// elevation request.
package processor

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/openelevation/internal/extract"
	"github.com/woozymasta/openelevation/internal/format"
	"github.com/woozymasta/openelevation/internal/geo"
	"github.com/woozymasta/openelevation/internal/sink"
)

// ErrNoInput is returned by Extract when neither input is set.
var ErrNoInput = errors.New("no GeoJSON or CSV input")

// A Lookuper resolves the elevation of coordinates.
type Lookuper interface {
	Lookup(ctx context.Context, coords []geo.Coordinate) ([]geo.Result, error)
}

// Input holds the uploaded documents. Either may be nil.
type Input struct {
	GeoJSON io.Reader
	CSV     io.Reader
}

// Output is the formatted result of a lookup.
type Output struct {
	Results    []geo.Result
	Table      format.Table
	Collection geo.FeatureCollection
	Dataset    sink.Dataset
}

// Extract reads coordinates from in. When both documents are given the CSV
// result supersedes the GeoJSON one.
func Extract(in Input) ([]geo.Coordinate, extract.Source, error) {
	var (
		coords []geo.Coordinate
		source extract.Source
		err    error
	)

	if in.GeoJSON == nil && in.CSV == nil {
		return nil, "", ErrNoInput
	}

	if in.GeoJSON != nil {
		coords, err = extract.FromGeoJSON(in.GeoJSON)
		if err != nil {
			return nil, "", err
		}
		source = extract.SourceGeoJSON
	}

	if in.CSV != nil {
		if in.GeoJSON != nil {
			log.Debug().Msg("Both GeoJSON and CSV given, using CSV")
		}
		coords, source, err = extract.ReadCSV(in.CSV)
		if err != nil {
			return nil, "", err
		}
	}

	log.Info().
		Int("points", len(coords)).
		Str("source", source.Label()).
		Msg("Coordinates loaded")

	return coords, source, nil
}

// Run looks up coords and formats the results. Any failure aborts the run
// without partial output.
func Run(ctx context.Context, client Lookuper, coords []geo.Coordinate) (*Output, error) {
	results, err := client.Lookup(ctx, coords)
	if err != nil {
		return nil, err
	}

	table := format.ToTable(results)
	fc := format.ToGeoJSON(results)

	var csvBuf bytes.Buffer
	if err := format.WriteCSV(&csvBuf, table); err != nil {
		return nil, err
	}
	geoJSON, err := format.MarshalGeoJSON(fc)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("results", len(results)).
		Msg("Elevations fetched")

	return &Output{
		Results:    results,
		Table:      table,
		Collection: fc,
		Dataset: sink.Dataset{
			CSV:     csvBuf.Bytes(),
			GeoJSON: geoJSON,
		},
	}, nil
}
