package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/woozymasta/openelevation/internal/geo"
)

// Candidate header names per axis, in priority order. The first present name
// wins, so "latitude" beats "y" when both exist.
var (
	latitudeNames  = []string{"latitude", "lat", "y", "northing", "northings"}
	longitudeNames = []string{"longitude", "lon", "long", "x", "easting", "eastings"}
)

// Columns identifies the header cells holding the coordinates.
type Columns struct {
	Latitude  int // index into the header
	Longitude int
	Source    Source
}

// normalizeHeader maps normalized header names to their column index. When
// two cells normalize to the same name the later one wins.
func normalizeHeader(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func firstPresent(index map[string]int, names []string) (string, bool) {
	for _, name := range names {
		if _, ok := index[name]; ok {
			return name, true
		}
	}
	return "", false
}

// DetectColumns finds the latitude and longitude columns in header.
func DetectColumns(header []string) (Columns, error) {
	index := normalizeHeader(header)

	latName, latOK := firstPresent(index, latitudeNames)
	lonName, lonOK := firstPresent(index, longitudeNames)
	if !latOK || !lonOK {
		return Columns{}, &DetectionError{Header: header}
	}

	cols := Columns{
		Latitude:  index[latName],
		Longitude: index[lonName],
	}
	switch {
	case latName == "y" && lonName == "x":
		cols.Source = SourceXY
	case strings.HasPrefix(latName, "northing") && strings.HasPrefix(lonName, "easting"):
		cols.Source = SourceEN
	default:
		cols.Source = SourceDirect
	}

	return cols, nil
}

// FromTable detects the coordinate columns of header and converts every row.
func FromTable(header []string, rows [][]string) ([]geo.Coordinate, Source, error) {
	cols, err := DetectColumns(header)
	if err != nil {
		return nil, "", err
	}

	coords := make([]geo.Coordinate, 0, len(rows))
	for i, row := range rows {
		lat, err := parseCell(row, i, cols.Latitude, header)
		if err != nil {
			return nil, "", err
		}
		lon, err := parseCell(row, i, cols.Longitude, header)
		if err != nil {
			return nil, "", err
		}
		coords = append(coords, geo.Coordinate{Latitude: lat, Longitude: lon})
	}

	return coords, cols.Source, nil
}

func parseCell(row []string, rowIndex, col int, header []string) (float64, error) {
	if col >= len(row) {
		return 0, &ConversionError{Row: rowIndex, Column: header[col], Err: errors.New("missing cell")}
	}
	value := strings.TrimSpace(row[col])
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ConversionError{Row: rowIndex, Column: header[col], Value: row[col], Err: err}
	}
	return f, nil
}

// ReadCSV reads a CSV document with a header row from r and extracts its
// coordinates.
func ReadCSV(r io.Reader) ([]geo.Coordinate, Source, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, "", &DetectionError{}
	}
	if err != nil {
		return nil, "", fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("read csv: %w", err)
	}

	return FromTable(header, rows)
}
