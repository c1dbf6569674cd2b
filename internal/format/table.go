// Package format converts elevation results into their tabular and GeoJSON
// representations.
package format

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/woozymasta/openelevation/internal/geo"
)

// Header is the fixed column order of a Table.
var Header = []string{"longitude", "latitude", "elevation"}

// A Table holds results as (longitude, latitude, elevation) rows.
type Table struct {
	Rows [][3]float64
}

// ToTable projects results into a Table, preserving order.
func ToTable(results []geo.Result) Table {
	rows := make([][3]float64, len(results))
	for i, r := range results {
		rows[i] = [3]float64{r.Longitude, r.Latitude, r.Elevation}
	}
	return Table{Rows: rows}
}

// Results returns the rows of t as results.
func (t Table) Results() []geo.Result {
	results := make([]geo.Result, len(t.Rows))
	for i, row := range t.Rows {
		results[i] = geo.Result{Longitude: row[0], Latitude: row[1], Elevation: row[2]}
	}
	return results
}

// WriteCSV writes t with a header row to w.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	record := make([]string, len(Header))
	for _, row := range t.Rows {
		for i, value := range row {
			record[i] = strconv.FormatFloat(value, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
