package extract

import (
	"fmt"
	"strings"
)

// AcceptedHeaders describes the header variants DetectColumns recognizes.
const AcceptedHeaders = "lat/latitude + lon/longitude (or long), or x/y, or easting/northing"

// DetectionError is returned when no usable coordinate columns are found.
type DetectionError struct {
	Header []string
}

func (e *DetectionError) Error() string {
	if len(e.Header) == 0 {
		return "could not detect coordinate columns: no header. Expected: " + AcceptedHeaders
	}
	return fmt.Sprintf("could not detect coordinate columns in [%s]. Expected: %s",
		strings.Join(e.Header, ", "), AcceptedHeaders)
}

// ConversionError is returned when a coordinate cell is not a number. Row is
// zero based and excludes the header.
type ConversionError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot convert %q to a number", e.Row+1, e.Column, e.Value)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
