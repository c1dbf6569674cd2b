package openelevation

import "fmt"

// TransportError is returned when a chunk request fails, either in transit or
// with a non-2xx status. StatusCode is zero for transport failures.
type TransportError struct {
	URL        string
	Chunk      int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("lookup %s: chunk %d: status %d", e.URL, e.Chunk, e.StatusCode)
	}
	return fmt.Sprintf("lookup %s: chunk %d: %v", e.URL, e.Chunk, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MissingFieldError is returned when a result lacks a required field. Index
// is the position in the flat result sequence.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("result %d: missing field %q", e.Index, e.Field)
}
