// Package openelevation implements a client for Open-Elevation compatible
// lookup endpoints.
package openelevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/openelevation/internal/geo"
)

const (
	DefaultURL       = "https://api.open-elevation.com/api/v1/lookup"
	DefaultChunkSize = 100
	DefaultTimeout   = 60 * time.Second
)

// A Client posts coordinates to a lookup endpoint in bounded chunks.
type Client struct {
	url        string
	chunkSize  int
	httpClient *http.Client
}

// A ClientOption sets an option on a Client.
type ClientOption func(*Client)

// Wire structures.
type lookupRequest struct {
	Locations []geo.Coordinate `json:"locations"`
}

type lookupResponse struct {
	Results []wireResult `json:"results"`
}

type wireResult struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"`
}

// NewClient returns a new Client for the endpoint at url. An empty url selects
// DefaultURL.
func NewClient(url string, options ...ClientOption) *Client {
	c := &Client{
		url:       url,
		chunkSize: DefaultChunkSize,
	}
	for _, option := range options {
		option(c)
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.chunkSize <= 0 {
		c.chunkSize = DefaultChunkSize
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

func WithChunkSize(chunkSize int) ClientOption {
	return func(c *Client) {
		c.chunkSize = chunkSize
	}
}

// WithHTTPClient sets the HTTP client. Its Timeout bounds each chunk request.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// URL returns c's endpoint.
func (c *Client) URL() string {
	return c.url
}

// ChunkSize returns c's chunk size.
func (c *Client) ChunkSize() int {
	return c.chunkSize
}

// Lookup returns the elevation of every coordinate in coords, in order.
// Chunks are sent one after another; the first failing chunk aborts the
// whole lookup and no results are returned.
func (c *Client) Lookup(ctx context.Context, coords []geo.Coordinate) ([]geo.Result, error) {
	results := make([]geo.Result, 0, len(coords))
	for chunk, start := 0, 0; start < len(coords); chunk, start = chunk+1, start+c.chunkSize {
		end := min(start+c.chunkSize, len(coords))
		locations := coords[start:end]

		wireResults, err := c.lookupChunk(ctx, chunk, locations)
		if err != nil {
			return nil, err
		}

		if len(wireResults) != len(locations) {
			log.Warn().
				Str("url", c.url).
				Int("chunk", chunk).
				Int("sent", len(locations)).
				Int("received", len(wireResults)).
				Msg("Result count does not match request")
		}

		for _, r := range wireResults {
			result, err := r.result(len(results))
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
	}

	pointsTotal.Add(float64(len(results)))
	return results, nil
}

// lookupChunk sends a single chunk request.
func (c *Client) lookupChunk(ctx context.Context, chunk int, locations []geo.Coordinate) ([]wireResult, error) {
	body, err := json.Marshal(lookupRequest{Locations: locations})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	requestsTotal.Inc()
	defer func() { requestDuration.Observe(time.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		requestFailuresTotal.Inc()
		return nil, &TransportError{URL: c.url, Chunk: chunk, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestFailuresTotal.Inc()
		return nil, &TransportError{URL: c.url, Chunk: chunk, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestFailuresTotal.Inc()
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &TransportError{
			URL:        c.url,
			Chunk:      chunk,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var data lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		requestFailuresTotal.Inc()
		return nil, &TransportError{URL: c.url, Chunk: chunk, Err: fmt.Errorf("decode response: %w", err)}
	}

	log.Debug().
		Int("chunk", chunk).
		Int("locations", len(locations)).
		Dur("duration", time.Since(start)).
		Msg("Chunk looked up")

	return data.Results, nil
}

func (r wireResult) result(index int) (geo.Result, error) {
	switch {
	case r.Latitude == nil:
		return geo.Result{}, &MissingFieldError{Index: index, Field: "latitude"}
	case r.Longitude == nil:
		return geo.Result{}, &MissingFieldError{Index: index, Field: "longitude"}
	case r.Elevation == nil:
		return geo.Result{}, &MissingFieldError{Index: index, Field: "elevation"}
	}
	return geo.Result{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Elevation: *r.Elevation,
	}, nil
}
