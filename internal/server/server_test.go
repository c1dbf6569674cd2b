package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/openelevation/internal/config"
	"github.com/woozymasta/openelevation/internal/geo"
	"github.com/woozymasta/openelevation/internal/openelevation"
	"github.com/woozymasta/openelevation/internal/processor"
	"github.com/woozymasta/openelevation/internal/sink"
)

type fakeLookuper struct {
	url string
	err error
}

func (f *fakeLookuper) Lookup(ctx context.Context, coords []geo.Coordinate) ([]geo.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	results := make([]geo.Result, len(coords))
	for i, c := range coords {
		results[i] = geo.Result{Latitude: c.Latitude, Longitude: c.Longitude, Elevation: 2 * c.Latitude}
	}
	return results, nil
}

type fakeSink struct {
	names []string
}

func (f *fakeSink) Save(ctx context.Context, name string, ds sink.Dataset) ([]string, error) {
	f.names = append(f.names, name)
	return []string{name + sink.ExtCSV, name + sink.ExtGeoJSON}, nil
}

func newTestServer(t *testing.T, lookuper *fakeLookuper, s sink.Sink) *ServerContext {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	srvCtx, err := NewServerContext(cfg, s)
	require.NoError(t, err)
	srvCtx.NewLookuper = func(url string) processor.Lookuper {
		lookuper.url = url
		return lookuper
	}
	return srvCtx
}

func uploadRequest(t *testing.T, target string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleIndex(t *testing.T) {
	srvCtx := newTestServer(t, &fakeLookuper{}, nil)
	handler := srvCtx.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OpenElevation")
	assert.Contains(t, rec.Body.String(), openelevation.DefaultURL)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleLookup_Preview(t *testing.T) {
	lookuper := &fakeLookuper{}
	handler := newTestServer(t, lookuper, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/api/lookup",
		map[string]string{"csv": "lat,lon\n10.0,20.0\n11.0,21.0\n"},
		map[string]string{"api_url": "http://elevation.internal/lookup"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "http://elevation.internal/lookup", lookuper.url)

	var resp lookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "csv (direct)", resp.Source)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"longitude", "latitude", "elevation"}, resp.Columns)
	assert.Equal(t, [][3]float64{{20, 10, 20}, {21, 11, 22}}, resp.Rows)

	var fc geo.FeatureCollection
	require.NoError(t, json.Unmarshal(resp.GeoJSON, &fc))
	assert.Len(t, fc.Features, 2)
}

func TestHandleLookup_Downloads(t *testing.T) {
	lookuper := &fakeLookuper{}
	handler := newTestServer(t, lookuper, nil).Handler()
	geoJSON := `{"features": [{"geometry": {"type": "Point", "coordinates": [20, 10]}}]}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/api/lookup?format=csv", map[string]string{"geojson": geoJSON}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, openelevation.DefaultURL, lookuper.url)
	assert.Equal(t, sink.MediaTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "open_elevation.csv")
	assert.Equal(t, "longitude,latitude,elevation\n20,10,20\n", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/api/lookup?format=geojson", map[string]string{"geojson": geoJSON}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sink.MediaTypeGeoJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"type":"FeatureCollection","name":"open_elevation","features":[
		{"type":"Feature","properties":{"longitude":20,"latitude":10,"elevation":20},
		 "geometry":{"type":"Point","coordinates":[20,10]}}]}`, rec.Body.String())
}

func TestHandleLookup_Save(t *testing.T) {
	s := &fakeSink{}
	handler := newTestServer(t, &fakeLookuper{}, s).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/api/lookup?save=1", map[string]string{"csv": "x,y\n1,2\n"}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, s.names, 1)
	assert.True(t, strings.HasPrefix(s.names[0], "open_elevation_"))

	var resp lookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "csv (xy)", resp.Source)
	assert.Equal(t, []string{s.names[0] + ".csv", s.names[0] + ".geojson"}, resp.Saved)
}

func TestHandleLookup_Errors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		lookuper *fakeLookuper
		target   string
		files    map[string]string
		status   int
		contains string
	}{
		{
			name:     "no_input",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup",
			status:   http.StatusBadRequest,
		},
		{
			name:     "undetected_columns",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup",
			files:    map[string]string{"csv": "a,b\n1,2\n"},
			status:   http.StatusBadRequest,
			contains: "easting/northing",
		},
		{
			name:     "non_numeric",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup",
			files:    map[string]string{"csv": "lat,lon\nabc,1\n"},
			status:   http.StatusBadRequest,
		},
		{
			name:     "bad_geojson",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup",
			files:    map[string]string{"geojson": "{"},
			status:   http.StatusBadRequest,
		},
		{
			name:     "upstream_failure",
			lookuper: &fakeLookuper{err: &openelevation.TransportError{URL: "u", StatusCode: 500, Err: errors.New("status 500")}},
			target:   "/api/lookup",
			files:    map[string]string{"csv": "lat,lon\n1,2\n"},
			status:   http.StatusBadGateway,
		},
		{
			name:     "save_without_sink",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup?save=1",
			files:    map[string]string{"csv": "lat,lon\n1,2\n"},
			status:   http.StatusBadRequest,
		},
		{
			name:     "unknown_format",
			lookuper: &fakeLookuper{},
			target:   "/api/lookup?format=xml",
			files:    map[string]string{"csv": "lat,lon\n1,2\n"},
			status:   http.StatusBadRequest,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestServer(t, tc.lookuper, nil).Handler()
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, uploadRequest(t, tc.target, tc.files, nil))
			assert.Equal(t, tc.status, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tc.contains != "" {
				assert.Contains(t, resp.Error, tc.contains)
			}
		})
	}
}

func TestHandleLookup_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, &fakeLookuper{}, nil).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	handler := newTestServer(t, &fakeLookuper{}, nil).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openelevation_requests_total")
}
