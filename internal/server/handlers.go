// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/openelevation/internal/extract"
	"github.com/woozymasta/openelevation/internal/format"
	"github.com/woozymasta/openelevation/internal/openelevation"
	"github.com/woozymasta/openelevation/internal/processor"
	"github.com/woozymasta/openelevation/internal/sink"
)

const (
	downloadCSV     = "open_elevation.csv"
	downloadGeoJSON = "open_elevation.geojson"
)

// lookupResponse is the JSON preview returned by HandleLookup.
type lookupResponse struct {
	Source  string          `json:"source"`
	Columns []string        `json:"columns"`
	Rows    [][3]float64    `json:"rows"`
	GeoJSON json.RawMessage `json:"geojson"`
	Saved   []string        `json:"saved,omitempty"`
	Count   int             `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleIndex serves the upload page.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleLookup accepts a multipart upload with "geojson" and/or "csv" files
// and an optional "api_url" field. The format query parameter selects a JSON
// preview (default), or a csv or geojson download. save=1 persists the
// outputs through the configured sink.
func (s *ServerContext) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	outputFormat := r.URL.Query().Get("format")
	switch outputFormat {
	case "", "json", "csv", "geojson":
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", outputFormat))
		return
	}

	maxBytes := int64(s.Config.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var in processor.Input
	for name, target := range map[string]*io.Reader{"geojson": &in.GeoJSON, "csv": &in.CSV} {
		file, err := formFile(r.MultipartForm, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if file != nil {
			defer func() { _ = file.Close() }()
			*target = file
		}
	}

	coords, source, err := processor.Extract(in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	apiURL := strings.TrimSpace(r.FormValue("api_url"))
	if apiURL == "" {
		apiURL = s.Config.APIURL
	}

	out, err := processor.Run(r.Context(), s.NewLookuper(apiURL), coords)
	if err != nil {
		log.Error().Err(err).Str("api_url", apiURL).Msg("Lookup failed")
		writeError(w, statusFor(err), err)
		return
	}

	var saved []string
	if r.URL.Query().Get("save") == "1" {
		if s.Sink == nil {
			writeError(w, http.StatusBadRequest, errors.New("saving outputs is not configured"))
			return
		}
		saved, err = s.Sink.Save(r.Context(), sink.BaseName(time.Now()), out.Dataset)
		if err != nil {
			log.Error().Err(err).Msg("Failed to save outputs")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		log.Info().Strs("paths", saved).Msg("Outputs saved")
	}

	switch outputFormat {
	case "csv":
		writeDownload(w, sink.MediaTypeCSV, downloadCSV, out.Dataset.CSV)
	case "geojson":
		writeDownload(w, sink.MediaTypeGeoJSON, downloadGeoJSON, out.Dataset.GeoJSON)
	default:
		w.Header().Set("Content-Type", "application/json")
		// Ignoring error as we cannot handle client disconnects
		_ = json.NewEncoder(w).Encode(lookupResponse{
			Source:  source.Label(),
			Count:   len(out.Results),
			Columns: format.Header,
			Rows:    out.Table.Rows,
			GeoJSON: out.Dataset.GeoJSON,
			Saved:   saved,
		})
	}
}

// formFile returns the uploaded file called name, or nil if there is none.
func formFile(form *multipart.Form, name string) (multipart.File, error) {
	headers := form.File[name]
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil, nil
	}
	file, err := headers[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s upload: %w", name, err)
	}
	return file, nil
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		detectionErr  *extract.DetectionError
		conversionErr *extract.ConversionError
		transportErr  *openelevation.TransportError
		missingErr    *openelevation.MissingFieldError
		syntaxErr     *json.SyntaxError
		unmarshalErr  *json.UnmarshalTypeError
		csvErr        *csv.ParseError
	)
	switch {
	case errors.As(err, &transportErr), errors.As(err, &missingErr):
		return http.StatusBadGateway
	case errors.Is(err, processor.ErrNoInput),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &detectionErr),
		errors.As(err, &conversionErr),
		errors.As(err, &syntaxErr),
		errors.As(err, &unmarshalErr),
		errors.As(err, &csvErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDownload(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
