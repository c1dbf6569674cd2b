package server

import (
	"bytes"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/woozymasta/openelevation/assets"
	"github.com/woozymasta/openelevation/internal/config"
	"github.com/woozymasta/openelevation/internal/openelevation"
	"github.com/woozymasta/openelevation/internal/processor"
	"github.com/woozymasta/openelevation/internal/sink"
)

// A LookuperFunc returns the lookup client for an endpoint URL.
type LookuperFunc func(url string) processor.Lookuper

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config      *config.Config
	Sink        sink.Sink
	NewLookuper LookuperFunc
	IndexHTML   []byte
}

type pageData struct {
	CSS    string
	JS     string
	APIURL string
}

// NewServerContext renders the front end and wires the lookup client. A nil
// s disables saving outputs.
func NewServerContext(cfg *config.Config, s sink.Sink) (*ServerContext, error) {
	index, err := renderIndex(cfg.APIURL)
	if err != nil {
		return nil, err
	}

	chunkSize := cfg.ChunkSize

	log.Info().
		Str("api_url", cfg.APIURL).
		Int("chunk_size", chunkSize).
		Bool("sink", s != nil).
		Int("index_bytes", len(index)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config: cfg,
		Sink:   s,
		NewLookuper: func(url string) processor.Lookuper {
			return openelevation.NewClient(url, openelevation.WithChunkSize(chunkSize))
		},
		IndexHTML: index,
	}, nil
}

// renderIndex fills the page template and minifies the result.
func renderIndex(apiURL string) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{
		CSS:    assets.Style,
		JS:     assets.Script,
		APIURL: template.HTMLEscapeString(apiURL),
	}); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := m.Minify("text/html", &out, &buf); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
