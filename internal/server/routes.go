package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler serving every route.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/lookup", s.HandleLookup)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
