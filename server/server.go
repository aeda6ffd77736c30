// Package server exposes the case explorer and similarity search over HTTP.
//
// Routes follow the upstream API surface: case browsing under /api/cases,
// similarity search under /api/similarity, projection data under /api/umap,
// and a static image mount under /images. All responses are JSON except the
// image files.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/caselens/caselens/feature"
	"github.com/caselens/caselens/projection"
	"github.com/caselens/caselens/search"
)

// Version reported by the root endpoint.
const Version = "1.0.0"

// Config configures a new Server instance.
type Config struct {
	Store       *feature.Store
	Searcher    *search.Searcher
	Projections *projection.Store
	ImagesDir   string // Optional: directory served under /images/
	Logger      *slog.Logger
}

// Server is the HTTP API over a loaded feature store.
type Server struct {
	store       *feature.Store
	searcher    *search.Searcher
	projections *projection.Store
	imagesDir   string
	logger      *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("feature store required")
	}
	if cfg.Searcher == nil {
		return nil, errors.New("searcher required")
	}
	if cfg.Projections == nil {
		return nil, errors.New("projection store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		store:       cfg.Store,
		searcher:    cfg.Searcher,
		projections: cfg.Projections,
		imagesDir:   cfg.ImagesDir,
		logger:      logger.With("component", "http_server"),
	}, nil
}

// Handler returns an http.Handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.HandleFunc("GET /api/cases/summary", s.handleCaseSummary)
	mux.HandleFunc("GET /api/cases/summary_all", s.handleCaseSummaryAll)
	mux.HandleFunc("GET /api/cases/search", s.handleCaseSearch)
	mux.HandleFunc("GET /api/cases/{id}", s.handleCaseDetail)
	mux.HandleFunc("GET /api/stats", s.handleDatasetStats)

	mux.HandleFunc("GET /api/similarity/similar/{caseId}", s.handleSimilarByCase)
	mux.HandleFunc("POST /api/similarity/search", s.handleTextSearch)
	mux.HandleFunc("GET /api/similarity/compare/{caseId}", s.handleCompare)
	mux.HandleFunc("GET /api/similarity/stats", s.handleModelStats)

	mux.HandleFunc("GET /api/umap/coordinates", s.handleProjectionCoordinates)
	mux.HandleFunc("GET /api/umap/methods", s.handleProjectionMethods)
	mux.HandleFunc("GET /api/umap/clinical-coordinates", s.handleClinicalCoordinates)
	mux.HandleFunc("GET /api/umap/similar-cases/{id}", s.handlePrecomputedSimilar)
	mux.HandleFunc("GET /api/umap/statistics", s.handleClinicalStatistics)

	if s.imagesDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir))))
	}

	return corsMiddleware(mux)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("HTTP server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Message:    "caselens API",
		Version:    Version,
		TotalCases: s.store.NumCases(),
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
