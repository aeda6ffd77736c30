package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/caselens/caselens/core"
)

func (s *Server) handleCaseSummary(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	if limit < 0 || offset < 0 {
		s.writeError(w, r, errors.New("limit and offset must be non-negative"), http.StatusBadRequest)
		return
	}

	cases := s.store.Cases()
	if offset > len(cases) {
		offset = len(cases)
	}
	end := offset + limit
	if end > len(cases) {
		end = len(cases)
	}

	summaries := make([]CaseSummary, 0, end-offset)
	for _, c := range cases[offset:end] {
		summaries = append(summaries, summaryFromCase(c))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCaseSummaryAll(w http.ResponseWriter, r *http.Request) {
	cases := s.store.Cases()
	summaries := make([]CaseSummary, len(cases))
	for i, c := range cases {
		summaries[i] = summaryFromCase(c)
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCaseDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	row, ok := s.store.CaseIndex(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Case " + id + " not found"})
		return
	}
	writeJSON(w, http.StatusOK, detailFromCase(s.store.Case(row)))
}

// handleCaseSearch is a plain substring match over diagnoses, kept for the
// gallery filter box. Semantic search lives under /api/similarity.
func (s *Server) handleCaseSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	results := make([]CaseSummary, 0, limit)
	for _, c := range s.store.Cases() {
		if query != "" && !strings.Contains(strings.ToLower(c.Diagnosis), query) {
			continue
		}
		results = append(results, summaryFromCase(c))
		if len(results) >= limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDatasetStats(w http.ResponseWriter, r *http.Request) {
	cases := s.store.Cases()
	totalImages := 0
	for _, c := range cases {
		totalImages += c.ImageCount
	}

	avg := 0.0
	if len(cases) > 0 {
		avg = float64(totalImages) / float64(len(cases))
	}
	writeJSON(w, http.StatusOK, DatasetStats{
		TotalCases:       len(cases),
		TotalImages:      totalImages,
		AvgImagesPerCase: avg,
	})
}

// writeError maps domain errors onto HTTP statuses. fallback is used when
// the error carries no taxonomy class.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, core.ErrCorruptArtifact):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", core.ErrInvalidInput, name, raw)
	}
	return n, nil
}
