package server

import (
	"net/http"

	"github.com/caselens/caselens/projection"
)

func (s *Server) handleProjectionCoordinates(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	if method == "" {
		method = projection.MethodHybrid
	}

	set, err := s.projections.Coordinates(method)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleProjectionMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]projection.MethodInfo{
		"methods": s.projections.Methods(),
	})
}

func (s *Server) handleClinicalCoordinates(w http.ResponseWriter, r *http.Request) {
	set, err := s.projections.ClinicalCoordinates()
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handlePrecomputedSimilar(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	topK, err := queryInt(r, "top_k", 5)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.projections.SimilarCases(caseID, topK)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleClinicalStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.projections.Statistics()
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
