package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/caselens/caselens/core"
)

const (
	defaultTopK       = 10
	defaultTextWeight = 0.5
)

func (s *Server) handleSimilarByCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseId")

	methodParam := r.URL.Query().Get("method")
	if methodParam == "" {
		methodParam = string(core.MethodBERT)
	}
	method, err := core.ParseMethod(methodParam)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}
	topK, err := queryInt(r, "top_k", defaultTopK)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp := SimilarityResponse{
		QueryCaseID:        caseID,
		Method:             string(method),
		TotalCasesSearched: s.store.NumCases(),
	}

	if method == core.MethodHybrid {
		weight, err := queryFloat(r, "text_weight", defaultTextWeight)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
			return
		}
		results, err := s.searcher.SimilarHybrid(r.Context(), caseID, topK, weight)
		if err != nil {
			s.writeError(w, r, err, http.StatusInternalServerError)
			return
		}
		resp.TextWeight = &weight
		resp.Results = results
	} else {
		results, err := s.searcher.SimilarToCase(r.Context(), caseID, method, topK)
		if err != nil {
			s.writeError(w, r, err, http.StatusInternalServerError)
			return
		}
		resp.Results = results
	}

	resp.SearchTimeMs = elapsedMs(start)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	var req TextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body: %w", core.ErrInvalidInput, err), http.StatusBadRequest)
		return
	}
	if req.Method == "" {
		req.Method = string(core.MethodBERT)
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}
	method, err := core.ParseMethod(req.Method)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	results, err := s.searcher.SearchText(r.Context(), req.Text, method, req.TopK)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SimilarityResponse{
		QueryText:          req.Text,
		Method:             string(method),
		Results:            results,
		TotalCasesSearched: s.store.NumCases(),
		SearchTimeMs:       elapsedMs(start),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseId")
	topK, err := queryInt(r, "top_k", defaultTopK)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	comparison, err := s.searcher.CompareMethods(r.Context(), caseID, topK)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	diagnosis := ""
	if row, ok := s.store.CaseIndex(caseID); ok {
		diagnosis = s.store.Case(row).Diagnosis
	}

	writeJSON(w, http.StatusOK, CompareResponse{
		QueryCaseID:       caseID,
		QueryDiagnosis:    diagnosis,
		TFIDFResults:      comparison.TFIDF,
		BERTResults:       comparison.BERT,
		OverlapCount:      comparison.OverlapCount,
		OverlapPercentage: comparison.OverlapPct,
		SearchTimeMs:      elapsedMs(start),
	})
}

// ModelStatsResponse describes the loaded embedding spaces.
type ModelStatsResponse struct {
	TotalCases       int                  `json:"total_cases"`
	AvailableMethods []string             `json:"available_methods"`
	HasImages        bool                 `json:"has_images"`
	Spaces           map[string]SpaceInfo `json:"spaces"`
}

// SpaceInfo is the wire form of one embedding space's statistics.
type SpaceInfo struct {
	NumFeatures      int     `json:"num_features"`
	ModelName        string  `json:"model_name,omitempty"`
	Sparsity         float32 `json:"sparsity,omitempty"`
	MeanSimilarity   float32 `json:"mean_similarity,omitempty"`
	MedianSimilarity float32 `json:"median_similarity,omitempty"`
}

func (s *Server) handleModelStats(w http.ResponseWriter, r *http.Request) {
	stats := s.searcher.Stats()

	spaces := make(map[string]SpaceInfo, len(stats.Spaces))
	for name, space := range stats.Spaces {
		spaces[name] = SpaceInfo{
			NumFeatures:      space.NumFeatures,
			ModelName:        space.ModelName,
			Sparsity:         space.Sparsity,
			MeanSimilarity:   space.MeanSimilarity,
			MedianSimilarity: space.MedianSimilarity,
		}
	}

	writeJSON(w, http.StatusOK, ModelStatsResponse{
		TotalCases:       stats.TotalCases,
		AvailableMethods: stats.AvailableMethods,
		HasImages:        stats.HasImages,
		Spaces:           spaces,
	})
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
