package server

import "github.com/caselens/caselens/core"

// InfoResponse is the root health/info payload.
type InfoResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	TotalCases int    `json:"total_cases"`
}

// ErrorResponse is the JSON error payload for all failed requests.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// CaseSummary is the gallery view of a case.
type CaseSummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Diagnosis  string   `json:"diagnosis,omitempty"`
	ImageCount int      `json:"imageCount"`
	PatientAge *int     `json:"patient_age,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	Modalities []string `json:"modalities"`
	Regions    []string `json:"regions"`
	WordCount  int      `json:"word_count"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	URL        string   `json:"url,omitempty"`
}

// CaseDetail is the full case record.
type CaseDetail struct {
	ID                    string   `json:"id"`
	URL                   string   `json:"url,omitempty"`
	PatientAge            *int     `json:"patient_age,omitempty"`
	Gender                string   `json:"gender,omitempty"`
	Modalities            []string `json:"modalities"`
	Regions               []string `json:"regions"`
	Diagnosis             string   `json:"diagnosis,omitempty"`
	Title                 string   `json:"title,omitempty"`
	History               string   `json:"history,omitempty"`
	Exam                  string   `json:"exam,omitempty"`
	Findings              string   `json:"findings,omitempty"`
	Treatment             string   `json:"treatment,omitempty"`
	Discussion            string   `json:"discussion,omitempty"`
	DifferentialDiagnosis string   `json:"differentialDiagnosis,omitempty"`
	WordCount             int      `json:"word_count"`
	ImageCount            int      `json:"imageCount"`
	ImagePaths            []string `json:"imagePaths"`
	CaseFolder            string   `json:"caseFolder,omitempty"`
	Thumbnail             string   `json:"thumbnail,omitempty"`
}

// DatasetStats summarizes the corpus.
type DatasetStats struct {
	TotalCases       int     `json:"total_cases"`
	TotalImages      int     `json:"total_images"`
	AvgImagesPerCase float64 `json:"avg_images_per_case"`
}

// SimilarityResponse is the payload for similarity queries. Results holds
// either plain or hybrid formatted cases depending on the method.
type SimilarityResponse struct {
	QueryCaseID        string   `json:"query_case_id,omitempty"`
	QueryText          string   `json:"query_text,omitempty"`
	Method             string   `json:"method"`
	TextWeight         *float64 `json:"text_weight,omitempty"`
	Results            any      `json:"results"`
	TotalCasesSearched int      `json:"total_cases_searched"`
	SearchTimeMs       float64  `json:"search_time_ms"`
}

// TextSearchRequest is the body of POST /api/similarity/search.
type TextSearchRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
	TopK   int    `json:"top_k"`
}

// CompareResponse is the side-by-side method comparison payload.
type CompareResponse struct {
	QueryCaseID       string             `json:"query_case_id"`
	QueryDiagnosis    string             `json:"query_diagnosis"`
	TFIDFResults      []core.SimilarCase `json:"tfidf_results"`
	BERTResults       []core.SimilarCase `json:"bert_results"`
	OverlapCount      int                `json:"overlap_count"`
	OverlapPercentage float64            `json:"overlap_percentage"`
	SearchTimeMs      float64            `json:"search_time_ms"`
}

func summaryFromCase(c *core.Case) CaseSummary {
	return CaseSummary{
		ID:         c.ID,
		Title:      c.Title,
		Diagnosis:  c.Diagnosis,
		ImageCount: c.ImageCount,
		PatientAge: agePtr(c.PatientAge),
		Gender:     c.Gender,
		Modalities: emptyIfNil(c.Modalities),
		Regions:    emptyIfNil(c.Regions),
		WordCount:  c.WordCount,
		Thumbnail:  c.Thumbnail,
		URL:        c.URL,
	}
}

func detailFromCase(c *core.Case) CaseDetail {
	return CaseDetail{
		ID:                    c.ID,
		URL:                   c.URL,
		PatientAge:            agePtr(c.PatientAge),
		Gender:                c.Gender,
		Modalities:            emptyIfNil(c.Modalities),
		Regions:               emptyIfNil(c.Regions),
		Diagnosis:             c.Diagnosis,
		Title:                 c.Title,
		History:               c.History,
		Exam:                  c.Exam,
		Findings:              c.Findings,
		Treatment:             c.Treatment,
		Discussion:            c.Discussion,
		DifferentialDiagnosis: c.DifferentialDiagnosis,
		WordCount:             c.WordCount,
		ImageCount:            c.ImageCount,
		ImagePaths:            emptyIfNil(c.ImagePaths),
		CaseFolder:            c.CaseFolder,
		Thumbnail:             c.Thumbnail,
	}
}

// agePtr hides the -1 unknown-age sentinel from the wire format.
func agePtr(age int) *int {
	if age < 0 {
		return nil
	}
	return &age
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
