package projection

// Point is one case's position in a 2D projection, annotated for display.
type Point struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Diagnosis  string  `json:"diagnosis"`
	Modality   string  `json:"modality,omitempty"`
	Region     string  `json:"region,omitempty"`
	ImageCount int     `json:"imageCount"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
}

// CoordinateSet is a full projection for one method.
type CoordinateSet struct {
	Method      string  `json:"method"`
	TotalCases  int     `json:"total_cases"`
	Coordinates []Point `json:"coordinates"`
}

// ClinicalPoint extends a projection point with clinical annotations
// produced by the offline clustering pipeline.
type ClinicalPoint struct {
	ID                  string   `json:"id"`
	X                   float64  `json:"x"`
	Y                   float64  `json:"y"`
	Diagnosis           string   `json:"diagnosis"`
	DiagnosisCategory   string   `json:"diagnosisCategory"`
	Symptoms            []string `json:"symptoms"`
	TreatmentCategory   string   `json:"treatmentCategory"`
	Cluster             int      `json:"cluster"`
	ClinicalExplanation []string `json:"clinicalExplanation"`
	ImageCount          int      `json:"imageCount"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
}

// ClinicalSet is the clinically enhanced projection.
type ClinicalSet struct {
	Method      string          `json:"method"`
	TotalCases  int             `json:"total_cases"`
	Coordinates []ClinicalPoint `json:"coordinates"`
}

// MethodInfo describes one projection method and whether its artifact
// exists on disk.
type MethodInfo struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// SimilarEntry is one precomputed similar case with its clinical
// explanation.
type SimilarEntry struct {
	ID         string   `json:"id"`
	Diagnosis  string   `json:"diagnosis"`
	Category   string   `json:"category"`
	Symptoms   []string `json:"symptoms"`
	WhySimilar []string `json:"whySimilar"`
	Distance   float64  `json:"distance"`
}

// SimilarResult is the response for a precomputed similar-case lookup.
type SimilarResult struct {
	QueryCaseID  string         `json:"query_case_id"`
	SimilarCases []SimilarEntry `json:"similar_cases"`
}

// Statistics summarizes the clinical projection: category and treatment
// distributions, the ten most common symptoms, and cluster counts.
// Points with cluster -1 are outliers.
type Statistics struct {
	TotalCases          int            `json:"total_cases"`
	DiagnosisCategories map[string]int `json:"diagnosis_categories"`
	TreatmentTypes      map[string]int `json:"treatment_types"`
	TopSymptoms         map[string]int `json:"top_symptoms"`
	TotalClusters       int            `json:"total_clusters"`
	OutlierCases        int            `json:"outlier_cases"`
}
