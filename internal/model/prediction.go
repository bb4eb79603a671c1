package model

// PredictionRequest represents a prediction request
type PredictionRequest struct {
	Symptoms string  `json:"symptoms" binding:"required"`
	TopN     *int    `json:"top_n,omitempty"`
	UserID   *string `json:"user_id,omitempty"`
}

// DiseasePrediction is one ranked disease in a prediction response
type DiseasePrediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Info       string  `json:"info"`
}

// DiseaseInfoResponse represents the disease-info response
type DiseaseInfoResponse struct {
	Disease     string `json:"disease"`
	Description string `json:"description"`
}

// SymptomResponse is one logged symptom as returned to clients
type SymptomResponse struct {
	Name     string   `json:"name"`
	Date     string   `json:"date"` // RFC 3339
	Concepts []string `json:"concepts,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	MongoDB      string `json:"mongodb"`
	StoreBackend string `json:"store_backend"`
}

// VersionResponse carries build metadata
type VersionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}
