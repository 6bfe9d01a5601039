package models

// AnalysisRequest represents a request for image analysis
// Moved from transport package for shared usage
type AnalysisRequest struct {
	Source             string   `json:"source" binding:"required"`
	PaletteSize        *int     `json:"palette_size,omitempty"`
	ContrastThreshold  *float64 `json:"contrast_threshold,omitempty"`
	DeficiencySeverity *float64 `json:"deficiency_severity,omitempty"`
	Model              string   `json:"model,omitempty"`
	Seed               uint64   `json:"seed,omitempty"`
	Mode               string   `json:"mode,omitempty"`
	IncludeImages      bool     `json:"include_images,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AnalysisResponse is the HTTP view of an AnalysisResult. Simulations holds
// base64 PNGs keyed by deficiency name when images were requested.
type AnalysisResponse struct {
	*AnalysisResult
	Simulations map[string]string `json:"simulations,omitempty"`
}
