package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"

	"go-cvd-inspector/pkg/models"
)

// NewResponse wraps result for serialization. With includeImages the three
// simulations are attached as base64 PNGs keyed by deficiency name.
func NewResponse(result *models.AnalysisResult, includeImages bool) (*models.AnalysisResponse, error) {
	resp := &models.AnalysisResponse{AnalysisResult: result}
	if !includeImages || len(result.Simulations) == 0 {
		return resp, nil
	}

	resp.Simulations = make(map[string]string, len(result.Simulations))
	for d, sim := range result.Simulations {
		var buf bytes.Buffer
		if err := png.Encode(&buf, sim.ToNRGBA()); err != nil {
			return nil, err
		}
		resp.Simulations[d.String()] = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	return resp, nil
}

// WriteJSON writes result as indented JSON
func WriteJSON(w io.Writer, result *models.AnalysisResult, includeImages bool) error {
	resp, err := NewResponse(result, includeImages)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
