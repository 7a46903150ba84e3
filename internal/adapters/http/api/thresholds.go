package api

import (
	"net/http"

	"github.com/okian/sentiscope/internal/domain/model"
)

// ThresholdsDependencies exposes the default labelling range.
type ThresholdsDependencies interface {
	DefaultThresholds() model.ThresholdRange
}

// ThresholdsHandler handles threshold requests.
type ThresholdsHandler struct {
	deps ThresholdsDependencies
}

// NewThresholdsHandler creates a new thresholds handler.
func NewThresholdsHandler(deps ThresholdsDependencies) *ThresholdsHandler {
	return &ThresholdsHandler{deps: deps}
}

// HandleThresholds handles GET /thresholds requests.
func (h *ThresholdsHandler) HandleThresholds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.DefaultThresholds())
}
