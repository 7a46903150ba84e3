package api

import (
	"net/http"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
)

type scoreResponse struct {
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Label        model.Label    `json:"label"`
	Metrics      []model.Metric `json:"metrics"`
}

// ScoreHandler serves the single-analyzer endpoints.
type ScoreHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, maxBodyBytes int64, l logger.Logger) *ScoreHandler {
	return &ScoreHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleScore handles POST /score requests. The label uses the default
// thresholds.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req textRequest
	if err := decodeJSON(w, r, op, h.maxBodyBytes, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	doc, err := h.deps.Score(r.Context(), req.Text)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{
		Polarity:     doc.Polarity,
		Subjectivity: doc.Subjectivity,
		Label:        h.deps.Classify(doc, h.deps.DefaultThresholds()),
		Metrics:      doc.Metrics(),
	})
}

// HandleTokens handles POST /tokens requests.
func (h *ScoreHandler) HandleTokens(w http.ResponseWriter, r *http.Request) {
	const op = "api.tokens"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req textRequest
	if err := decodeJSON(w, r, op, h.maxBodyBytes, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	buckets, err := h.deps.ClassifyTokens(r.Context(), req.Text)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
