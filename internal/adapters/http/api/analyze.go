package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
)

// multipartOverhead leaves room for boundaries and form fields on top of the
// document size cap.
const multipartOverhead = 64 << 10

// analyzeRequest mirrors the OpenAPI schema for POST /analyze.
type analyzeRequest struct {
	Text       string                   `json:"text"`
	Thresholds *model.ThresholdOverride `json:"thresholds,omitempty"`
}

// AnalyzeHandler handles full analysis requests.
type AnalyzeHandler struct {
	deps         Dependencies
	extractor    Extractor
	maxBodyBytes int64
	logger       logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies, extractor Extractor, maxBodyBytes int64, l logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, extractor: extractor, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req analyzeRequest
	if err := decodeJSON(w, r, op, h.maxBodyBytes, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	report, err := h.deps.Analyze(r.Context(), req.Text, req.Thresholds.Merge(h.deps.DefaultThresholds()))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleUpload handles POST /analyze/upload requests: a multipart form with
// a "file" part and optional "low" and "high" fields.
func (h *AnalyzeHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_upload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.extractor == nil {
		writeError(r.Context(), w, h.logger, NewKind(op, errors.New("uploads are not configured")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.extractor.MaxBytes()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(r.Context(), w, h.logger, WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	defer file.Close()

	thresholds, err := formThresholds(r, h.deps.DefaultThresholds())
	if err != nil {
		writeError(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	text, err := h.extractor.Extract(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}

	report, err := h.deps.Analyze(r.Context(), text, thresholds)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// formThresholds reads optional low/high form fields. A missing bound keeps
// its default and nil means neither was given.
func formThresholds(r *http.Request, defaults model.ThresholdRange) (*model.ThresholdRange, error) {
	low, high := strings.TrimSpace(r.FormValue("low")), strings.TrimSpace(r.FormValue("high"))
	if low == "" && high == "" {
		return nil, nil
	}

	var o model.ThresholdOverride
	if low != "" {
		v, err := strconv.ParseFloat(low, 64)
		if err != nil {
			return nil, fmt.Errorf("low: %w", err)
		}
		o.Low = &v
	}
	if high != "" {
		v, err := strconv.ParseFloat(high, 64)
		if err != nil {
			return nil, fmt.Errorf("high: %w", err)
		}
		o.High = &v
	}
	return o.Merge(defaults), nil
}
