// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
)

const defaultMaxBodyBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze runs both analyzers; a nil range uses DefaultThresholds.
	Analyze(ctx context.Context, text string, r *model.ThresholdRange) (model.Report, error)

	Score(ctx context.Context, text string) (model.DocumentSentiment, error)
	ClassifyTokens(ctx context.Context, text string) (model.TokenBuckets, error)
	Classify(doc model.DocumentSentiment, r model.ThresholdRange) model.Label
	DefaultThresholds() model.ThresholdRange
}

// Extractor turns an uploaded document into text.
type Extractor interface {
	Extract(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	MaxBytes() int64
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	analyzeHandler    *AnalyzeHandler
	scoreHandler      *ScoreHandler
	thresholdsHandler *ThresholdsHandler
}

// ServerOption configures the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, extractor Extractor, opts ...ServerOption) *Server {
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		analyzeHandler:    NewAnalyzeHandler(deps, extractor, cfg.maxBodyBytes, cfg.logger),
		scoreHandler:      NewScoreHandler(deps, cfg.maxBodyBytes, cfg.logger),
		thresholdsHandler: NewThresholdsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/analyze/upload", MetricsMiddleware(s.analyzeHandler.HandleUpload, "analyze_upload"))
	mux.HandleFunc("/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/tokens", MetricsMiddleware(s.scoreHandler.HandleTokens, "tokens"))
	mux.HandleFunc("/thresholds", MetricsMiddleware(s.thresholdsHandler.HandleThresholds, "thresholds"))
}

// textRequest is the body of POST /score and POST /tokens.
type textRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes it. Server-side failures are
// logged; client mistakes are not.
func writeError(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := statusFor(err)
	setErrorCode(w, code)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("code", code), logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decodeJSON reads a single JSON value from a size-capped body.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, limit int64, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WrapKind(op, ErrTooLarge, fmt.Errorf("limit %d bytes", tooLarge.Limit))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, errors.New("trailing data after JSON body"))
	}
	return nil
}
