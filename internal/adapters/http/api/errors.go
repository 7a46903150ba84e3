package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sentiscope/internal/adapters/extract"
	service "github.com/okian/sentiscope/internal/app"
	"github.com/okian/sentiscope/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrTooLarge     = errors.New("request body too large")
	ErrBackpressure = service.ErrBackpressure
)

// KindError tags an error with the operation that saw it and a sentinel
// kind that decides the HTTP status.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns a KindError without an underlying cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns a KindError wrapping err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, model.ErrInvalidThresholds):
		return http.StatusBadRequest, "invalid_thresholds"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrTooLarge), errors.Is(err, extract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, extract.ErrDecode):
		return http.StatusUnprocessableEntity, "decode_error"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, model.ErrAnalysis):
		return http.StatusInternalServerError, "analysis_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
