package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/sentiscope/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics. Error
// responses are counted under the API error code written by writeError, or a
// status based category when the handler wrote none.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			errorType := wrapped.errorCode
			if errorType == "" {
				errorType = getErrorType(wrapped.statusCode)
			}
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
		}
	}
}

// getErrorType categorizes responses that carry no API error code, such as
// http.NotFound on a wrong method.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// responseWriter captures the status code and API error code of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	errorCode  string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// setErrorCode tags w with code when w is a metrics-wrapped writer.
func setErrorCode(w http.ResponseWriter, code string) {
	if rw, ok := w.(*responseWriter); ok {
		rw.errorCode = code
	}
}
