package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/sentiscope/internal/domain/model"
)

// RemoteError is an error response from the service.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote: %s (%d): %s", e.Code, e.Status, e.Message)
}

// HTTPClient talks to a running sentiscope server.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for baseURL with a request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Analyze posts text to /analyze. Only the bounds set in o are sent, so the
// server fills the rest from its own defaults.
func (c *HTTPClient) Analyze(ctx context.Context, text string, o *model.ThresholdOverride) (model.Report, error) {
	body := struct {
		Text       string                   `json:"text"`
		Thresholds *model.ThresholdOverride `json:"thresholds,omitempty"`
	}{Text: text, Thresholds: o}

	var report model.Report
	if err := c.postJSON(ctx, "/analyze", body, &report); err != nil {
		return model.Report{}, err
	}
	return report, nil
}

// AnalyzeFile uploads a document to /analyze/upload.
func (c *HTTPClient) AnalyzeFile(ctx context.Context, name string, data []byte, o *model.ThresholdOverride) (model.Report, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return model.Report{}, fmt.Errorf("failed to write form file: %w", err)
	}
	if o != nil && o.Low != nil {
		_ = mw.WriteField("low", strconv.FormatFloat(*o.Low, 'f', -1, 64))
	}
	if o != nil && o.High != nil {
		_ = mw.WriteField("high", strconv.FormatFloat(*o.High, 'f', -1, 64))
	}
	if err := mw.Close(); err != nil {
		return model.Report{}, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze/upload", &buf)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var report model.Report
	if err := c.do(req, &report); err != nil {
		return model.Report{}, err
	}
	return report, nil
}

// Score posts text to /score.
func (c *HTTPClient) Score(ctx context.Context, text string) (ScoreResult, error) {
	var out ScoreResult
	if err := c.postJSON(ctx, "/score", map[string]string{"text": text}, &out); err != nil {
		return ScoreResult{}, err
	}
	return out, nil
}

// ClassifyTokens posts text to /tokens.
func (c *HTTPClient) ClassifyTokens(ctx context.Context, text string) (model.TokenBuckets, error) {
	var out model.TokenBuckets
	if err := c.postJSON(ctx, "/tokens", map[string]string{"text": text}, &out); err != nil {
		return model.TokenBuckets{}, err
	}
	return out, nil
}

// Close is a no-op; the client holds no resources.
func (c *HTTPClient) Close() {}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, dst any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dst)
}

func (c *HTTPClient) do(req *http.Request, dst any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		remote := &RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil && body.Code != "" {
			remote.Code, remote.Message = body.Code, body.Message
		}
		return remote
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
