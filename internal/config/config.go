// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment over those defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/sentiscope/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text, json or tint.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxUploadBytes caps request bodies and uploaded documents.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ThresholdLow and ThresholdHigh form the default neutral band.
	ThresholdLow  float64 `koanf:"threshold_low"`
	ThresholdHigh float64 `koanf:"threshold_high"`

	// AnalysisTimeoutMS bounds how long a caller waits for one analysis.
	AnalysisTimeoutMS int `koanf:"analysis_timeout_ms"`

	// ConcurrentAnalysis runs the document and token analyzers in parallel.
	ConcurrentAnalysis bool `koanf:"concurrent_analysis"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU() * 2,
		MaxUploadBytes:     10 << 20,
		ThresholdLow:       model.DefaultThresholdLow,
		ThresholdHigh:      model.DefaultThresholdHigh,
		AnalysisTimeoutMS:  5000,
		ConcurrentAnalysis: true,
	}
}

// Thresholds returns the default ThresholdRange.
func (c *Config) Thresholds() model.ThresholdRange {
	return model.ThresholdRange{Low: c.ThresholdLow, High: c.ThresholdHigh}
}

// AnalysisTimeout returns AnalysisTimeoutMS as a duration.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxUploadBytes < 1:
		return fmt.Errorf("%w: max_upload_bytes must be positive, got %d", ErrInvalidConfig, c.MaxUploadBytes)
	case c.AnalysisTimeoutMS < 1:
		return fmt.Errorf("%w: analysis_timeout_ms must be positive, got %d", ErrInvalidConfig, c.AnalysisTimeoutMS)
	}
	switch c.LogFormat {
	case "text", "json", "tint":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
