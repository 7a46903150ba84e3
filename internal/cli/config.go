package cli

import (
	"time"

	"github.com/okian/sentiscope/internal/domain/model"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputText = "text"
)

// Config holds the flags shared by every command.
type Config struct {
	BaseURL   string        // Remote service; empty runs the analyzers in-process
	Timeout   time.Duration // HTTP request or local analysis timeout
	Output    string        // json or text
	Workers   int           // Files analyzed in parallel
	LogLevel  string        // Diagnostic log level, written to stderr
	LogFormat string        // text, json or tint
}

// Input is one piece of text or one document to analyze.
type Input struct {
	Name string // File name, "-" for stdin, empty for --text
	Text string // Set when the caller already holds plain text
	Data []byte // Raw document bytes, decoded by the extractor
}

// ScoreResult is the document score labelled with the default thresholds.
type ScoreResult struct {
	Polarity     float64        `json:"polarity"`
	Subjectivity float64        `json:"subjectivity"`
	Label        model.Label    `json:"label"`
	Metrics      []model.Metric `json:"metrics"`
}

// FileReport pairs a report with the input that produced it.
type FileReport struct {
	Name   string        `json:"name,omitempty"`
	Report *model.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`

	err error
}
