// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Score bounds shared by polarity, subjectivity and compound scores.
const (
	MinPolarity     = -1.0
	MaxPolarity     = 1.0
	MinSubjectivity = 0.0
	MaxSubjectivity = 1.0

	DefaultThresholdLow  = -0.05
	DefaultThresholdHigh = 0.05
)

// DocumentSentiment is the document-level score of a whole text.
type DocumentSentiment struct {
	Polarity     float64 `json:"polarity"`     // [-1, 1], negative to positive
	Subjectivity float64 `json:"subjectivity"` // [0, 1], objective to subjective
}

// Valid reports whether both scores are finite and inside their ranges.
func (d DocumentSentiment) Valid() bool {
	return inRange(d.Polarity, MinPolarity, MaxPolarity) &&
		inRange(d.Subjectivity, MinSubjectivity, MaxSubjectivity)
}

// Metric is one named value of a document score, in the row shape used by
// tabular and chart renderers.
type Metric struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Metrics flattens the score into rows.
func (d DocumentSentiment) Metrics() []Metric {
	return []Metric{
		{Metric: "polarity", Value: d.Polarity},
		{Metric: "subjectivity", Value: d.Subjectivity},
	}
}

// Label is the categorical sentiment of a document.
type Label string

// Sentiment labels.
const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// ThresholdRange bounds the neutral band used to label a document. Both
// bounds are exclusive for the positive and negative labels.
type ThresholdRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultThresholds returns the (-0.05, 0.05) range.
func DefaultThresholds() ThresholdRange {
	return ThresholdRange{Low: DefaultThresholdLow, High: DefaultThresholdHigh}
}

// Validate checks low <= high and that both bounds lie in [-1, 1].
func (r ThresholdRange) Validate() error {
	if !inRange(r.Low, MinPolarity, MaxPolarity) {
		return fmt.Errorf("%w: low %v outside [-1, 1]", ErrInvalidThresholds, r.Low)
	}
	if !inRange(r.High, MinPolarity, MaxPolarity) {
		return fmt.Errorf("%w: high %v outside [-1, 1]", ErrInvalidThresholds, r.High)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: low %v greater than high %v", ErrInvalidThresholds, r.Low, r.High)
	}
	return nil
}

// ThresholdOverride holds caller-supplied bounds. A nil bound keeps the
// default it is merged over.
type ThresholdOverride struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

// Merge returns o applied over defaults, or nil when o sets no bound. The
// result is not validated.
func (o *ThresholdOverride) Merge(defaults ThresholdRange) *ThresholdRange {
	if o == nil || (o.Low == nil && o.High == nil) {
		return nil
	}
	out := defaults
	if o.Low != nil {
		out.Low = *o.Low
	}
	if o.High != nil {
		out.High = *o.High
	}
	return &out
}

// TokenScore pairs a token with its compound intensity score.
type TokenScore struct {
	Token    string
	Compound float64
}

// MarshalJSON encodes the pair as a two element array: ["good", 0.4404].
func (t TokenScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{t.Token, t.Compound})
}

// UnmarshalJSON decodes the two element array form.
func (t *TokenScore) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("token score: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("token score: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &t.Token); err != nil {
		return fmt.Errorf("token score token: %w", err)
	}
	if err := json.Unmarshal(pair[1], &t.Compound); err != nil {
		return fmt.Errorf("token score compound: %w", err)
	}
	return nil
}

// TokenBuckets partitions the tokens of a text by sentiment. Each bucket keeps
// the left-to-right order of its tokens.
type TokenBuckets struct {
	Positives []TokenScore `json:"positives"`
	Negatives []TokenScore `json:"negatives"`
	Neutral   []string     `json:"neutral"`
}

// NewTokenBuckets returns buckets with non-nil, empty slices so they encode
// as [] rather than null.
func NewTokenBuckets() TokenBuckets {
	return TokenBuckets{
		Positives: []TokenScore{},
		Negatives: []TokenScore{},
		Neutral:   []string{},
	}
}

// Len is the total number of tokens across the three buckets.
func (b TokenBuckets) Len() int {
	return len(b.Positives) + len(b.Negatives) + len(b.Neutral)
}

// Report is the full result of one analysis.
type Report struct {
	ID         string            `json:"id"`
	TextLength int               `json:"text_length"`
	TokenCount int               `json:"token_count"`
	Document   DocumentSentiment `json:"document"`
	Label      Label             `json:"label"`
	Thresholds ThresholdRange    `json:"thresholds"`
	Metrics    []Metric          `json:"metrics"`
	Tokens     TokenBuckets      `json:"tokens"`
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
