// Package tokens splits text on whitespace and buckets every token by its
// own sentiment intensity.
package tokens

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/sentiscope/internal/domain/model"
)

// Fixed bucketing cutoffs. They are independent of the document-level
// ThresholdRange and are not configurable.
const (
	PositiveCutoff = 0.1  // compound > PositiveCutoff is positive
	NegativeCutoff = -0.1 // compound <= NegativeCutoff is negative

	opClassify = "tokens.classify"
)

// TokenIntensityModel scores a single token with a compound value in
// [-1, 1]. Unknown tokens must score 0, not fail.
type TokenIntensityModel interface {
	ScoreToken(token string) (float64, error)
}

// Bucket names a TokenBuckets partition.
type Bucket int

// Buckets.
const (
	Neutral Bucket = iota
	Positive
	Negative
)

func (b Bucket) String() string {
	switch b {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// BucketFor maps a compound score to its bucket.
func BucketFor(compound float64) Bucket {
	switch {
	case compound > PositiveCutoff:
		return Positive
	case compound <= NegativeCutoff:
		return Negative
	default:
		return Neutral
	}
}

// Tokenize splits text on runs of Unicode whitespace. Leading and trailing
// whitespace produce no empty tokens; punctuation and case are kept.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Classifier buckets tokens through a TokenIntensityModel. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	model TokenIntensityModel
}

// NewClassifier returns a classifier backed by m.
func NewClassifier(m TokenIntensityModel) *Classifier {
	return &Classifier{model: m}
}

// ClassifyTokens scores every whitespace-delimited token of text and places
// it in exactly one bucket, keeping document order inside each bucket. Text
// without tokens yields empty buckets. A model failure on any token aborts
// the call with a *model.AnalysisError and no partial buckets.
func (c *Classifier) ClassifyTokens(text string) (buckets model.TokenBuckets, err error) {
	defer func() {
		if r := recover(); r != nil {
			buckets = model.TokenBuckets{}
			err = model.NewAnalysisError(opClassify, fmt.Errorf("model panic: %v", r))
		}
	}()

	buckets = model.NewTokenBuckets()
	for _, tok := range Tokenize(text) {
		compound, err := c.model.ScoreToken(tok)
		if err != nil {
			return model.TokenBuckets{}, model.NewAnalysisError(opClassify, fmt.Errorf("token %q: %w", tok, err))
		}
		if math.IsNaN(compound) || compound < model.MinPolarity || compound > model.MaxPolarity {
			return model.TokenBuckets{}, model.NewAnalysisError(opClassify,
				fmt.Errorf("token %q: compound %v out of range", tok, compound))
		}

		switch BucketFor(compound) {
		case Positive:
			buckets.Positives = append(buckets.Positives, model.TokenScore{Token: tok, Compound: compound})
		case Negative:
			buckets.Negatives = append(buckets.Negatives, model.TokenScore{Token: tok, Compound: compound})
		default:
			buckets.Neutral = append(buckets.Neutral, tok)
		}
	}
	return buckets, nil
}
