// Package scoring computes document-level sentiment and labels it against a
// caller supplied threshold range.
package scoring

import (
	"fmt"
	"strings"

	"github.com/okian/sentiscope/internal/domain/model"
)

const opScore = "scoring.score"

// DocumentSentimentModel is any deterministic analyzer that scores a whole
// text with a polarity in [-1, 1] and a subjectivity in [0, 1].
type DocumentSentimentModel interface {
	ScoreDocument(text string) (model.DocumentSentiment, error)
}

// DocumentScorer scores whole documents through a DocumentSentimentModel.
// It holds no mutable state and is safe for concurrent use.
type DocumentScorer struct {
	model DocumentSentimentModel
}

// NewDocumentScorer returns a scorer backed by m.
func NewDocumentScorer(m DocumentSentimentModel) *DocumentScorer {
	return &DocumentScorer{model: m}
}

// Score computes the document sentiment of text. Empty or whitespace-only
// text returns model.ErrEmptyInput; any model failure, including an output
// outside the bounded ranges, returns a *model.AnalysisError.
func (s *DocumentScorer) Score(text string) (doc model.DocumentSentiment, err error) {
	if strings.TrimSpace(text) == "" {
		return model.DocumentSentiment{}, model.ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			doc = model.DocumentSentiment{}
			err = model.NewAnalysisError(opScore, fmt.Errorf("model panic: %v", r))
		}
	}()

	doc, err = s.model.ScoreDocument(text)
	if err != nil {
		return model.DocumentSentiment{}, model.NewAnalysisError(opScore, err)
	}
	if !doc.Valid() {
		return model.DocumentSentiment{}, model.NewAnalysisError(opScore,
			fmt.Errorf("score out of range: polarity=%v subjectivity=%v", doc.Polarity, doc.Subjectivity))
	}
	return doc, nil
}

// Classify labels a document sentiment. Comparisons are strict, so a
// polarity equal to either bound is neutral.
func Classify(doc model.DocumentSentiment, r model.ThresholdRange) model.Label {
	switch {
	case doc.Polarity > r.High:
		return model.LabelPositive
	case doc.Polarity < r.Low:
		return model.LabelNegative
	default:
		return model.LabelNeutral
	}
}
