// Package lexicon adapts the VADER lexicon and rule-based analyzer to the
// document and token sentiment model contracts.
package lexicon

import (
	"errors"
	"math"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"github.com/okian/sentiscope/internal/domain/model"
)

// ErrInvalidUTF8 is returned for text that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// Vader scores text with the VADER sentiment intensity analyzer. The
// analyzer only reads its lexicon after construction, so one Vader may be
// shared between goroutines.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader loads the lexicon and returns a ready model.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// ScoreDocument maps the VADER scores of a whole text onto a document
// sentiment: polarity is the compound score, subjectivity is the share of
// the text carrying positive or negative sentiment.
func (v *Vader) ScoreDocument(text string) (model.DocumentSentiment, error) {
	if !utf8.ValidString(text) {
		return model.DocumentSentiment{}, ErrInvalidUTF8
	}
	s := v.analyzer.PolarityScores(text)
	return model.DocumentSentiment{
		Polarity:     clamp(s.Compound, model.MinPolarity, model.MaxPolarity),
		Subjectivity: clamp(s.Positive+s.Negative, model.MinSubjectivity, model.MaxSubjectivity),
	}, nil
}

// ScoreToken returns the compound score of a single token. Tokens outside
// the lexicon score 0.
func (v *Vader) ScoreToken(token string) (float64, error) {
	if !utf8.ValidString(token) {
		return 0, ErrInvalidUTF8
	}
	return clamp(v.analyzer.PolarityScores(token).Compound, model.MinPolarity, model.MaxPolarity), nil
}

// clamp absorbs floating point drift at the range edges; NaN passes through
// so the domain layer can reject it.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}
