// Package analysis runs the document scorer and the token classifier over the
// same text and shapes their results into a report.
package analysis

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/internal/domain/scoring"
	"github.com/okian/sentiscope/internal/domain/tokens"
)

// Analyzer composes a DocumentScorer and a token Classifier.
type Analyzer struct {
	scorer     *scoring.DocumentScorer
	classifier *tokens.Classifier
	concurrent bool
	newID      func() string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency runs the two analyzers in parallel when enabled.
func WithConcurrency(enabled bool) Option {
	return func(a *Analyzer) {
		a.concurrent = enabled
	}
}

// WithIDGenerator replaces the report ID source.
func WithIDGenerator(fn func() string) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// New builds an Analyzer from the two model contracts.
func New(doc scoring.DocumentSentimentModel, tok tokens.TokenIntensityModel, opts ...Option) *Analyzer {
	a := &Analyzer{
		scorer:     scoring.NewDocumentScorer(doc),
		classifier: tokens.NewClassifier(tok),
		concurrent: true,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scorer exposes the document scorer.
func (a *Analyzer) Scorer() *scoring.DocumentScorer { return a.scorer }

// Classifier exposes the token classifier.
func (a *Analyzer) Classifier() *tokens.Classifier { return a.classifier }

// Analyze scores and buckets text, then labels the document against r. If
// either analyzer fails no report is returned.
func (a *Analyzer) Analyze(ctx context.Context, text string, r model.ThresholdRange) (model.Report, error) {
	if err := r.Validate(); err != nil {
		return model.Report{}, err
	}

	var (
		doc     model.DocumentSentiment
		buckets model.TokenBuckets
	)

	if a.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			doc, err = a.scorer.Score(text)
			return err
		})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			buckets, err = a.classifier.ClassifyTokens(text)
			return err
		})
		if err := g.Wait(); err != nil {
			return model.Report{}, err
		}
	} else {
		var err error
		if doc, err = a.scorer.Score(text); err != nil {
			return model.Report{}, err
		}
		if err = ctx.Err(); err != nil {
			return model.Report{}, err
		}
		if buckets, err = a.classifier.ClassifyTokens(text); err != nil {
			return model.Report{}, err
		}
	}

	return model.Report{
		ID:         a.newID(),
		TextLength: utf8.RuneCountInString(text),
		TokenCount: buckets.Len(),
		Document:   doc,
		Label:      scoring.Classify(doc, r),
		Thresholds: r,
		Metrics:    doc.Metrics(),
		Tokens:     buckets,
	}, nil
}
