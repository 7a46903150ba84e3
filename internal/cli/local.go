package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/okian/sentiscope/internal/adapters/extract"
	service "github.com/okian/sentiscope/internal/app"
	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
)

// Backend runs analyses either in-process or against a server.
type Backend interface {
	Analyze(ctx context.Context, text string, o *model.ThresholdOverride) (model.Report, error)
	AnalyzeFile(ctx context.Context, name string, data []byte, o *model.ThresholdOverride) (model.Report, error)
	Score(ctx context.Context, text string) (ScoreResult, error)
	ClassifyTokens(ctx context.Context, text string) (model.TokenBuckets, error)
	Close()
}

// LocalBackend runs the analysis service in-process.
type LocalBackend struct {
	svc       *service.Service
	extractor *extract.Extractor
}

// NewLocalBackend starts a service sized for cfg.
func NewLocalBackend(ctx context.Context, cfg *Config, l logger.Logger) (*LocalBackend, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	svc := service.New(
		service.WithLogger(l),
		service.WithWorkerCount(workers),
		service.WithQueueSize(workers*2),
		service.WithAnalysisTimeout(cfg.Timeout),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return &LocalBackend{
		svc:       svc,
		extractor: extract.New(extract.WithLogger(l)),
	}, nil
}

// Analyze runs both analyzers on text. Bounds missing from o keep the
// service defaults.
func (b *LocalBackend) Analyze(ctx context.Context, text string, o *model.ThresholdOverride) (model.Report, error) {
	return b.svc.Analyze(ctx, text, o.Merge(b.svc.DefaultThresholds()))
}

// AnalyzeFile extracts the document text and analyzes it.
func (b *LocalBackend) AnalyzeFile(ctx context.Context, name string, data []byte, o *model.ThresholdOverride) (model.Report, error) {
	text, err := b.extractor.Extract(ctx, name, "", bytes.NewReader(data))
	if err != nil {
		return model.Report{}, err
	}
	return b.Analyze(ctx, text, o)
}

// Score scores text and labels it with the default thresholds.
func (b *LocalBackend) Score(ctx context.Context, text string) (ScoreResult, error) {
	doc, err := b.svc.Score(ctx, text)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{
		Polarity:     doc.Polarity,
		Subjectivity: doc.Subjectivity,
		Label:        b.svc.Classify(doc, b.svc.DefaultThresholds()),
		Metrics:      doc.Metrics(),
	}, nil
}

// ClassifyTokens buckets the tokens of text.
func (b *LocalBackend) ClassifyTokens(ctx context.Context, text string) (model.TokenBuckets, error) {
	return b.svc.ClassifyTokens(ctx, text)
}

// Close stops the service.
func (b *LocalBackend) Close() {
	b.svc.Stop()
}
