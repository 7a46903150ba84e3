// Package service wires the analyzers, the job queue and the worker pool into
// the operations the HTTP API and the CLI call.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sentiscope/internal/adapters/lexicon"
	jobqueue "github.com/okian/sentiscope/internal/adapters/mq/queue"
	workerpool "github.com/okian/sentiscope/internal/adapters/mq/worker"
	"github.com/okian/sentiscope/internal/domain/analysis"
	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/internal/domain/scoring"
	"github.com/okian/sentiscope/internal/domain/tokens"
	"github.com/okian/sentiscope/pkg/logger"
	"github.com/okian/sentiscope/pkg/metrics"
)

const (
	defaultQueueSize       = 1024
	defaultAnalysisTimeout = 5 * time.Second
)

// Service implements the dependencies of the HTTP API and the CLI.
type Service struct {
	mu sync.RWMutex

	// Core components
	docModel   scoring.DocumentSentimentModel
	tokenModel tokens.TokenIntensityModel
	analyzer   *analysis.Analyzer
	queue      jobqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	thresholds      model.ThresholdRange
	analysisTimeout time.Duration
	concurrent      bool

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending analysis jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultThresholds sets the range used when a caller passes none.
// Invalid ranges are ignored.
func WithDefaultThresholds(r model.ThresholdRange) Option {
	return func(s *Service) {
		if r.Validate() == nil {
			s.thresholds = r
		}
	}
}

// WithAnalysisTimeout bounds how long Analyze waits for a worker.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.analysisTimeout = d
		}
	}
}

// WithConcurrentAnalysis runs the document and token analyzers in parallel.
func WithConcurrentAnalysis(enabled bool) Option {
	return func(s *Service) {
		s.concurrent = enabled
	}
}

// WithModels replaces the VADER models.
func WithModels(doc scoring.DocumentSentimentModel, tok tokens.TokenIntensityModel) Option {
	return func(s *Service) {
		if doc != nil {
			s.docModel = doc
		}
		if tok != nil {
			s.tokenModel = tok
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       defaultQueueSize,
		thresholds:      model.DefaultThresholds(),
		analysisTimeout: defaultAnalysisTimeout,
		concurrent:      true,
		logger:          nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the analyzer and starts the worker pool. Workers outlive ctx
// and stop with Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting sentiment service...")

	if s.docModel == nil || s.tokenModel == nil {
		vader := lexicon.NewVader()
		if s.docModel == nil {
			s.docModel = vader
		}
		if s.tokenModel == nil {
			s.tokenModel = vader
		}
		s.logger.Info(ctx, "using VADER lexicon models")
	}

	s.analyzer = analysis.New(s.docModel, s.tokenModel, analysis.WithConcurrency(s.concurrent))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.analyzer,
		workerpool.WithPoolLogger(s.logger))
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "sentiment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("thresholdLow", s.thresholds.Low),
		logger.Float64("thresholdHigh", s.thresholds.High),
		logger.Duration("analysisTimeout", s.analysisTimeout),
		logger.Bool("concurrent", s.concurrent),
	)

	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping sentiment service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "sentiment service stopped")
}

// DefaultThresholds returns the range used when Analyze gets none.
func (s *Service) DefaultThresholds() model.ThresholdRange {
	return s.thresholds
}

// Analyze queues text for a full analysis and waits for the report. A nil
// range uses the service default. A full queue returns ErrBackpressure and a
// report not ready within the analysis timeout returns ErrTimeout.
func (s *Service) Analyze(ctx context.Context, text string, r *model.ThresholdRange) (model.Report, error) {
	if strings.TrimSpace(text) == "" {
		return model.Report{}, model.ErrEmptyInput
	}

	thresholds := s.thresholds
	if r != nil {
		if err := r.Validate(); err != nil {
			return model.Report{}, err
		}
		thresholds = *r
	}

	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return model.Report{}, ErrNotStarted
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()
	deadline, _ := waitCtx.Deadline()

	job := jobqueue.NewJob(uuid.New().String(), text, thresholds, deadline)
	if err := q.Enqueue(waitCtx, job); err != nil {
		switch {
		case errors.Is(err, jobqueue.ErrFull):
			return model.Report{}, ErrBackpressure
		case errors.Is(err, jobqueue.ErrClosed):
			return model.Report{}, ErrNotStarted
		default:
			return model.Report{}, err
		}
	}

	s.logger.Debug(ctx, "analysis job queued",
		logger.String("jobID", job.ID),
		logger.Int("textLength", len(text)),
	)

	select {
	case res := <-job.Reply:
		if res.Err != nil {
			if errors.Is(res.Err, context.DeadlineExceeded) {
				return model.Report{}, fmt.Errorf("%w: %v", ErrTimeout, res.Err)
			}
			return model.Report{}, res.Err
		}
		return res.Report, nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return model.Report{}, ctx.Err()
		}
		metrics.RecordAnalysisError("analyze", "timeout")
		return model.Report{}, fmt.Errorf("%w after %s", ErrTimeout, s.analysisTimeout)
	}
}

// Score runs only the document scorer.
func (s *Service) Score(ctx context.Context, text string) (model.DocumentSentiment, error) {
	a, err := s.currentAnalyzer()
	if err != nil {
		return model.DocumentSentiment{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.DocumentSentiment{}, err
	}

	start := time.Now()
	doc, err := a.Scorer().Score(text)
	if err != nil {
		metrics.RecordAnalysisError("score", kindOf(err))
		return model.DocumentSentiment{}, err
	}
	metrics.RecordAnalysis("score", string(scoring.Classify(doc, s.thresholds)), float64(time.Since(start).Milliseconds()))
	metrics.ObserveDocument(doc.Polarity, doc.Subjectivity)
	return doc, nil
}

// ClassifyTokens runs only the token classifier. Blank text returns
// model.ErrEmptyInput like Score and Analyze.
func (s *Service) ClassifyTokens(ctx context.Context, text string) (model.TokenBuckets, error) {
	if strings.TrimSpace(text) == "" {
		metrics.RecordAnalysisError("tokens", kindOf(model.ErrEmptyInput))
		return model.TokenBuckets{}, model.ErrEmptyInput
	}

	a, err := s.currentAnalyzer()
	if err != nil {
		return model.TokenBuckets{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.TokenBuckets{}, err
	}

	start := time.Now()
	buckets, err := a.Classifier().ClassifyTokens(text)
	if err != nil {
		metrics.RecordAnalysisError("tokens", kindOf(err))
		return model.TokenBuckets{}, err
	}
	metrics.RecordAnalysis("tokens", "", float64(time.Since(start).Milliseconds()))
	metrics.RecordTokens(len(buckets.Positives), len(buckets.Negatives), len(buckets.Neutral))
	return buckets, nil
}

// Classify labels a document score against r.
func (s *Service) Classify(doc model.DocumentSentiment, r model.ThresholdRange) model.Label {
	return scoring.Classify(doc, r)
}

func (s *Service) currentAnalyzer() (*analysis.Analyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.analyzer, nil
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, model.ErrAnalysis):
		return "analysis_error"
	default:
		return "other"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"thresholds":         s.thresholds,
		"analysisTimeoutMs":  s.analysisTimeout.Milliseconds(),
		"concurrentAnalysis": s.concurrent,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["processed"] = s.workerPool.Processed()
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}
