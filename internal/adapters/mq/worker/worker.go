// Package worker runs queued analysis jobs and replies with their reports.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/sentiscope/internal/adapters/mq/queue"
	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
	"github.com/okian/sentiscope/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Analyzer produces a report for one text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, r model.ThresholdRange) (model.Report, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker processes jobs and replies on each job's channel.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	name     string

	shutdown chan struct{}
	done     chan struct{}

	processed atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, analyzer Analyzer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: analyzer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Processed returns how many jobs this worker has answered.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process answers a single job. The reply channel is buffered so the send
// never blocks.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	metrics.WorkerBusy(1)
	defer func() {
		metrics.WorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		w.processed.Add(1)
	}()

	jobCtx := ctx
	if !job.Deadline.IsZero() {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithDeadline(ctx, job.Deadline)
		defer cancel()
	}

	if err := jobCtx.Err(); err != nil {
		metrics.RecordWorkerError()
		w.logger.Debug(ctx, "job expired before processing", logger.String("jobID", job.ID))
		job.Reply <- queue.Result{Err: fmt.Errorf("job %s: %w", job.ID, err)}
		return
	}

	report, err := w.analyzer.Analyze(jobCtx, job.Text, job.Thresholds)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordAnalysisError("analyze", errorKind(err))
		w.logger.Error(ctx, "analysis failed for job",
			logger.String("jobID", job.ID),
			logger.Error(err),
		)
		job.Reply <- queue.Result{Err: err}
		return
	}

	report.ID = job.ID
	metrics.RecordAnalysis("analyze", string(report.Label), float64(time.Since(start).Milliseconds()))
	metrics.ObserveDocument(report.Document.Polarity, report.Document.Subjectivity)
	metrics.RecordTokens(len(report.Tokens.Positives), len(report.Tokens.Negatives), len(report.Tokens.Neutral))
	job.Reply <- queue.Result{Report: report}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, model.ErrInvalidThresholds):
		return "invalid_thresholds"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "analysis_error"
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	analyzer Analyzer
	logger   logger.Logger
}

// NewPool creates a new worker pool. A count below one picks a default from
// the number of CPUs.
func NewPool(workerCount int, q Queue, analyzer Analyzer, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		analyzer: analyzer,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(pool)
	}
	pool.logger = pool.logger.Named("worker-pool")

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			analyzer,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs answered by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}
