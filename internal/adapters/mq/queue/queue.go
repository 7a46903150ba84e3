// Package queue holds analysis jobs between the request handlers and the
// worker pool.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Result is what a worker sends back for a job.
type Result struct {
	Report model.Report
	Err    error
}

// Job is one analysis request. Reply must have room for one Result so a
// worker never blocks on a caller that already gave up.
type Job struct {
	ID         string
	Text       string
	Thresholds model.ThresholdRange
	Deadline   time.Time
	Reply      chan Result
}

// NewJob builds a job with a buffered reply channel.
func NewJob(id, text string, r model.ThresholdRange, deadline time.Time) Job {
	return Job{
		ID:         id,
		Text:       text,
		Thresholds: r,
		Deadline:   deadline,
		Reply:      make(chan Result, 1),
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job or returns ErrFull or ErrClosed.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns the channel jobs are delivered on. It is closed when
	// the queue is closed and drained.
	Dequeue() <-chan Job

	// Len returns the current number of pending jobs.
	Len() int

	// Cap returns the maximum number of pending jobs.
	Cap() int

	// Close stops accepting jobs.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)

	return q
}

// Enqueue adds a job without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return fmt.Errorf("enqueue %s: %w", j.ID, err)
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs), q.capacity)
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue returns the job channel. Every consumer shares the same channel.
func (q *InMemoryQueue) Dequeue() <-chan Job {
	return q.jobs
}

// Len returns the current number of pending jobs.
func (q *InMemoryQueue) Len() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close stops accepting jobs. Pending jobs stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
