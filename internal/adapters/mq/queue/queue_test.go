package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/sentiscope/internal/domain/model"
)

func newTestJob(id string) Job {
	return NewJob(id, "good bad table", model.DefaultThresholds(), time.Now().Add(time.Second))
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, newTestJob("job1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue()
	if job.ID != "job1" {
		t.Errorf("expected job1, got %v", job.ID)
	}
	if cap(job.Reply) != 1 {
		t.Errorf("expected reply buffer of 1, got %d", cap(job.Reply))
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
	for _, id := range []string{"job1", "job2"} {
		if err := q.Enqueue(ctx, newTestJob(id)); err != nil {
			t.Errorf("expected enqueue of %s to succeed, got %v", id, err)
		}
	}

	if err := q.Enqueue(ctx, newTestJob("job3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.Cap() != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.Cap())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, newTestJob("job1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numProducers := 10
	numJobs := 100

	var consumed sync.WaitGroup
	consumed.Add(numProducers * numJobs)
	for i := 0; i < 4; i++ {
		go func() {
			for range q.Dequeue() {
				consumed.Done()
			}
		}()
	}

	var producers sync.WaitGroup
	for i := 0; i < numProducers; i++ {
		producers.Add(1)
		go func(id int) {
			defer producers.Done()
			for j := 0; j < numJobs; j++ {
				job := newTestJob(fmt.Sprintf("job%d_%d", id, j))
				for q.Enqueue(ctx, job) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	producers.Wait()

	done := make(chan struct{})
	go func() {
		consumed.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue")
	}

	if l := q.Len(); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
	_ = q.Close()
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for _, id := range []string{"job1", "job2"} {
		if err := q.Enqueue(ctx, newTestJob(id)); err != nil {
			t.Errorf("expected enqueue to succeed, got %v", err)
		}
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	if err := q.Enqueue(ctx, newTestJob("job3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Pending jobs remain readable before the channel reports closed.
	var ids []string
	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case job, ok := <-q.Dequeue():
			if !ok {
				if len(ids) != 2 {
					t.Errorf("expected 2 drained jobs, got %v", ids)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			ids = append(ids, job.ID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
