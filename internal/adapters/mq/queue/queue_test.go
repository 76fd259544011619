package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/buildlab/internal/domain/model"
)

func job(id string) Job {
	return model.NewJob(context.Background(), id, model.JobBuild, "prompt "+id)
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("job1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "job1" || got.Prompt != "prompt job1" {
		t.Errorf("unexpected job %+v", got)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("job1")) || !q.Enqueue(ctx, job("job2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job("job3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, job("job1")) {
		t.Error("expected enqueue with a cancelled context to fail")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 10, 50

	var consumed sync.Map
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range q.Dequeue(ctx) {
				if _, dup := consumed.LoadOrStore(j.ID, true); dup {
					t.Errorf("job %s delivered twice", j.ID)
				}
			}
		}()
	}

	var pwg sync.WaitGroup
	for i := 0; i < producers; i++ {
		pwg.Add(1)
		go func(id int) {
			defer pwg.Done()
			for n := 0; n < perProducer; n++ {
				for !q.Enqueue(ctx, job(fmt.Sprintf("job%d_%d", id, n))) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}
	pwg.Wait()

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()

	count := 0
	consumed.Range(func(_, _ any) bool { count++; return true })
	if count != producers*perProducer {
		t.Errorf("expected %d jobs, got %d", producers*perProducer, count)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("job1")) || !q.Enqueue(ctx, job("job2")) {
		t.Fatal("expected enqueue to succeed")
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
	if q.Enqueue(ctx, job("job3")) {
		t.Error("expected enqueue to fail after closing")
	}

	var drained []string
	timeout := time.After(time.Second)
	jobs := q.Dequeue(ctx)
	for done := false; !done; {
		select {
		case j, ok := <-jobs:
			if !ok {
				done = true
				break
			}
			drained = append(drained, j.ID)
		case <-timeout:
			t.Fatal("expected dequeue channel to close")
		}
	}
	if len(drained) != 2 {
		t.Errorf("expected queued jobs to drain after close, got %v", drained)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
