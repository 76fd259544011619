package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // jobs are I/O bound on the oracle
	poolShutdownTimeout     = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = model.Job

// Handler runs one job. ctx is the job's own context.
type Handler interface {
	Handle(ctx context.Context, j Job) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j Job) (any, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, j Job) (any, error) { //nolint:gocritic // hugeParam: jobs travel by value
	return f(ctx, j)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

type counters struct {
	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	handler  Handler
	name     string
	counters *counters

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "worker",
		counters: &counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(j)
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

// process always answers on the job's reply channel.
func (w *InMemoryWorker) process(j Job) { //nolint:gocritic // hugeParam: jobs travel by value
	ctx := j.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	// The caller may have given up while the job waited.
	if err := ctx.Err(); err != nil {
		metrics.RecordErrorByComponent("worker", "expired")
		w.counters.failed.Add(1)
		j.Respond(model.JobResult{Err: err})
		return
	}

	value, err := w.run(ctx, j)
	j.Respond(model.JobResult{Value: value, Err: err})
}

func (w *InMemoryWorker) run(ctx context.Context, j Job) (any, error) { //nolint:gocritic // hugeParam: jobs travel by value
	metrics.UpdateWorkerActiveCount(int(w.counters.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.counters.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	value, err := w.safeHandle(ctx, j)
	w.counters.processed.Add(1)
	if err != nil {
		w.counters.failed.Add(1)
		metrics.RecordWorkerError()
		w.logger.Debug(ctx, "job failed",
			logger.String("job_id", j.ID),
			logger.String("kind", string(j.Kind)),
			logger.Error(err),
		)
	}
	return value, err
}

var errPanic = errors.New("handler panicked")

func (w *InMemoryWorker) safeHandle(ctx context.Context, j Job) (value any, err error) { //nolint:gocritic // hugeParam: jobs travel by value
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordErrorByType("panic", "critical")
			w.logger.Error(ctx, "handler panicked", logger.String("job_id", j.ID), logger.Any("panic", r))
			value, err = nil, fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return w.handler.Handle(ctx, j)
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *counters

	logger logger.Logger
}

// NewPool creates a pool. A count below one picks a CPU-based default.
func NewPool(workerCount int, queue Queue, handler Handler) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		counters: &counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(queue, handler,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(p.counters),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Active:    p.counters.active.Load(),
		Processed: p.counters.processed.Load(),
		Failed:    p.counters.failed.Load(),
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
