// Package worker runs queued build jobs on a fixed pool of goroutines.
package worker

import (
	"github.com/okian/buildlab/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withCounters shares the pool's counters with a worker.
func withCounters(c *counters) Option {
	return func(w *InMemoryWorker) {
		w.counters = c
	}
}
