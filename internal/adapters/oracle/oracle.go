// Package oracle provides completion.Service implementations backed by
// hosted language models.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown oracle provider")

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Oracle is an instrumented completion.Service: every call is bounded by
// the configured timeout, timed, and counted.
type Oracle struct {
	next     completion.Service
	provider string
	timeout  time.Duration
	closer   func() error
	logger   logger.Logger
}

// New builds the configured provider and wraps it.
func New(ctx context.Context, cfg Config) (*Oracle, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		c := NewOpenAI(cfg.APIKey, cfg.Model, WithBaseURL(cfg.BaseURL))
		return Wrap(c, c.Name(), cfg.Timeout), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		o := Wrap(g, g.Name(), cfg.Timeout)
		o.closer = g.Close
		return o, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Wrap instruments any completion.Service. A zero timeout leaves calls
// bounded only by the caller's context.
func Wrap(next completion.Service, provider string, timeout time.Duration) *Oracle {
	return &Oracle{
		next:     next,
		provider: provider,
		timeout:  timeout,
		logger:   logger.Get().Named("oracle"),
	}
}

// Provider returns the provider label.
func (o *Oracle) Provider() string { return o.provider }

// Complete implements completion.Service. Failures wrap model.ErrOracle,
// except timeouts which keep context.DeadlineExceeded so callers can tell
// them apart.
func (o *Oracle) Complete(ctx context.Context, req completion.Request) ([]byte, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := o.next.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.RecordOracleLatency(string(req.Schema), o.provider, float64(elapsed.Milliseconds()))

	if err != nil {
		metrics.RecordOracleError(string(req.Schema), o.provider)
		metrics.RecordErrorByComponent("oracle", string(req.Schema))
		o.logger.Warn(ctx, "oracle call failed",
			logger.String("schema", string(req.Schema)),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%s oracle call timed out: %w", req.Schema, context.DeadlineExceeded)
		case errors.Is(err, context.Canceled):
			return nil, err
		case errors.Is(err, model.ErrOracle):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", model.ErrOracle, err)
		}
	}

	o.logger.Debug(ctx, "oracle call done",
		logger.String("schema", string(req.Schema)),
		logger.Duration("elapsed", elapsed),
		logger.Int("bytes", len(out)),
	)
	return out, nil
}

// Close releases provider resources.
func (o *Oracle) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer()
}
