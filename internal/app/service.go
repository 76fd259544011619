// Package service runs the build pipeline and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	eventqueue "github.com/okian/buildlab/internal/adapters/mq/queue"
	workerpool "github.com/okian/buildlab/internal/adapters/mq/worker"
	"github.com/okian/buildlab/internal/adapters/refdata"
	"github.com/okian/buildlab/internal/domain/analysis"
	"github.com/okian/buildlab/internal/domain/badges"
	"github.com/okian/buildlab/internal/domain/completion"
	"github.com/okian/buildlab/internal/domain/generation"
	"github.com/okian/buildlab/internal/domain/matching"
	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/internal/domain/naming"
	"github.com/okian/buildlab/internal/domain/rating"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

// Defaults for a Service.
const (
	DefaultQueueSize       = 256
	DefaultMaxPromptLength = 2000
	DefaultRequestTimeout  = 90 * time.Second
	stopTimeout            = 30 * time.Second
)

var (
	// ErrBackpressure is returned when the request queue is full.
	ErrBackpressure = model.ErrBackpressure
	// ErrNotStarted is returned by Submit before Start or after Stop.
	ErrNotStarted = errors.New("service not started")
)

// CommunitySource lists community builds for the catalog matcher.
type CommunitySource interface {
	CommunityBuilds(ctx context.Context) ([]json.RawMessage, error)
}

// Service implements the API dependencies for the build recommender.
type Service struct {
	mu sync.RWMutex

	// Pipeline
	analyzer  *analysis.Analyzer
	generator *generation.Generator
	matcher   *matching.Matcher
	resolver  *badges.Resolver
	datasets  refdata.Source
	community CommunitySource

	// Execution
	queue eventqueue.Queue
	pool  *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	maxPromptLength int
	requestTimeout  time.Duration
	temperatures    temperatures

	// State
	started bool

	logger logger.Logger
}

type temperatures struct {
	analysis, generation, match float64
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

// WithQueueSize sets how many requests may wait for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxPromptLength sets the longest accepted prompt in runes.
func WithMaxPromptLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPromptLength = n
		}
	}
}

// WithRequestTimeout bounds a whole submitted request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithTemperatures sets the sampling temperature of each oracle call.
func WithTemperatures(analysisTemp, generationTemp, matchTemp float64) Option {
	return func(s *Service) {
		s.temperatures = temperatures{analysis: analysisTemp, generation: generationTemp, match: matchTemp}
	}
}

// WithBadgeResolver replaces the default badge resolver.
func WithBadgeResolver(r *badges.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithCommunitySource sets where the matcher reads community builds.
func WithCommunitySource(src CommunitySource) Option {
	return func(s *Service) {
		if src != nil {
			s.community = src
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

// New constructs a Service around an oracle and a dataset source.
func New(oracle completion.Service, datasets refdata.Source, opts ...Option) *Service {
	s := &Service{
		datasets:        datasets,
		resolver:        badges.New(),
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       DefaultQueueSize,
		maxPromptLength: DefaultMaxPromptLength,
		requestTimeout:  DefaultRequestTimeout,
		temperatures: temperatures{
			analysis:   analysis.DefaultTemperature,
			generation: generation.DefaultTemperature,
			match:      matching.DefaultTemperature,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.community == nil {
		if cs, ok := datasets.(CommunitySource); ok {
			s.community = cs
		}
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.analyzer = analysis.New(oracle, analysis.WithTemperature(s.temperatures.analysis))
	s.generator = generation.New(oracle, generation.WithTemperature(s.temperatures.generation))
	s.matcher = matching.New(oracle, matching.WithTemperature(s.temperatures.match))
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.HandlerFunc(s.handle))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "build service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("requestTimeout", s.requestTimeout),
	)
	return nil
}

// Stop drains queued requests and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping build service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "build service stopped")
}

// Submit validates prompt and runs it on the worker pool. A full queue fails
// fast with ErrBackpressure.
func (s *Service) Submit(ctx context.Context, kind model.JobKind, prompt string) (any, error) {
	prompt, err := s.validate(prompt)
	if err != nil {
		return nil, err
	}
	ctx = ensureRequestID(ctx)

	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	job := model.NewJob(ctx, logger.RequestID(ctx), kind, prompt)
	if !q.Enqueue(ctx, job) {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case q.IsClosed():
			return nil, ErrNotStarted
		}
		return nil, ErrBackpressure
	}

	select {
	case res := <-job.Reply:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handle is the worker pool entry point.
func (s *Service) handle(ctx context.Context, j model.Job) (any, error) { //nolint:gocritic // hugeParam: jobs travel by value
	switch j.Kind {
	case model.JobBuild:
		return s.Build(ctx, j.Prompt)
	case model.JobMatch:
		return s.Match(ctx, j.Prompt)
	default:
		return nil, fmt.Errorf("%w: unknown job kind %q", model.ErrInput, j.Kind)
	}
}

// Build turns a free-text request into a rated, badged and named build.
func (s *Service) Build(ctx context.Context, prompt string) (model.BuildResponse, error) {
	prompt, err := s.validate(prompt)
	if err != nil {
		return model.BuildResponse{}, err
	}
	ctx = ensureRequestID(ctx)
	start := time.Now()

	res, err := s.build(ctx, prompt)
	s.observe(ctx, string(model.JobBuild), start, err)
	return res, err
}

func (s *Service) build(ctx context.Context, prompt string) (model.BuildResponse, error) {
	prefs, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return model.BuildResponse{}, err
	}
	s.logger.Debug(ctx, "preferences analyzed",
		logger.String("position", prefs.Position),
		logger.String("playStyle", prefs.PlayStyle),
	)

	data, err := s.datasets.FetchAll(ctx)
	if err != nil {
		return model.BuildResponse{}, err
	}

	plan := generation.NewPlan(prefs, data)
	draft, err := s.generator.Generate(ctx, prefs, plan)
	if err != nil {
		return model.BuildResponse{}, err
	}
	for _, r := range draft.Repairs {
		s.logger.Warn(ctx, "repaired generated build", logger.String("repair", r))
	}
	if len(draft.Repairs) > 0 {
		metrics.RecordDegradation("generation")
	}

	caps := draft.Caps
	overall := rating.Calculate(caps.Attributes).Overall

	if data.BadgeRequirements == nil {
		metrics.RecordDegradation("badges")
		s.logger.Warn(ctx, "no badge requirements, build has no badges")
	}
	set := s.resolver.Resolve(caps, data.BadgeRequirements, data.BadgeCeilings)
	metrics.RecordBadgesResolved(len(set.Badges))

	name, source := naming.Resolve(caps, prefs, data.BuildNames, draft.Name)
	metrics.RecordBuildNameSource(string(source))

	s.logger.Info(ctx, "build created",
		logger.String("name", name),
		logger.String("nameSource", string(source)),
		logger.String("position", caps.Position),
		logger.Int("height", caps.Height),
		logger.Int("overall", overall),
		logger.Int("badges", len(set.Badges)),
	)

	return model.BuildResponse{
		Analysis: prefs,
		Build: model.Build{
			CapSet:  caps,
			Overall: overall,
			Badges:  set.Badges,
			Tier1:   set.HoF,
			Tier2:   set.Gold,
			Name:    name,
		},
	}, nil
}

// Match picks the community build that best fits a free-text request.
func (s *Service) Match(ctx context.Context, prompt string) (model.MatchResponse, error) {
	prompt, err := s.validate(prompt)
	if err != nil {
		return model.MatchResponse{}, err
	}
	ctx = ensureRequestID(ctx)
	start := time.Now()

	res, err := s.match(ctx, prompt)
	s.observe(ctx, string(model.JobMatch), start, err)
	return res, err
}

func (s *Service) match(ctx context.Context, prompt string) (model.MatchResponse, error) {
	if s.community == nil {
		return model.MatchResponse{}, fmt.Errorf("%w: no community build source configured", model.ErrUpstreamData)
	}

	prefs, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return model.MatchResponse{}, err
	}
	builds, err := s.community.CommunityBuilds(ctx)
	if err != nil {
		return model.MatchResponse{}, err
	}
	idx, err := s.matcher.Match(ctx, prefs, builds)
	if err != nil {
		return model.MatchResponse{}, err
	}

	s.logger.Info(ctx, "build matched", logger.Int("index", idx), logger.Int("candidates", len(builds)))
	return model.MatchResponse{Analysis: prefs, Build: builds[idx], Index: idx}, nil
}

func (s *Service) observe(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordPipelineLatency(operation, float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.RecordBuild(operation, "ok")
		return
	}
	kind := ErrorKind(err)
	metrics.RecordBuild(operation, kind)
	metrics.RecordErrorByComponent("pipeline", kind)
	s.logger.Error(ctx, operation+" failed", logger.String("kind", kind), logger.Error(err))
}

// validate trims prompt and enforces the length limit.
func (s *Service) validate(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is empty", model.ErrInput)
	}
	if n := utf8.RuneCountInString(prompt); n > s.maxPromptLength {
		return "", fmt.Errorf("%w: prompt has %d characters, limit is %d", model.ErrInput, n, s.maxPromptLength)
	}
	return prompt, nil
}

// ensureRequestID attaches a fresh UUID unless ctx already carries an id.
func ensureRequestID(ctx context.Context) context.Context {
	if logger.RequestID(ctx) != "" {
		return ctx
	}
	return logger.WithRequestID(ctx, uuid.NewString())
}

// ErrorKind labels err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrInput):
		return "input"
	case errors.Is(err, ErrBackpressure):
		return "backpressure"
	case errors.Is(err, model.ErrUpstreamData):
		return "upstream"
	case errors.Is(err, model.ErrOracle):
		return "oracle"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"maxPromptLength": s.maxPromptLength,
	}

	if s.started {
		queueLen := s.queue.Len()
		ps := s.pool.Stats()
		stats["queueLength"] = queueLen
		stats["active"] = ps.Active
		stats["processed"] = ps.Processed
		stats["failed"] = ps.Failed

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(ps.Workers)
	}

	return stats
}
