package buildctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/buildlab/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
	percent             = 100
)

// Errors returned by Run.
var (
	ErrNoPrompts = errors.New("no prompts to submit")
	ErrEndpoint  = errors.New("unknown endpoint")
)

// Run checks the server, submits every prompt and reports the outcome.
// Results come back in prompt order.
func Run(ctx context.Context, cfg Config, log logger.Logger) ([]Result, Summary, error) {
	if len(cfg.Prompts) == 0 {
		return nil, Summary{}, ErrNoPrompts
	}
	if cfg.Endpoint != EndpointBuild && cfg.Endpoint != EndpointMatch {
		return nil, Summary{}, fmt.Errorf("%w: %q", ErrEndpoint, cfg.Endpoint)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting buildctl run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("endpoint", cfg.Endpoint),
		logger.Int("prompts", len(cfg.Prompts)),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, Summary{}, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	start := time.Now()
	results := submitAll(ctx, client, cfg, log)
	summary := summarize(results, time.Since(start))

	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		} else {
			log.Info(ctx, "results saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	displaySummary(ctx, log, summary)
	return results, summary, ctx.Err()
}

// submitAll fans the prompts out over cfg.Workers concurrent requests.
func submitAll(ctx context.Context, client *Client, cfg Config, log logger.Logger) []Result {
	results := make([]Result, len(cfg.Prompts))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, prompt := range cfg.Prompts {
		i, prompt := i, prompt
		g.Go(func() error {
			res := client.Submit(ctx, cfg.Endpoint, prompt)
			results[i] = res
			report(ctx, log, res, cfg.Verbose)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func report(ctx context.Context, log logger.Logger, res Result, verbose bool) {
	fields := []logger.Field{
		logger.String("requestId", res.RequestID),
		logger.String("prompt", abbreviate(res.Prompt)),
		logger.Int("status", res.Status),
		logger.Duration("took", res.Duration),
	}
	if !res.OK() {
		log.Warn(ctx, "request failed", append(fields, logger.String("error", res.Error))...)
		return
	}

	fields = append(fields, logger.String("name", res.Name))
	if res.Overall > 0 {
		fields = append(fields, logger.Int("overall", res.Overall))
	}
	if res.Index != nil {
		fields = append(fields, logger.Int("index", *res.Index))
	}
	if verbose {
		fields = append(fields, logger.String("body", string(res.Body)))
	}
	log.Info(ctx, "build received", fields...)
}

func abbreviate(s string) string {
	const limit = 60
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "..."
}

func summarize(results []Result, took time.Duration) Summary {
	s := Summary{
		Submitted: len(results),
		ByStatus:  make(map[int]int),
		Duration:  took,
	}
	for _, r := range results {
		s.ByStatus[r.Status]++
		if r.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
		if r.Duration > s.Slowest {
			s.Slowest = r.Duration
		}
	}
	return s
}

// saveResults writes results as an indented JSON array.
func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func displaySummary(ctx context.Context, log logger.Logger, s Summary) {
	var successRate, perSecond float64
	if s.Submitted > 0 {
		successRate = float64(s.Succeeded) / float64(s.Submitted) * percent
	}
	if s.Duration > 0 {
		perSecond = float64(s.Submitted) / s.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("submitted", s.Submitted),
		logger.Int("succeeded", s.Succeeded),
		logger.Int("failed", s.Failed),
		logger.Duration("duration", s.Duration),
		logger.Duration("slowest", s.Slowest),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond),
	}
	for status, n := range s.ByStatus {
		fields = append(fields, logger.Int(fmt.Sprintf("status_%d", status), n))
	}
	log.Info(ctx, "final statistics", fields...)
}
