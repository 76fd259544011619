// Package refdata fetches the reference datasets the pipeline grounds its
// answers on.
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

// Default locations of the datasets.
const (
	DefaultBaseURL          = "https://www.nba2klab.com/_next/data/K36eXiGRM86lm6X-5b3mg/en/"
	DefaultCommunityURL     = "https://www.nba2klab.com/.netlify/functions/builds"
	DefaultWeightsPath      = "nba2k-attribute-calculated-weights-heat.json"
	DefaultRequirementsPath = "badge-requirements.json"
	DefaultBuildNamesPath   = "build-names.json"
	DefaultBadgeTiersPath   = "badge-max-level-by-height.json"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRate    = 10
	defaultBurst   = 4
	maxBody        = 32 << 20
)

// Paths are the dataset file names below the base URL.
type Paths struct {
	Weights      string
	Requirements string
	BuildNames   string
	BadgeTiers   string
}

// DefaultPaths returns the stock file names.
func DefaultPaths() Paths {
	return Paths{
		Weights:      DefaultWeightsPath,
		Requirements: DefaultRequirementsPath,
		BuildNames:   DefaultBuildNamesPath,
		BadgeTiers:   DefaultBadgeTiersPath,
	}
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the URL the dataset paths are resolved against.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/") + "/"
		}
	}
}

// WithPaths overrides individual dataset paths; empty fields keep the default.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Weights != "" {
			c.paths.Weights = p.Weights
		}
		if p.Requirements != "" {
			c.paths.Requirements = p.Requirements
		}
		if p.BuildNames != "" {
			c.paths.BuildNames = p.BuildNames
		}
		if p.BadgeTiers != "" {
			c.paths.BadgeTiers = p.BadgeTiers
		}
	}
}

// WithCommunityURL sets where community builds are listed.
func WithCommunityURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.communityURL = u
		}
	}
}

// WithTimeout bounds each GET.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit limits outbound requests per second with a burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client reads the datasets over plain HTTP GET.
type Client struct {
	baseURL      string
	communityURL string
	paths        Paths
	timeout      time.Duration
	limiter      *rate.Limiter
	http         *http.Client
	logger       logger.Logger
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		communityURL: DefaultCommunityURL,
		paths:        DefaultPaths(),
		timeout:      defaultTimeout,
		limiter:      rate.NewLimiter(defaultRate, defaultBurst),
		http:         &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("refdata")
	}
	return c
}

// get fetches url and returns the body. Failures wrap model.ErrUpstreamData
// unless the context ended first.
func (c *Client) get(ctx context.Context, dataset, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter: %w", dataset, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	body, err := c.do(ctx, url)
	metrics.RecordDatasetFetchLatency(dataset, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordDatasetError(dataset)
		metrics.RecordErrorByComponent("refdata", dataset)
		c.logger.Warn(ctx, "dataset fetch failed", logger.String("dataset", dataset), logger.Error(err))
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", dataset, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %v", model.ErrUpstreamData, dataset, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// CommunityBuilds lists community builds verbatim. The list must be a JSON
// array.
func (c *Client) CommunityBuilds(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.get(ctx, "community_builds", c.communityURL)
	if err != nil {
		return nil, err
	}
	var builds []json.RawMessage
	if err := json.Unmarshal(body, &builds); err != nil {
		metrics.RecordDatasetError("community_builds")
		return nil, fmt.Errorf("%w: community builds are not a list: %v", model.ErrUpstreamData, err)
	}
	c.logger.Debug(ctx, "community builds loaded", logger.Int("count", len(builds)))
	return builds, nil
}
