package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/buildlab/internal/adapters/http/api"
	"github.com/okian/buildlab/internal/adapters/http/site"
	"github.com/okian/buildlab/internal/adapters/http/swagger"
	"github.com/okian/buildlab/internal/adapters/oracle"
	"github.com/okian/buildlab/internal/adapters/refdata"
	app "github.com/okian/buildlab/internal/app"
	"github.com/okian/buildlab/internal/config"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/okian/buildlab/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeoutSlack      = 5 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	orc, err := oracle.New(ctx, cfg.Oracle())
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}
	defer func() {
		if err := orc.Close(); err != nil {
			log.Warn(ctx, "oracle close failed", logger.Error(err))
		}
	}()
	if cfg.OracleAPIKey == "" {
		log.Warn(ctx, "no oracle API key configured; build requests will fail",
			logger.String("provider", orc.Provider()))
	}

	svc := newService(cfg, orc)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.RequestTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("oracle", orc.Provider()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the pipeline around an oracle.
func newService(cfg *config.Config, orc *oracle.Oracle) *app.Service {
	client := refdata.NewClient(
		refdata.WithBaseURL(cfg.DatasetBaseURL),
		refdata.WithPaths(cfg.DatasetPaths()),
		refdata.WithCommunityURL(cfg.CommunityBuildsURL),
		refdata.WithTimeout(cfg.FetchTimeout()),
		refdata.WithRateLimit(cfg.DatasetRatePerSec, cfg.DatasetBurst),
	)

	return app.New(orc, refdata.NewCache(client, cfg.DatasetCacheTTL()),
		app.WithCommunitySource(client),
		app.WithLogger(logger.Get().Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithMaxPromptLength(cfg.MaxPromptLength),
		app.WithRequestTimeout(cfg.RequestTimeout()),
		app.WithTemperatures(cfg.AnalysisTemperature, cfg.GenerationTemperature, cfg.MatchTemperature),
	)
}

// newMux registers the landing page, docs and business routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes queue and worker gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if active, ok := stats["active"].(int64); ok {
		metrics.UpdateWorkerActiveCount(int(active))
	}
}
