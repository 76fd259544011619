package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/buildlab/internal/adapters/oracle"
	"github.com/okian/buildlab/internal/config"
	"github.com/okian/buildlab/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("BUILDLAB_ADDR", ":8080")
			_ = os.Setenv("BUILDLAB_QUEUE_SIZE", "1000")
			_ = os.Setenv("BUILDLAB_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("BUILDLAB_ADDR")
				_ = os.Unsetenv("BUILDLAB_QUEUE_SIZE")
				_ = os.Unsetenv("BUILDLAB_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When wiring the HTTP routes", func() {
			cfg := config.New()
			cfg.WorkerCount = 1
			orc, err := oracle.New(ctx, oracle.Config{Provider: oracle.ProviderOpenAI, APIKey: "k"})
			convey.So(err, convey.ShouldBeNil)

			svc := newService(cfg, orc)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			mux := newMux(ctx, svc)

			get := func(path string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				return w
			}

			convey.Convey("Then metrics, stats and docs are served", func() {
				convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/stats").Body.String(), convey.ShouldContainSubstring, `"started":true`)
				convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/nope").Code, convey.ShouldEqual, http.StatusNotFound)
			})

			convey.Convey("Then an empty prompt is rejected before any outbound call", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/builds", strings.NewReader(`{"prompt":"  "}`)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})

			convey.Convey("Then the service metrics updater reads the stats", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration for a free port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := l.Addr().String()
		_ = l.Close()

		cfg := config.New()
		cfg.Addr = addr
		cfg.WorkerCount = 1
		cfg.OracleAPIKey = "k"

		convey.Convey("When the context is cancelled after start", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()

			var up bool
			for i := 0; i < 50 && !up; i++ {
				resp, err := http.Get("http://" + addr + "/stats")
				if err == nil {
					_ = resp.Body.Close()
					up = resp.StatusCode == http.StatusOK
				}
				if !up {
					time.Sleep(20 * time.Millisecond)
				}
			}
			cancel()

			convey.Convey("Then the server came up and shuts down cleanly", func() {
				convey.So(up, convey.ShouldBeTrue)
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the provider is unknown", func() {
			cfg.OracleProvider = "carrier-pigeon"
			err := run(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
