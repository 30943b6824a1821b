package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/internal/config"
	"github.com/okian/wrapped/internal/sampleseason"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("WRAPPED_ADDR", ":8080")
			_ = os.Setenv("WRAPPED_QUEUE_SIZE", "1000")
			_ = os.Setenv("WRAPPED_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("WRAPPED_ADDR")
				_ = os.Unsetenv("WRAPPED_QUEUE_SIZE")
				_ = os.Unsetenv("WRAPPED_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.PopularityEnabled(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("WRAPPED_ADDR", "")
			defer func() { _ = os.Unsetenv("WRAPPED_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a generated export and the default config", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dir := filepath.Join(t.TempDir(), "data")
		gen := sampleseason.DefaultConfig()
		gen.OutputDir = dir
		counts, err := sampleseason.Run(ctx, gen)
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New()
		cfg.DataDir = dir
		cfg.WorkerCount = 2

		convey.Convey("When the service is wired and started", func() {
			svc := newService(cfg, logger.Nop())
			defer svc.Stop()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)

			srv := httptest.NewServer(newMux(ctx, svc))
			defer srv.Close()

			convey.Convey("Then the HTTP API serves the season", func() {
				for _, path := range []string{"/healthz", "/stats", "/awards", "/competitors", "/pairs", "/rounds", "/openapi.yaml"} {
					resp, err := srv.Client().Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					_ = resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				}
				client := &http.Client{Timeout: time.Second}
				convey.So(sampleseason.Verify(ctx, client, srv.URL, counts), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the export is missing a file", func() {
			convey.So(os.Remove(filepath.Join(dir, ingest.VotesFile)), convey.ShouldBeNil)
			svc := newService(cfg, logger.Nop())

			convey.Convey("Then the service refuses to start", func() {
				convey.So(svc.Start(ctx), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When Spotify credentials are configured", func() {
			cfg.SpotifyClientID = "id"
			cfg.SpotifyClientSecret = "secret"

			convey.Convey("Then popularity lookups are enabled", func() {
				convey.So(cfg.PopularityEnabled(), convey.ShouldBeTrue)
				convey.So(newService(cfg, logger.Nop()), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(func() {
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})
	})
}
