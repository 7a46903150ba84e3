package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/okian/sentiscope/internal/app"
	"github.com/okian/sentiscope/internal/config"
	"github.com/okian/sentiscope/internal/domain/model"
	"github.com/okian/sentiscope/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("SENTISCOPE_ADDR", ":8080")
			t.Setenv("SENTISCOPE_QUEUE_SIZE", "1000")
			t.Setenv("SENTISCOPE_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation from configuration", func() {
			cfg := config.New()
			cfg.ThresholdLow, cfg.ThresholdHigh = -0.2, 0.3

			convey.Convey("Then the service carries the configured thresholds", func() {
				svc := newService(cfg, logger.Nop())
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.DefaultThresholds(), convey.ShouldResemble, model.ThresholdRange{Low: -0.2, High: 0.3})
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 2
		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc, logger.Nop())

		convey.Convey("When posting text to /analyze", func() {
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"text":"I love this, it is wonderful"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then all components work together", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				var report model.Report
				convey.So(json.NewDecoder(w.Body).Decode(&report), convey.ShouldBeNil)
				convey.So(report.Label, convey.ShouldEqual, model.LabelPositive)
			})
		})

		convey.Convey("When requesting the API docs", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			convey.Convey("Then the OpenAPI document is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/analyze/upload")
			})
		})

		convey.Convey("When opening the root page", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			convey.Convey("Then the analyzer page is served", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Sentiscope")
			})
		})

		convey.Convey("When reading the thresholds", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thresholds", nil))

			convey.Convey("Then the configured defaults are returned", func() {
				var r model.ThresholdRange
				convey.So(json.NewDecoder(w.Body).Decode(&r), convey.ShouldBeNil)
				convey.So(r, convey.ShouldResemble, cfg.Thresholds())
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			t.Setenv("SENTISCOPE_ADDR", "")

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the configured thresholds are inverted", func() {
			t.Setenv("SENTISCOPE_THRESHOLD_LOW", "0.5")
			t.Setenv("SENTISCOPE_THRESHOLD_HIGH", "-0.5")

			convey.Convey("Then configuration loading should fail", func() {
				_, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New(app.WithLogger(logger.Nop()))

			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing metrics updates directly", func() {
			svc := app.New(app.WithLogger(logger.Nop()), app.WithWorkerCount(1))
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then they should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
