package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/platformer/internal/app"
	"github.com/okian/platformer/internal/config"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a process context on the memory store", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ctx := context.Background()

		cfg := config.New()
		cfg.Store = config.StoreMemory
		cfg.BcryptCost = 4
		cfg.APIPath = "/v1"

		proc, err := service.NewProcessContext(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = proc.Close(ctx) }()

		h := newHandler(ctx, proc, proc.Service())

		convey.Convey("Then health, docs and the API are routed", func() {
			for _, path := range []string{"/healthz", "/openapi.yaml", "/api-docs", "/metrics"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/user", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusForbidden)
		})

		convey.Convey("Then the configured CORS allowlist applies", func() {
			req := httptest.NewRequest(http.MethodOptions, "/v1/level", http.NoBody)
			req.Header.Set("Origin", "http://localhost:5500")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNoContent)
		})
	})
}

func TestRunFailsOnBadConfig(t *testing.T) {
	convey.Convey("Given an invalid store driver", t, func() {
		_ = os.Setenv("PLATFORMER_STORE", "sqlite")
		defer func() { _ = os.Unsetenv("PLATFORMER_STORE") }()

		err := run(context.Background())
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestRunServesUntilCancelled(t *testing.T) {
	convey.Convey("Given a memory store on a free port", t, func() {
		_ = os.Setenv("PLATFORMER_STORE", "memory")
		_ = os.Setenv("PLATFORMER_ADDR", "127.0.0.1:0")
		defer func() {
			_ = os.Unsetenv("PLATFORMER_STORE")
			_ = os.Unsetenv("PLATFORMER_ADDR")
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.So(run(ctx), convey.ShouldBeNil)
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("When system metrics are refreshed", t, func() {
		updateSystemMetrics()

		families, err := metrics.GetRegistry().Gather()
		convey.So(err, convey.ShouldBeNil)

		var goroutines float64
		for _, mf := range families {
			if mf.GetName() == "platformer_api_system_goroutine_count" {
				goroutines = mf.GetMetric()[0].GetGauge().GetValue()
			}
		}
		convey.So(goroutines, convey.ShouldBeGreaterThan, 0)
	})
}
