package server

import (
	"net/http"
	"time"

	analyticsctrl "coswig/internal/analytics/controller"
	dataioctrl "coswig/internal/dataio/controller"
	orderctrl "coswig/internal/order/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(
	orders *orderctrl.Controller,
	analytics *analyticsctrl.Controller,
	data *dataioctrl.Controller,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.HandleList)
			r.Post("/", orders.HandleCreate)
			r.Post("/batch-delete", orders.HandleBatchDelete)
			r.Get("/{id}", orders.HandleGet)
			r.Put("/{id}", orders.HandleUpdate)
			r.Patch("/{id}", orders.HandlePatch)
			r.Delete("/{id}", orders.HandleDelete)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", analytics.HandleOverview)
			r.Get("/platforms", analytics.HandlePlatforms)
			r.Get("/monthly", analytics.HandleMonthly)
			r.Get("/pending", analytics.HandlePending)
		})

		r.Get("/calendar", analytics.HandleCalendar)
		r.Get("/database/info", data.HandleInfo)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
