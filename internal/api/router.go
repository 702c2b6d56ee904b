package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"SignalScout/internal/collector"
	"SignalScout/internal/metrics"
	"SignalScout/internal/model"
	"SignalScout/internal/screener"
)

// Config holds router dependencies
type Config struct {
	Collector *collector.Collector
	Screeners map[model.ScreenMode]*screener.Screener
	Metrics   *metrics.Metrics
	Version   string
}

// NewRouter creates the HTTP router
func NewRouter(cfg Config) http.Handler {
	h := &Handler{
		collector: cfg.Collector,
		screeners: cfg.Screeners,
		version:   cfg.Version,
		startTime: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/signals/{symbol}", h.GetSignal)
		r.Get("/screen/{mode}", h.Screen)
	})
	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
