// Package api is the HTTP request/response shim over the conversion service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vidconv/internal/log"
	"vidconv/internal/pipeline"
)

// Config tunes the router.
type Config struct {
	// RateLimitRPM caps conversion requests per client IP per minute; 0 disables it.
	RateLimitRPM int
	// MaxBodyBytes bounds request bodies; 0 means 1 MiB.
	MaxBodyBytes int64
}

type server struct {
	svc     *pipeline.Service
	maxBody int64
	logger  zerolog.Logger
}

// NewRouter mounts the operations, job lookup, health and metrics endpoints.
func NewRouter(svc *pipeline.Service, cfg Config) http.Handler {
	s := &server{
		svc:     svc,
		maxBody: cfg.MaxBodyBytes,
		logger:  log.WithComponent("api"),
	}
	if s.maxBody <= 0 {
		s.maxBody = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{taskID}", s.handleGetJob)
		r.Post("/get_video_info", s.handleInfo)

		r.Group(func(r chi.Router) {
			if cfg.RateLimitRPM > 0 {
				r.Use(rateLimit(cfg.RateLimitRPM, time.Minute))
			}
			r.Post("/convert_video", s.handleConvert)
			r.Post("/batch_convert", s.handleBatch)
		})
	})
	return r
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, failure{Error: "rate limit exceeded; try again later"})
		}),
	)
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("route", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
