package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the API router
type RouterOptions struct {
	CORSOrigins    []string
	Metrics        http.Handler // Optional; served at /metrics
	RateLimiter    *RateLimiter // Optional; applied to /api/v1
	RequestTimeout time.Duration
}

// NewRouter builds the chi router for the value engine API
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// WebSocket connections are long-lived and stay outside the request timeout
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Post("/valuations", h.Valuate)
		r.Post("/stakes", h.Stake)
		r.Post("/context", h.MatchContext)

		r.Route("/history/{league}", func(r chi.Router) {
			r.Get("/head-to-head", h.HeadToHead)
			r.Get("/form", h.Form)
			r.Get("/odds-performance", h.OddsPerformance)
		})
	})

	return r
}
