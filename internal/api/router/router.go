package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eumlog/consultation-engine/internal/http/handlers"
	httpmiddleware "github.com/eumlog/consultation-engine/internal/http/middleware"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ConsultationHandler *handlers.ConsultationHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
	// SessionLimiter throttles session turns per client IP. Nil disables it.
	SessionLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.ConsultationHandler
	r.Get("/health", h.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/records:parse", h.ParseRecords)
		v1.Post("/scripts:batch", h.BatchScripts)

		v1.Route("/sessions", func(s chi.Router) {
			if cfg.SessionLimiter != nil {
				s.Use(httpmiddleware.RateLimit(cfg.SessionLimiter))
			}
			s.Post("/", h.StartSession)
			s.Get("/{sessionID}", h.GetSession)
			s.Post("/{sessionID}/messages", h.SendMessage)
		})

		if h.HasOutcomes() {
			v1.Get("/outcomes", h.GetOutcome)
		}
	})

	return r
}
