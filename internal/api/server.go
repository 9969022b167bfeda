package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/minitex/ipregister/internal/api/handler"
	mw "github.com/minitex/ipregister/internal/api/middleware"
	"github.com/minitex/ipregister/internal/config"
	"github.com/minitex/ipregister/internal/core"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, mailer core.Mailer, exporter core.Exporter, cfg *config.Config) *Server {
	services := core.NewServices(pool, mailer, exporter, cfg.OperatorBCC)

	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		pool:     pool,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Actor)

		// Registrars
		registrar := handler.NewRegistrar(s.services.Registrar)
		r.Get("/registrars", registrar.List)
		r.Post("/registrars", registrar.Create)
		r.Get("/registrars/{id}", registrar.Get)
		r.Put("/registrars/{id}", registrar.Update)
		r.Delete("/registrars/{id}", registrar.Delete)

		// Ranges
		ipRange := handler.NewIpRange(s.services.Range, s.services.Registrar)
		r.Get("/organizations/{orgID}/ranges", ipRange.ListByOrganization)
		r.Post("/organizations/{orgID}/ranges", ipRange.Create)
		r.Get("/ranges/{id}", ipRange.Get)
		r.Delete("/ranges/{id}", ipRange.Delete)

		// Changes
		ipChange := handler.NewIpChange(s.services.Change)
		r.Get("/organizations/{orgID}/changes", ipChange.ListByOrganization)
		r.Post("/organizations/{orgID}/changes", ipChange.Create)
		r.Get("/changes/{id}", ipChange.Get)
		r.Put("/changes/{id}", ipChange.Save)
		r.Get("/changes/{id}/action-table", ipChange.ActionTable)
		r.Get("/changes/{id}/preview", ipChange.Preview)
		r.Post("/changes/{id}/complete", ipChange.Complete)
		r.Delete("/changes/{id}", ipChange.Abandon)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
