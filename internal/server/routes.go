package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediumgate/internal/handlers"
	"mediumgate/pkg/classifier"
	"mediumgate/pkg/db"
	"mediumgate/pkg/fetcher"
)

// RegisterRoutes registers all application routes. The database and
// registry may be nil; history, preferences, and metrics endpoints are
// only mounted when their backend exists.
func (s *Server) RegisterRoutes(engine *classifier.Engine, database *db.DB, registry *prometheus.Registry) {
	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(database)
	detectHandler := handlers.NewDetectHandler(engine, fetcher.NewFetcher(s.Cfg.Fetch), database, s.Cfg)
	domainHandler := handlers.NewDomainHandler(engine)
	redirectHandler := handlers.NewRedirectHandler(engine, database, s.Cfg)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	if registry != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// Detection API
	s.App.Get("/api/detect", detectHandler.Detect)
	s.App.Get("/api/domains/check", domainHandler.Check)

	// History and preferences need the store
	if database != nil {
		historyHandler := handlers.NewHistoryHandler(database)
		prefsHandler := handlers.NewPrefsHandler(database)

		s.App.Get("/api/history", historyHandler.List)
		s.App.Get("/api/history/stats", historyHandler.Stats)
		s.App.Get("/api/prefs", prefsHandler.Get)
		s.App.Put("/api/prefs", prefsHandler.Update)
	}

	// Redirect surface
	s.App.Get("/r", redirectHandler.Redirect)
}
