package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/de-tools/repo-atlas/pkg/handlers/inventory"
	atlasmiddleware "github.com/de-tools/repo-atlas/pkg/server/middleware"
	"github.com/de-tools/repo-atlas/pkg/services/inventory"
	"github.com/de-tools/repo-atlas/pkg/services/workflow"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Explorer   inventory.Explorer
	Controller workflow.Controller
	Dashboard  handlers.DashboardProvider
	Rate       handlers.RateReporter
	Logger     zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	h := handlers.NewHandler(deps.Explorer, deps.Controller, deps.Dashboard, deps.Rate)

	router := chi.NewRouter()
	router.Use(atlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Post("/sync", h.StartSync)
		r.Get("/sync/report", h.SyncReport)
		r.Get("/repositories", h.ListRepositories)
		r.Get("/repositories/filters", h.ListFilters)
		r.Get("/repositories/{id}/ownership", h.RepositoryOwnership)
		r.Get("/teams", h.ListTeams)
		r.Get("/findings", h.ListFindings)
		r.Get("/findings/stats", h.FindingStats)
		r.Get("/compliance", h.ListCompliance)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)
	logger := config.Dependencies.Logger

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// Start serves until the listener fails, ctx is cancelled, or the process receives
// SIGINT/SIGTERM. Shutdown waits up to the configured timeout for open requests.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("context cancelled, shutting down")
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}
	return err
}
