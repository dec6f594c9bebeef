package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/handlers/report"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	atlasmiddleware "github.com/de-tools/traffic-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Generator report.Generator
	Logger    zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// AuthToken is the bearer token callers must present on /api routes.
	AuthToken      string
	Credentials    domain.Credentials
	RequireAccount bool
	Dependencies   Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	reportHandler := report.NewHandler(
		config.Dependencies.Generator,
		config.Credentials,
		config.RequireAccount,
	)
	logger := config.Dependencies.Logger

	router := chi.NewRouter()

	router.Use(atlasmiddleware.RequestID)
	router.Use(atlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", report.Health)

	router.Group(func(r chi.Router) {
		r.Use(atlasmiddleware.BearerAuth(config.AuthToken))

		r.Get("/api/report", reportHandler.GetReport)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/report", reportHandler.GetReport)
			r.Get("/zones", reportHandler.ListZones)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	logger := config.Dependencies.Logger
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           ConfigureRouter(config),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
