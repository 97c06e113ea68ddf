// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rsvpkit/rsvpd/internal/admission"
	"github.com/rsvpkit/rsvpd/internal/database"
	"github.com/rsvpkit/rsvpd/internal/handler"
	"github.com/rsvpkit/rsvpd/internal/repository"
	"github.com/rsvpkit/rsvpd/internal/service"
)

type serverConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		return fmt.Errorf("parse server env: %w", err)
	}
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		return err
	}

	pool, err := database.NewPool(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	slog.Info("connected to postgres", "host", dbCfg.Host, "db", dbCfg.DBName)

	// Wire up layers.
	events := repository.NewPostgresEventStore(pool)
	ledger := repository.NewPostgresRsvpLedger(pool)
	controller := admission.NewController(events, ledger)
	eventSvc := service.NewEventService(events, ledger, controller)
	querySvc := service.NewQueryService(events, ledger)
	eventHandler := handler.NewEventHandler(eventSvc, querySvc)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger)
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)
	r.Mount("/events", eventHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + srvCfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", srvCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
