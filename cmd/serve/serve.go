// Package serve implements the serve subcommand running the web server
package serve

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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/api"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/logging"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/observability"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/seed"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve subcommand
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the WellAtlas web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServer(cmd.Context(), settings)
		},
	}
}

// RunServer opens the record store, seeds demonstration data when the store
// is empty, and serves the API until interrupted.
func RunServer(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("server")
	if logger == nil {
		logger = slog.Default()
	}

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing record store", "error", err)
		}
	}()

	if err := seed.SeedIfEmpty(ctx, store); err != nil {
		return fmt.Errorf("seeding record store: %w", err)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	controller, err := api.New(e, store, settings, metrics)
	if err != nil {
		return fmt.Errorf("initializing API: %w", err)
	}
	defer controller.Shutdown()

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		logger.Info("starting web server", "addr", addr, "version", settings.Version)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("web server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
