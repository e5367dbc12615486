package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/juju/clock"

	"github.com/danielhkuo/smartgarden/cliparse"
	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/middleware"
	"github.com/danielhkuo/smartgarden/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg cliparse.Config) error {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(startCtx); err != nil {
		return err
	}
	if err := db.Migrate(startCtx, conn, cfg.DatabaseType); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	mux, err := router.NewRouter(conn, cfg, clock.WallClock)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           middleware.CORS(cfg.CORSOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "auth_policy", cfg.AuthPolicy)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Server closed")
	return nil
}
