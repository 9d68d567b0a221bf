package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/courtside/internal/config"
	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/live"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/jmoiron/sqlx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(cfg.AllowedOrigins)
	go hub.Run(ctx)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(newApplication(database, hub, cfg.AllowedOrigins)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func newApplication(database *sqlx.DB, hub *live.Hub, allowedOrigins []string) *application {
	tournamentStore := store.NewTournamentStore(database)
	matchStore := store.NewMatchStore(database)

	tournaments := service.NewTournamentService(database, tournamentStore, matchStore, hub, nil)
	matches := service.NewMatchService(database, matchStore, tournaments, hub)

	return &application{
		tournaments:    tournaments,
		matches:        matches,
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
}
