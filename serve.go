package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/isdelr/cabinet-be/internal/api"
	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/config"
	"github.com/isdelr/cabinet-be/internal/monitoring"
	"github.com/isdelr/cabinet-be/internal/services"
	"github.com/isdelr/cabinet-be/internal/validation"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Apply pending migrations, then serve the JSON API under /api and the
front end from the static directory until interrupted.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	decoder, err := validation.New()
	if err != nil {
		return oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}

	sessions := newSessionStore(cfg, db)

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, auth.NewArgon2idHasher())
	recipeService := services.NewRecipeService(db, eventService)
	favoriteService := services.NewFavoriteService(db, recipeService, eventService)
	authorService := services.NewAuthorService(db, eventService)
	bookService := services.NewBookService(db, eventService)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitoring.RegisterMetrics(reg, sessions)

	sweeper, err := monitoring.NewSessionSweeper(sessions, cfg.SessionSweep)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("session.sweep", cfg.SessionSweep).Wrap(err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	router := api.NewRouter(api.Options{
		Users:             userService,
		Recipes:           recipeService,
		Favorites:         favoriteService,
		Authors:           authorService,
		Books:             bookService,
		Events:            eventService,
		Sessions:          sessions,
		Decoder:           decoder,
		Gatherer:          reg,
		Logger:            log.Logger,
		CORSOrigins:       cfg.CORSOrigins,
		StaticDir:         cfg.StaticDir,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		BodyLimit:         cfg.BodyLimit,
		SessionTTL:        cfg.SessionTTL,
		SecureCookies:     cfg.IsProduction(),
		TrustProxy:        cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Str("session_store", cfg.SessionStore).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return oops.Code("SERVER_FAILED").With("addr", srv.Addr).Wrap(err)
		}
		return nil
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

func newSessionStore(cfg *config.Config, db *sql.DB) auth.SessionStore {
	if cfg.SessionStore == config.SessionStoreSQL {
		return auth.NewSQLStore(db, cfg.SessionTTL)
	}
	return auth.NewMemoryStore(cfg.SessionTTL)
}
