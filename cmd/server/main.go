// Command server is the entrypoint of the product transparency backend.
//
// It loads configuration from the environment (with optional .env support),
// configures structured logging and OpenTelemetry tracing, selects the
// persistence backend (SQLite when DB_PATH is set, in-memory otherwise),
// wires the HTTP router, and runs the server with graceful shutdown.
//
// @title        Product Transparency API
// @version      1.0
// @description  Backend for AI-assisted product transparency analysis: product intake, follow-up question generation, transparency scoring, and PDF report rendition.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-transparency-backend/internal/ai"
	"github.com/tbourn/go-transparency-backend/internal/config"
	httpapi "github.com/tbourn/go-transparency-backend/internal/http"
	"github.com/tbourn/go-transparency-backend/internal/observability"
	"github.com/tbourn/go-transparency-backend/internal/pdf"
	"github.com/tbourn/go-transparency-backend/internal/repo"
	"github.com/tbourn/go-transparency-backend/internal/store"
	"github.com/tbourn/go-transparency-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging: structured JSON by default, pretty console when requested.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing (no-op unless OTEL_ENABLED).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Persistence backend: SQLite when DB_PATH is set, memory otherwise.
	var st store.Store
	if cfg.DBPath != "" {
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database failed")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		st = store.NewGormStore(db)
		log.Info().Str("db_path", cfg.DBPath).Msg("using sqlite store")
	} else {
		st = store.NewMemoryStore()
		log.Warn().Msg("DB_PATH empty, using in-memory store (data is lost on restart)")
	}

	renderer, err := pdf.NewRenderer(cfg.ReportsDir)
	if err != nil {
		log.Fatal().Err(err).Str("reports_dir", cfg.ReportsDir).Msg("reports dir setup failed")
	}

	aiClient := ai.NewClient(cfg.Gemini)
	if !aiClient.Enabled() {
		log.Warn().Msg("GEMINI_API_KEY not set: question generation serves static fallback, scoring is unavailable")
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, st, aiClient, renderer, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
