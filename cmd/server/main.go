// Package main is the entry point for the rowguard server binary. It loads
// configuration, opens the SQLite pair, runs migrations, wires the
// application, and serves the HTTP API until SIGTERM/SIGINT.
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

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"rowguard/internal/api"
	"rowguard/internal/app"
	"rowguard/internal/config"
	"rowguard/internal/db"
	"rowguard/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Open SQLite with hardened connection settings: a single-connection
	// write pool and a concurrent read pool over the same WAL file.
	writeDB, readDB, err := db.OpenPair(cfg.DBPath, 4)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := db.Migrate(writeDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:      cfg,
		WriteDB:  writeDB,
		ReadDB:   readDB,
		Logger:   logger,
		SeedDemo: !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	// Bearer verification: an OIDC issuer wins over the shared HS256 secret.
	// With neither configured, bearer tokens are rejected and only API keys
	// or anonymous requests reach the services.
	var validator middleware.TokenValidator
	switch {
	case cfg.Auth.IssuerURL != "":
		v, err := middleware.NewOIDCValidator(ctx, cfg.Auth.IssuerURL, cfg.Auth.Audience)
		if err != nil {
			return fmt.Errorf("oidc validator: %w", err)
		}
		validator = v
		logger.Info("bearer verification via OIDC", "issuer", cfg.Auth.IssuerURL)
	case cfg.Auth.JWTSecret != "":
		v, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
		if err != nil {
			return fmt.Errorf("hs256 validator: %w", err)
		}
		validator = v
		logger.Info("bearer verification via shared HS256 secret")
	}
	auth := middleware.NewAuthenticator(validator, a.APIKeyRepo, logger)

	router := api.NewRouter(api.RouterConfig{
		Handler: api.NewHandler(
			a.Services.Credential, a.Services.Team,
			a.Services.AuditQuery, a.Services.APIKey,
		),
		Auth: auth,
		Rate: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Logger:      logger,
		Metrics:     a.Metrics.Handler(),
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	if err := a.Replayer.Start(); err != nil {
		return fmt.Errorf("start audit replayer: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}

		// Stop scheduled replay first so nothing races the final drain.
		a.Replayer.Stop()
		if err := a.AuditLogger.Close(shutdownCtx); err != nil {
			logger.Error("audit queue drain", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
