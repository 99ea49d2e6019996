package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"gatehouse/internal/auth"
	githubprovider "gatehouse/internal/auth/providers/github"
	googleprovider "gatehouse/internal/auth/providers/google"
	"gatehouse/internal/config"
	transporthttp "gatehouse/internal/http"
	"gatehouse/internal/platform/database"
	"gatehouse/internal/platform/logging"
	"gatehouse/internal/platform/migrate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	repo, cleanup, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize oauth providers", "error", err)
		os.Exit(1)
	}
	if len(providers) == 0 {
		logger.Warn("no OAuth providers configured; login routes will answer 404")
	}

	engine := auth.NewEngine(repo, auth.Config{
		Providers:            providers,
		InsecureCookies:      cfg.IsDevelopment(),
		BasePath:             cfg.BasePath,
		SessionLifetime:      cfg.SessionLifetime,
		SessionIdleThreshold: cfg.SessionIdleThreshold,
	})
	router := transporthttp.NewRouter(cfg, engine, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Gatehouse API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.Repository, func(), error) {
	switch cfg.DataStore {
	case "postgres":
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			_ = db.Close()
		}
		if err := migrate.Apply(ctx, db, logger); err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info("connected to postgres")
		return auth.NewPostgresRepository(db), cleanup, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info("connected to redis")
		return auth.NewRedisRepository(client), func() { _ = client.Close() }, nil

	default:
		logger.Info("using in-memory repository")
		return auth.NewInMemoryRepository(), nil, nil
	}
}

func buildProviders(ctx context.Context, cfg config.Config) ([]auth.Provider, error) {
	var providers []auth.Provider

	if cfg.HasGitHubOAuth() {
		providers = append(providers, githubprovider.New(cfg.GitHubClientID, cfg.GitHubClientSecret))
	}

	if cfg.HasGoogleOAuth() {
		redirectURL, err := url.JoinPath(cfg.BaseURL, cfg.BasePath, "login/google/callback")
		if err != nil {
			return nil, err
		}
		google, err := googleprovider.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, redirectURL)
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	}

	return providers, nil
}
