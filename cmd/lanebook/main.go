package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lanebook/internal/api"
	"lanebook/internal/config"
	"lanebook/internal/gateway"
	"lanebook/internal/metrics"
	"lanebook/internal/timeline"
)

func main() {
	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	configPath, err := resolveConfigPath()
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load environment")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootstrap.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}

	logger := newLogger(cfg)
	logger.Info().Str("venue", cfg.Venue.String()).Msg("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.BackendTimeout(), cfg.Venue.Location())
	client.UseLogger(logger)
	client.UseRateLimit(cfg.BackendRate())

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.Backend.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	svc := timeline.NewService(client, timeline.SettingsFromVenue(&cfg.Venue), &logger)

	// Venue settings follow the config file; everything else needs a restart.
	if err := config.Watch(ctx, configPath, 30*time.Second, func(updated *config.Config) {
		svc.UpdateSettings(timeline.SettingsFromVenue(&updated.Venue))
		metrics.IncConfigReload(true)
		logger.Info().Time("reloaded_at", time.Now()).Str("venue", updated.Venue.String()).Msg("venue settings reloaded")
	}, func(err error) {
		metrics.IncConfigReload(false)
		logger.Error().Err(err).Msg("config reload rejected")
	}); err != nil {
		logger.Error().Err(err).Msg("config watch failed")
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, client, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewHTTPServer(cfg.Server.Addr, cfg.ReadTimeout(), svc, cfg.Admin.APIKey, &logger)
	if cfg.Admin.APIKey == "" {
		logger.Warn().Msg("admin.api_key is empty; admin routes are unauthenticated")
	}

	logger.Info().Msg("lanebook started")
	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
	logger.Info().Msg("lanebook stopped")
}

// resolveConfigPath loads .env (or the given files) first so that
// LANEBOOK_CONFIG_PATH may be set there.
func resolveConfigPath(envFiles ...string) (string, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("load .env: %w", err)
	}
	if p := os.Getenv("LANEBOOK_CONFIG_PATH"); p != "" {
		return p, nil
	}
	return config.DefaultPath, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Logging.Console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func startHealthServer(ctx context.Context, port int, client *gateway.Client, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.HealthCheck(ctxPing); err != nil {
			http.Error(w, "backend not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
