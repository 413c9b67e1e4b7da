// Package main is the entrypoint for the SwiftSlot API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/cache"
	"github.com/swiftslot/swiftslot/internal/config"
	"github.com/swiftslot/swiftslot/internal/events"
	"github.com/swiftslot/swiftslot/internal/handler"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/middleware"
	"github.com/swiftslot/swiftslot/internal/repository"
	"github.com/swiftslot/swiftslot/internal/server"
	"github.com/swiftslot/swiftslot/internal/service"
)

func main() {
	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Token issuer and credential vault
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiration)
	if err != nil {
		logger.Error("failed to initialize token issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	vault := auth.NewVault(cfg.BcryptCost)

	metricsRecorder := metrics.NewInMemory()

	// Identity event pipeline
	var (
		eventSink service.EventSink = service.NoopSink{}
		publisher *events.Publisher
		worker    *events.Worker
	)
	if cfg.EventsEnabled {
		publisher = events.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
		eventSink = publisher
		worker = events.NewWorker(
			cacheClient.Client(),
			repository.NewIdentityEventRepository(repo),
			logger,
			events.NewConsumerID(),
			metricsRecorder,
		)
		worker.SetBatchSize(cfg.EventsBatch)
		worker.SetClaimIdle(cfg.EventsIdle)
	}

	// Initialize services
	identityService := service.NewIdentityService(repo, vault, tokens, eventSink, metricsRecorder, logger)
	orgService := service.NewOrganizationService(repo, cacheClient, cfg.OrgCacheTTL, metricsRecorder, logger)
	customerService := service.NewCustomerService(repo, metricsRecorder)

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Logger:        logger,
		Tokens:        tokens,
		Identity:      identityService,
		Organizations: orgService,
		Customers:     customerService,
		Events:        eventSink,
		Metrics:       metricsRecorder,
		Snapshotter:   metricsRecorder,
		DB:            repo,
		Cache:         cacheClient,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS: corsConfig(cfg),
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if worker != nil {
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error("identity event worker stopped", slog.String("error", err.Error()))
			}
		}()
		// Registered first so it stops last, after the publisher drains.
		srv.OnShutdown("identity-event-worker", worker.Shutdown)
		srv.OnShutdown("identity-event-publisher", publisher.Flush)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"events_enabled", cfg.EventsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	return c
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
