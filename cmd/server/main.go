package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/profile-sync/internal/config"
	"github.com/benvon/profile-sync/internal/database"
	"github.com/benvon/profile-sync/internal/events"
	"github.com/benvon/profile-sync/internal/handlers"
	"github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/middleware"
	"github.com/benvon/profile-sync/internal/services/oidc"
	"github.com/benvon/profile-sync/internal/services/profile"
	"github.com/benvon/profile-sync/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("memory_store", cfg.UsesMemoryStore()),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx := context.Background()

	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.Options{
			ServiceVersion: version,
			Endpoint:       cfg.OTELEndpoint,
		})
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	checks := map[string]handlers.CheckFunc{}

	var store database.ProfileStore
	if cfg.UsesMemoryStore() {
		mem := database.NewMemoryProfileStore()
		store = mem
		checks["database"] = mem.Ping
		zapLogger.Warn("using_memory_profile_store")
	} else {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseURL, "up"); err != nil {
				zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
			}
			zapLogger.Info("database_migrated")
		}

		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		store = database.NewProfileRepository(db)
		checks["database"] = db.PingContext
		zapLogger.Info("connected_to_database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Warn("redis_not_configured_using_local_rate_limit")
	}

	limiterStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}

	profiles := profile.NewService(store, zapLogger)
	if cfg.RabbitMQURL != "" {
		broker, err := connectBroker(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := broker.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		profiles.WithPublisher(broker)
		checks["events"] = broker.HealthCheck
	}

	deps := routerDeps{
		cfg:          cfg,
		logger:       zapLogger,
		profiles:     profiles,
		limiterStore: limiterStore,
		checks:       checks,
		version:      handlers.VersionInfo{Version: version, Commit: commit, BuildDate: buildDate},
		tracing:      tracing,
	}

	if cfg.IdentityIssuer != "" {
		httpClient := &http.Client{Timeout: 10 * time.Second}
		jwksURL, err := oidc.ResolveJWKSURL(ctx, httpClient, cfg.IdentityIssuer, cfg.IdentityJWKSURL)
		if err != nil {
			zapLogger.Fatal("failed_to_resolve_jwks_url", zap.Error(err))
		}
		deps.verifier = oidc.NewVerifier(oidc.NewJWKSManager(httpClient, time.Hour), jwksURL, cfg.IdentityIssuer, cfg.IdentityAudience)
		if cfg.IdentityAPIURL != "" {
			deps.users = oidc.NewClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey, httpClient)
		}
		zapLogger.Info("identity_provider_configured",
			zap.String("issuer", cfg.IdentityIssuer),
			zap.String("jwks_url", jwksURL),
			zap.Bool("session_endpoint", deps.users != nil),
		)
	}

	handler, err := newRouter(deps)
	if err != nil {
		zapLogger.Fatal("failed_to_build_router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectBroker dials RabbitMQ with exponential backoff to ride out broker
// startup delays
func connectBroker(url string, zapLogger *zap.Logger) (*events.RabbitMQBroker, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		broker, err := events.NewRabbitMQBroker(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return broker, nil
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}
