package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/profile-sync/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRateLimit is applied to /api routes when none is configured
	DefaultRateLimit = "20-S"

	rateLimitKeyPrefix = "profile_sync_limiter"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRateLimitStore returns a Redis-backed limiter store shared by all
// replicas, or a process-local one when redisClient is nil.
func NewRateLimitStore(redisClient *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: rateLimitKeyPrefix, CleanUpInterval: limiter.DefaultCleanUpInterval}
	if redisClient == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per client IP using a ulule/limiter formatted
// rate such as "20-S" or "1000-H". When the store is unreachable requests are
// let through and the failure is logged.
func RateLimit(store limiter.Store, rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	instance := limiter.New(store, parsed)

	return func(next http.Handler) http.Handler {
		mw := stdlibmw.NewMiddleware(instance,
			stdlibmw.WithKeyGetter(request.ClientIP),
			stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "1")
				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded", logger)
			}),
			stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Warn("rate_limit_store_failed",
					zap.Error(err),
					zap.String("request_id", request.RequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
			}),
		)
		return mw.Handler(next)
	}, nil
}
