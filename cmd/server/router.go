package main

import (
	"net/http"
	"time"

	"github.com/benvon/profile-sync/internal/config"
	"github.com/benvon/profile-sync/internal/handlers"
	"github.com/benvon/profile-sync/internal/middleware"
	"github.com/benvon/profile-sync/internal/services/oidc"
	"github.com/benvon/profile-sync/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// routerDeps carries everything the HTTP layer needs. Identity fields are
// nil when no identity provider is configured.
type routerDeps struct {
	cfg          *config.Config
	logger       *zap.Logger
	profiles     handlers.ProfileService
	verifier     oidc.TokenVerifier
	users        oidc.UserFetcher
	limiterStore limiter.Store
	checks       map[string]handlers.CheckFunc
	version      handlers.VersionInfo
	tracing      bool
}

// newRouter builds the router with the full middleware chain
func newRouter(deps routerDeps) (http.Handler, error) {
	cfg, log := deps.cfg, deps.logger

	rateLimitMW, err := middleware.RateLimit(deps.limiterStore, cfg.RateLimit, log)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered outermost
	if deps.tracing {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins:   middleware.ParseOrigins(cfg.CORSAllowedOrigins),
		AllowCredentials: true,
	}, log))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, map[string]int64{
		"/api/users/sync": middleware.ProfileSyncMaxRequestSize,
	}, log))
	r.Use(middleware.ContentType(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.Audit(log))
	r.Use(middleware.Logging(log))

	// Public routes, not rate limited
	healthChecker := handlers.NewHealthChecker(deps.checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionHandler(deps.version)).Methods("GET")
	handlers.NewOpenAPIHandler().RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitMW)

	usersRouter := apiRouter.PathPrefix("/users").Subrouter()
	if cfg.AuthRequired {
		usersRouter.Use(middleware.RequireBearer(deps.verifier, log))
	}
	handlers.NewProfileHandler(deps.profiles, cfg.AuthRequired, log).RegisterRoutes(usersRouter)

	if deps.verifier != nil && deps.users != nil {
		authRouter := apiRouter.PathPrefix("/auth").Subrouter()
		handlers.NewSessionHandler(deps.verifier, deps.users, deps.profiles, log).RegisterRoutes(authRouter)
	}

	// Preflight requests need a matching route for the middleware chain to run
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r, nil
}
