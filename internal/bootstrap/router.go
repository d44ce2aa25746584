package bootstrap

import (
	"net/http"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/handlers"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/middleware"
	"github.com/go-authgate/realmgate/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *store.Store,
	h handlerSet,
	prometheusMetrics metrics.Recorder,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	// Health check endpoint
	r.GET("/health", handlers.Health(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg, logger)

	// Setup rate limiting
	rateLimiters, err := setupRateLimiting(cfg, logger, rateLimitRedisClient)
	if err != nil {
		return nil, err
	}

	setupRealmRoutes(r, h, rateLimiters)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	logger.Info("router configured",
		zap.String("bind_address", cfg.BindAddress),
		zap.String("issuer_base_url", cfg.IssuerBaseURL),
	)
	return r, nil
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Info("prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Info("prometheus metrics enabled at /metrics with bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Info("prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupRealmRoutes configures the per-realm protocol endpoints
func setupRealmRoutes(r *gin.Engine, h handlerSet, rateLimiters rateLimitMiddlewares) {
	realm := r.Group("/realms/:realm")
	{
		realm.GET("/.well-known/openid-configuration", h.oidc.Discovery)
		realm.GET("/jwks", h.oidc.JWKS)

		realm.GET("/authorize", h.authorization.Authorize)
		realm.POST("/authorize", rateLimiters.login, h.authorization.Login)
		realm.POST("/token", rateLimiters.token, h.token.Token)

		realm.GET("/userinfo", h.oidc.UserInfo)
		realm.POST("/password", h.oidc.ChangePassword)
	}
}

// setupGinMode sets Gin mode from the log level
func setupGinMode(cfg *config.Config) {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}
