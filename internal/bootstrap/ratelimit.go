package bootstrap

import (
	"fmt"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login gin.HandlerFunc
	token gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	logger *zap.Logger,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		logger.Info("rate limiting disabled")
		return rateLimitMiddlewares{login: noOpMiddleware, token: noOpMiddleware}, nil
	}

	logger.Info("rate limiting enabled",
		zap.String("store", cfg.RateLimitStore),
		zap.Int("login_per_minute", cfg.LoginRateLimit),
		zap.Int("token_per_minute", cfg.TokenRateLimit),
	)

	createLimiter := func(requestsPerMinute int, endpoint string) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         cfg.RateLimitStore,
			Prefix:            "realmgate:ratelimit:" + endpoint,
			RedisClient:       redisClient, // nil for memory store
			CleanupInterval:   cfg.RateLimitCleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter, nil
	}

	login, err := createLimiter(cfg.LoginRateLimit, "authorize")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	token, err := createLimiter(cfg.TokenRateLimit, "token")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	return rateLimitMiddlewares{login: login, token: token}, nil
}
