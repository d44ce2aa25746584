package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitMessage = "Too many requests. Please try again later."

// RateLimitConfig holds the configuration for rate limiting with store support
type RateLimitConfig struct {
	// Rate limit settings
	RequestsPerMinute int           // Number of requests allowed per minute
	CleanupInterval   time.Duration // How often to cleanup expired counters

	// Store settings
	StoreType string // config.RateLimitStoreMemory or config.RateLimitStoreRedis
	Prefix    string // key prefix, distinguishes limiters sharing one store

	// RedisClient is shared with the rest of the process; only used when
	// StoreType is redis. The caller owns its lifecycle.
	RedisClient *redis.Client
}

// NewRateLimiter creates a per-client-IP rate limiter with configurable store backend
func NewRateLimiter(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}

	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(cfg.RequestsPerMinute),
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	var store limiter.Store
	switch cfg.StoreType {
	case config.RateLimitStoreRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("redis rate limit store requires a redis client")
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(cfg.RedisClient, limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cfg.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}

	case config.RateLimitStoreMemory, "":
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cfg.CleanupInterval,
		})

	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.StoreType)
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(limitReached),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Fail open: a broken limiter store must not take login down.
			zap.L().Warn("rate limiter store error", zap.Error(err))
			c.Next()
		}),
	), nil
}

func limitReached(c *gin.Context) {
	zap.L().Info("rate limit exceeded",
		zap.String("path", c.FullPath()),
		zap.String("client_ip", c.ClientIP()),
	)
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		templates.RenderTempl(c, http.StatusTooManyRequests, templates.ErrorPage(templates.ErrorPageProps{
			Title:   "Rate Limit Exceeded",
			Message: rateLimitMessage,
		}))
	} else {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitMessage})
	}
	c.Abort()
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         config.RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}
