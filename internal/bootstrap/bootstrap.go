package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/realmgate/internal/config"
	"github.com/go-authgate/realmgate/internal/metrics"
	"github.com/go-authgate/realmgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	RateLimitRedisClient *redis.Client

	// Business and HTTP layers
	Services   serviceSet
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the server, blocking until a shutdown signal
// has been handled.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Phase 4: Start server with graceful shutdown
	app.startWithGracefulShutdown()
	return nil
}

// New builds the application without starting the server.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	app := &Application{Config: cfg, Logger: logger}

	// Phase 1: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return nil, err
	}

	// Phase 2: Initialize business layer
	app.Services = initializeServices(app.Config, app.DB, app.MetricsRecorder)

	// Phase 3: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// initializeInfrastructure sets up database, metrics and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config, app.Logger)
	if err != nil {
		_ = app.DB.Close()
		return err
	}

	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(app.Config, app.Services, app.MetricsRecorder)

	router, err := setupRouter(
		app.Config,
		app.Logger,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}
	app.Router = router

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// Close releases infrastructure held by an application that was built but
// never started.
func (app *Application) Close() {
	if app.RateLimitRedisClient != nil {
		_ = app.RateLimitRedisClient.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Config, app.Logger)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient, app.Logger)
	addDatabaseShutdownJob(m, app.DB, app.Logger)

	// Wait for graceful shutdown
	<-m.Done()
}
