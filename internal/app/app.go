package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/egomobility/vehicle-signals/internal/bootstrap"
	"github.com/egomobility/vehicle-signals/internal/config"
	"github.com/egomobility/vehicle-signals/internal/server"
	"github.com/egomobility/vehicle-signals/pkg/cache"
	"github.com/egomobility/vehicle-signals/pkg/signal"
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	cache             *cache.VehicleCache
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order: Redis, store, signal
// registry, snapshot cache, vehicle seed, servers, telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	client, err := store.InitRedisClient(ctx, store.RedisOptions{
		Addr:       cfg.RedisAddr(),
		Password:   cfg.RedisPassword,
		MaxRetries: cfg.RedisMaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	app.redisClient = client

	st := store.NewRedisStore(client)
	registry := signal.DefaultRegistry()
	logrus.Infof("signal registry initialized with %d signals", registry.Count())

	app.cache = cache.New()

	if cfg.SeedPath != "" {
		seed, err := bootstrap.LoadSeed(cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load vehicle seed: %w", err)
		}
		if err := bootstrap.Seed(ctx, st, seed); err != nil {
			return nil, fmt.Errorf("failed to seed vehicles: %w", err)
		}
	}

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, cfg.ServiceName, st, registry, app.cache)

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}
