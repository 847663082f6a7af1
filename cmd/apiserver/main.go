// API server entry point for matchgrid.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appheatmap "github.com/openhaven/matchgrid/internal/application/heatmap"
	appmatching "github.com/openhaven/matchgrid/internal/application/matching"
	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/postgres"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/postgres/repositories"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/redis"
	"github.com/openhaven/matchgrid/internal/infrastructure/messaging/kafka"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/prometheus"
	"github.com/openhaven/matchgrid/internal/intelligence/embedding"
	httpserver "github.com/openhaven/matchgrid/internal/interfaces/http"
	"github.com/openhaven/matchgrid/internal/interfaces/http/handlers"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (env-only when empty)")
	httpPort := flag.Int("port", 0, "HTTP port override")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger.Info("starting matchgrid api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.DSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return err
		}
		logger.Info("database schema up to date")
	}

	pool := conn.Pool()
	applicants := repositories.NewApplicantRepository(pool, logger)
	projects := repositories.NewProjectRepository(pool, logger)
	matches := repositories.NewMatchRepository(pool, logger)

	metrics := prometheus.NewMetrics()

	// Embedding provider, optionally redis-cached
	provider := embedding.NewHTTPProvider(cfg.Embedding, logger)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, embedding cache disabled", logging.Err(err))
		} else {
			defer redisClient.Close()
			cache := redis.NewCache(redisClient, "matchgrid", cfg.Redis.DefaultTTL)
			provider = embedding.NewCachedProvider(provider, cache, cfg.Embedding.CacheTTL, logger, metrics)
		}
	}

	// Kafka events
	var publisher appmatching.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		publisher = producer
	}

	matchingService := appmatching.NewService(
		matches, provider, publisher, cfg.Matching,
		cfg.Worker.Concurrency, logger, metrics,
	)
	heatmapService := appheatmap.NewService(applicants, projects, cfg.Heatmap, logger, metrics)

	checkers := []handlers.HealthChecker{poolChecker{pool: pool}}
	if redisClient != nil {
		checkers = append(checkers, redisChecker{client: redisClient})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		MatchHandler:   handlers.NewMatchHandler(matchingService, applicants, projects, matches, logger),
		HeatmapHandler: handlers.NewHeatmapHandler(heatmapService, logger),
		HealthHandler:  handlers.NewHealthHandler(version, checkers...),
		Logger:         logger,
		Metrics:        metrics,
		Mode:           cfg.Server.Mode,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
