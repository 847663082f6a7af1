// Package cli implements the matchgrid operator command line: batch
// matching runs, heatmap exports and schema migrations, all talking
// directly to the configured infrastructure.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhaven/matchgrid/internal/application/heatmap"
	"github.com/openhaven/matchgrid/internal/application/matching"
	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/postgres"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/postgres/repositories"
	"github.com/openhaven/matchgrid/internal/infrastructure/database/redis"
	"github.com/openhaven/matchgrid/internal/infrastructure/messaging/kafka"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/intelligence/embedding"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the matchgrid command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "matchgrid",
		Short:         "Demand-supply matching and geospatial aggregation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (env-only when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newMatchCommand(opts),
		newHeatmapCommand(opts),
		newMigrateCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "matchgrid %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(cfg.Log)
}

// runtime bundles the wired services a CLI command works with.
type runtime struct {
	cfg        *config.Config
	logger     logging.Logger
	applicants applicant.Repository
	projects   project.Repository
	matching   *matching.Service
	heatmap    *heatmap.Service

	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime wires the repositories and services for one command
// invocation.
func buildRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, conn.Close)

	pool := conn.Pool()
	applicants := repositories.NewApplicantRepository(pool, logger)
	projects := repositories.NewProjectRepository(pool, logger)
	matches := repositories.NewMatchRepository(pool, logger)
	rt.applicants = applicants
	rt.projects = projects

	provider := embedding.NewHTTPProvider(cfg.Embedding, logger)
	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, embedding cache disabled", logging.Err(err))
		} else {
			rt.closers = append(rt.closers, func() { _ = rc.Close() })
			cache := redis.NewCache(rc, "matchgrid", cfg.Redis.DefaultTTL)
			provider = embedding.NewCachedProvider(provider, cache, cfg.Embedding.CacheTTL, logger, nil)
		}
	}

	var publisher matching.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		rt.closers = append(rt.closers, func() { _ = producer.Close() })
		publisher = producer
	}

	rt.matching = matching.NewService(
		matches, provider, publisher, cfg.Matching,
		cfg.Worker.Concurrency, logger, nil,
	)
	rt.heatmap = heatmap.NewService(applicants, projects, cfg.Heatmap, logger, nil)
	return rt, nil
}
