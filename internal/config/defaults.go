package config

import "time"

// Default value constants.  Matching defaults mirror the scoring contract:
// a 0.3 hard filter with a 0.7 similarity / 0.3 compatibility blend.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBUser        = "matchgrid"
	DefaultDBName        = "matchgrid"
	DefaultDBSSLMode     = "disable"
	DefaultDBMaxConns    = 25
	DefaultMigrationPath = "file://migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "matchgrid"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaTopicPrefix = "matchgrid"

	DefaultEmbeddingModel      = "text-embedding-ada-002"
	DefaultEmbeddingDimensions = 1536
	DefaultEmbeddingTimeout    = 10 * time.Second
	DefaultEmbeddingCacheTTL   = 24 * time.Hour

	DefaultHardFilterThreshold = 0.3
	DefaultSimilarityWeight    = 0.7
	DefaultCompatibilityWeight = 0.3
	DefaultAlgorithmVersion    = "v1"

	DefaultMinCellSizeMeters = 100
	DefaultMaxCellSizeMeters = 10_000

	DefaultWorkerConcurrency = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// NewDefaultConfig returns a Config populated entirely with defaults,
// suitable for local development or as a fallback when no config file is
// present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must be called after unmarshalling and
// before Validate so that optional-but-defaulted fields are never seen as
// missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = DefaultEmbeddingDimensions
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = DefaultEmbeddingTimeout
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = DefaultEmbeddingCacheTTL
	}

	if cfg.Matching.HardFilterThreshold == 0 {
		cfg.Matching.HardFilterThreshold = DefaultHardFilterThreshold
	}
	if cfg.Matching.SimilarityWeight == 0 {
		cfg.Matching.SimilarityWeight = DefaultSimilarityWeight
	}
	if cfg.Matching.CompatibilityWeight == 0 {
		cfg.Matching.CompatibilityWeight = DefaultCompatibilityWeight
	}
	if cfg.Matching.AlgorithmVersion == "" {
		cfg.Matching.AlgorithmVersion = DefaultAlgorithmVersion
	}

	if cfg.Heatmap.MinCellSizeMeters == 0 {
		cfg.Heatmap.MinCellSizeMeters = DefaultMinCellSizeMeters
	}
	if cfg.Heatmap.MaxCellSizeMeters == 0 {
		cfg.Heatmap.MaxCellSizeMeters = DefaultMaxCellSizeMeters
	}

	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
