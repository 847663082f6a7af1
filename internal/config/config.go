// Package config defines all configuration structures for the matchgrid
// engine.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the embedding cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for match-run events.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	TopicPrefix     string   `mapstructure:"topic_prefix"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
	TimeoutMS       int      `mapstructure:"timeout_ms"`
}

// EmbeddingConfig holds text-embedding provider parameters.
type EmbeddingConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// MatchingConfig holds scoring tunables for the matching engine.
type MatchingConfig struct {
	// HardFilterThreshold excludes projects whose AMI compatibility falls
	// below it, regardless of similarity.
	HardFilterThreshold float64 `mapstructure:"hard_filter_threshold"`

	// SimilarityWeight and CompatibilityWeight blend the two component
	// scores; they must sum to 1.
	SimilarityWeight    float64 `mapstructure:"similarity_weight"`
	CompatibilityWeight float64 `mapstructure:"compatibility_weight"`

	// AlgorithmVersion tags every persisted match record.
	AlgorithmVersion string `mapstructure:"algorithm_version"`
}

// HeatmapConfig holds spatial aggregation tunables.
type HeatmapConfig struct {
	MinCellSizeMeters float64 `mapstructure:"min_cell_size_meters"`
	MaxCellSizeMeters float64 `mapstructure:"max_cell_size_meters"`
}

// WorkerConfig holds batch-matching execution parameters.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Config is the root configuration structure for the engine.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Heatmap   HeatmapConfig   `mapstructure:"heatmap"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker when kafka is enabled")
	}

	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("config: embedding.dimensions must be >= 1, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("config: embedding.timeout must be positive, got %s", c.Embedding.Timeout)
	}

	if c.Matching.HardFilterThreshold < 0 || c.Matching.HardFilterThreshold > 1 {
		return fmt.Errorf("config: matching.hard_filter_threshold %.3f is out of range [0, 1]", c.Matching.HardFilterThreshold)
	}
	weightSum := c.Matching.SimilarityWeight + c.Matching.CompatibilityWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("config: matching weights must sum to 1, got %.3f", weightSum)
	}

	if c.Heatmap.MinCellSizeMeters <= 0 {
		return fmt.Errorf("config: heatmap.min_cell_size_meters must be positive, got %.1f", c.Heatmap.MinCellSizeMeters)
	}
	if c.Heatmap.MaxCellSizeMeters < c.Heatmap.MinCellSizeMeters {
		return fmt.Errorf("config: heatmap.max_cell_size_meters %.1f is below min %.1f",
			c.Heatmap.MaxCellSizeMeters, c.Heatmap.MinCellSizeMeters)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	return nil
}
