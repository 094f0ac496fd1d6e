// Package config centralises configuration parsing for the octofit binaries.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends understood by store.Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config captures runtime configuration values shared by every binary.
type Config struct {
	HTTPAddress    string `env:"HTTP_ADDRESS" envDefault:":8000"`
	MetricsAddress string `env:"METRICS_ADDRESS" envDefault:":9190"`

	StoreBackend     string `env:"STORE_BACKEND" envDefault:"memory"`
	PostgresURL      string `env:"POSTGRES_URL"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MongoURI         string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase    string `env:"MONGO_DATABASE" envDefault:"octofit_db"`

	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envSeparator:","`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"25"`
	ConsumerGroupID    string        `env:"CONSUMER_GROUP_ID" envDefault:"octofit-event-log"`
	ConsumerTopics     []string      `env:"CONSUMER_TOPICS" envSeparator:"," envDefault:"octofit_activities,octofit_leaderboard"`

	LeaderboardRebuildInterval time.Duration `env:"LEADERBOARD_REBUILD_INTERVAL" envDefault:"0s"`
	SeedTimeout                time.Duration `env:"SEED_TIMEOUT" envDefault:"1m"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimitRequests  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)
	cfg.ConsumerTopics = trimAll(cfg.ConsumerTopics)
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the binaries cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresURL) == "" {
			return errors.New("POSTGRES_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.OutboxBatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be > 0")
	}
	if c.LeaderboardRebuildInterval < 0 {
		return errors.New("LEADERBOARD_REBUILD_INTERVAL must not be negative")
	}
	return nil
}

// OutboxEnabled reports whether domain events can be shipped to Kafka.
func (c Config) OutboxEnabled() bool {
	return c.StoreBackend == BackendPostgres && len(c.KafkaBrokers) > 0
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
