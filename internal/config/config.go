// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), then maps environment
// variables onto the Config struct via go-simpler/env struct tags.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	Neo4jURI      string `env:"NEO4J_URI"`
	Neo4jUsername string `env:"NEO4J_USERNAME"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`
	RedisURL      string `env:"REDIS_URL"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// DatasetTTL bounds backing-store load: repeated dataset requests within
	// the window reuse the memoized result.
	DatasetTTL time.Duration `env:"DATASET_TTL" default:"120s"`

	// ExportName is the filename (with .csv suffix) the CSV dump is served under.
	ExportName string `env:"EXPORT_NAME" default:"mbcc-2018-dump-jonpacker.csv"`

	MaxWebSocketClients int `env:"MAX_WS_CLIENTS" default:"500"`

	// DatasetFile, when set, serves the menu from a local JSON dump instead
	// of querying Neo4j. DatasetPersist writes the fetched dataset to that
	// path at startup.
	DatasetFile    string `env:"DATASET_FILE"`
	DatasetPersist bool   `env:"DATASET_PERSIST" default:"false"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	// Neo4j is only optional when serving the menu from a disk dump.
	if cfg.DatasetFile == "" && cfg.DatasetPersist {
		return fmt.Errorf("DATASET_PERSIST requires DATASET_FILE")
	}
	if cfg.Neo4jURI == "" && (cfg.DatasetFile == "" || cfg.DatasetPersist) {
		return fmt.Errorf("NEO4J_URI is required unless DATASET_FILE is set")
	}
	if cfg.Neo4jURI != "" && cfg.Neo4jUsername == "" {
		return fmt.Errorf("NEO4J_USERNAME is required when NEO4J_URI is set")
	}

	if cfg.DatasetTTL <= 0 {
		return fmt.Errorf("DATASET_TTL must be positive")
	}

	if !strings.HasSuffix(cfg.ExportName, ".csv") {
		return fmt.Errorf("EXPORT_NAME must end in .csv")
	}
	if strings.Contains(cfg.ExportName, "/") {
		return fmt.Errorf("EXPORT_NAME must be a bare filename")
	}

	if cfg.MaxWebSocketClients <= 0 {
		return fmt.Errorf("MAX_WS_CLIENTS must be positive")
	}

	return nil
}
