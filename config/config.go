// Package config loads the cbs configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel   string `env:"CBS_LOG_LEVEL" envDefault:"info"`
	LotsFile   string `env:"CBS_LOTS_FILE" envDefault:"lots.jsonl"`
	MarketFile string `env:"CBS_MARKET_FILE" envDefault:"market.jsonl"`
	SnapshotDB string `env:"CBS_SNAPSHOT_DB" envDefault:"snapshots.db"`
	// Parallelism bounds the number of symbols summarized at once, 0 is unbounded.
	Parallelism int `env:"CBS_PARALLELISM" envDefault:"0"`
}

// Load reads the configuration from the environment, after loading the
// optional dotenv files (".env" by default).
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		_ = godotenv.Load(f) // missing files are fine
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	if cfg.Parallelism < 0 {
		return nil, fmt.Errorf("invalid CBS_PARALLELISM %d", cfg.Parallelism)
	}
	return cfg, nil
}
