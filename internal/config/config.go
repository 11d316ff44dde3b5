// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration. With no database or brokers
// configured the server runs fully in-process (memory store, channel hub),
// which is what tests and local development use.
type Config struct {
	Addr           string        `env:"LEDGER_ADDR" envDefault:":8080"`
	DatabaseURL    string        `env:"LEDGER_DATABASE_URL"`
	KafkaBrokers   []string      `env:"LEDGER_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string        `env:"LEDGER_KAFKA_TOPIC" envDefault:"transactions"`
	JWTSecret      string        `env:"LEDGER_JWT_SECRET,required"`
	CallTimeout    time.Duration `env:"LEDGER_CALL_TIMEOUT" envDefault:"5s"`
	MetricsEnabled bool          `env:"LEDGER_METRICS" envDefault:"true"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
