// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the server reads at startup. Values come from
// the environment, with .env files loaded beforehand by the caller.
type Config struct {
	Host string `env:"CHESSROYALE_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"CHESSROYALE_PORT" envDefault:"8080"`

	// DBPath is the SQLite file for game archival. Empty disables
	// persistence entirely; games then live only in memory.
	DBPath string `env:"CHESSROYALE_DB_PATH" envDefault:"chessroyale.db"`

	// DefaultRating is assigned to participants who connect without one.
	DefaultRating int `env:"CHESSROYALE_DEFAULT_RATING" envDefault:"1200"`

	Debug bool `env:"CHESSROYALE_DEBUG" envDefault:"false"`

	// NgrokEnabled exposes the server through an ngrok tunnel using the
	// NGROK_AUTHTOKEN from the environment.
	NgrokEnabled bool   `env:"CHESSROYALE_NGROK" envDefault:"false"`
	NgrokDomain  string `env:"CHESSROYALE_NGROK_DOMAIN"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
