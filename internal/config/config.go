// Package config reads scenesmith settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide defaults. CLI flags override these values.
type Config struct {
	// Seed is the default RNG seed for generation commands.
	Seed uint64 `env:"SCENESMITH_SEED" envDefault:"1"`

	// DB is the run store path. Empty disables run recording.
	DB string `env:"SCENESMITH_DB"`

	// Attempts is the placement attempt budget per event.
	Attempts int `env:"SCENESMITH_ATTEMPTS" envDefault:"100"`

	// FirstEventID is the id of the first placed event.
	FirstEventID int `env:"SCENESMITH_FIRST_EVENT_ID" envDefault:"1"`

	// Format is the default output format: text or json.
	Format string `env:"SCENESMITH_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config and checks its values.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can use.
func (c Config) Validate() error {
	if c.Attempts <= 0 {
		return fmt.Errorf("SCENESMITH_ATTEMPTS must be > 0, got %d", c.Attempts)
	}
	if c.FirstEventID <= 0 {
		return fmt.Errorf("SCENESMITH_FIRST_EVENT_ID must be > 0, got %d", c.FirstEventID)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("SCENESMITH_FORMAT must be text or json, got %q", c.Format)
	}
	return nil
}
