// Package config holds hive settings that are specific to a deployment:
// which columns carry the player identity and position, the generation
// policy and the optional transport extras.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// IDField names the identity column shared by Player_DATA, Character_DATA and Player_LOGIN.
	IDField string `env:"HIVE_ID_FIELD" envDefault:"PlayerUID"`
	// WorldspaceField names the position column of Character_DATA.
	WorldspaceField string `env:"HIVE_WORLDSPACE_FIELD" envDefault:"Worldspace"`
	// IncreaseGeneration bumps Generation by one when a new character
	// replaces a dead one. It changes persisted data, so it is off by default.
	IncreaseGeneration bool `env:"HIVE_INCREASE_GENERATION" envDefault:"false"`

	HTTPAddr  string `env:"HIVE_HTTP_ADDR" envDefault:"0.0.0.0:8431"`
	JWTSecret string `env:"HIVE_JWT_SECRET"`

	RedisURL       string        `env:"REDIS_URL"`
	ObjectCacheTTL time.Duration `env:"HIVE_OBJECT_CACHE_TTL" envDefault:"10m"`
}

// FromEnv parses the environment and validates the result.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.IDField) == "" {
		return fmt.Errorf("HIVE_ID_FIELD must not be empty")
	}
	if strings.TrimSpace(c.WorldspaceField) == "" {
		return fmt.Errorf("HIVE_WORLDSPACE_FIELD must not be empty")
	}
	return nil
}
