package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// EnvPrefix namespaces every settings variable
const EnvPrefix = "BOARDGAMES_"

// Settings are the process-wide knobs read from the environment. CLI flags
// may override them after loading.
type Settings struct {
	SessionLifetime      time.Duration `env:"SESSION_LIFETIME" envDefault:"1h" validate:"gt=0"`
	SweepInterval        time.Duration `env:"SWEEP_INTERVAL" envDefault:"3s" validate:"gt=0"`
	PresetDir            string        `env:"PRESET_DIR"`
	MaxConcurrentUpdates int           `env:"MAX_CONCURRENT_UPDATES" envDefault:"64" validate:"min=1"`
}

// LoadSettings parses BOARDGAMES_* variables and validates the result
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings ranges
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
