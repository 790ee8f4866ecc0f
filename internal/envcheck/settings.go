package envcheck

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Settings holds process-level knobs read from the environment. Project
// specific settings live in the YAML config.
type Settings struct {
	CommandTimeout time.Duration `env:"ENVCHECK_TIMEOUT" envDefault:"60s"`
	DBTimeout      time.Duration `env:"ENVCHECK_DB_TIMEOUT" envDefault:"5s"`
	Shell          string        `env:"ENVCHECK_SHELL"`
	LogLevel       string        `env:"ENVCHECK_LOG_LEVEL" envDefault:"info"`
	ServeAddr      string        `env:"ENVCHECK_SERVE_ADDR" envDefault:":8085"`
}

func LoadSettings() (*Settings, error) {
	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.CommandTimeout <= 0 {
		return fmt.Errorf("ENVCHECK_TIMEOUT must be positive")
	}
	if s.DBTimeout <= 0 {
		return fmt.Errorf("ENVCHECK_DB_TIMEOUT must be positive")
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("ENVCHECK_LOG_LEVEL must be one of: debug, info, warn, error")
	}
	return nil
}

// DefaultSettings returns the values LoadSettings uses when nothing is set.
func DefaultSettings() *Settings {
	return &Settings{
		CommandTimeout: 60 * time.Second,
		DBTimeout:      5 * time.Second,
		LogLevel:       "info",
		ServeAddr:      ":8085",
	}
}
