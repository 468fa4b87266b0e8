package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Providers
	OpenAIKey  string `env:"OPENAI_API_KEY,required"`
	OpenAIBase string `env:"OPENAI_API_BASE" envDefault:"https://openrouter.ai/api/v1"`
	GoogleKey  string `env:"GOOGLE_API_KEY,required"`
	GoogleBase string `env:"GOOGLE_API_BASE" envDefault:"https://generativelanguage.googleapis.com/v1beta"`

	// Optional transcript archive. Disabled when empty.
	DatabaseURL string `env:"DATABASE_URL"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}
