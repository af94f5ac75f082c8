package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string `env:"FISHON_DB_PATH" envDefault:"fishon.db"`
	CatalogJson string `env:"FISHON_CATALOG_JSON"`
	Debug       bool   `env:"FISHON_DEBUG" envDefault:"false"`
	LogPath     string `env:"FISHON_LOG_PATH" envDefault:"fishon.log"`
	Sound       bool   `env:"FISHON_SOUND" envDefault:"true"`
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var config Config
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &config, nil
}
