package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken       string        `env:"DISCORD_TOKEN,required,notEmpty"`
	DevGuild           string        `env:"DEV_GUILD_ID"`
	DBPath             string        `env:"DB_PATH" envDefault:"fishon.db"`
	CatalogJson        string        `env:"CATALOG_JSON"`
	ShardCount         int           `env:"SHARD_COUNT" envDefault:"1"`
	ShardId            int           `env:"SHARD_ID" envDefault:"0"`
	CooldownCommandMin time.Duration `env:"COOLDOWN_COMMAND_MIN" envDefault:"1500ms"`
	CooldownCommandMax time.Duration `env:"COOLDOWN_COMMAND_MAX" envDefault:"2500ms"`
	DebugTokens        bool          `env:"DEBUG_TOKENS" envDefault:"false"`
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
	if config.ShardCount < 1 || config.ShardId < 0 || config.ShardId >= config.ShardCount {
		return nil, fmt.Errorf("invalid shard %d of %d", config.ShardId, config.ShardCount)
	}
	return &config, nil
}
