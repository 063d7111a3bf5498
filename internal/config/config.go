package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	Prefix       string `env:"COMMAND_PREFIX" envDefault:"!"`
	DeveloperID  string `env:"DEVELOPER_ID"`
	DevGuildID   string `env:"DEV_GUILD_ID"`

	SyncCommands bool   `env:"SYNC_COMMANDS" envDefault:"true"`
	CommandCache string `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	ErrorWebhookID    string `env:"ERROR_WEBHOOK_ID"`
	ErrorWebhookToken string `env:"ERROR_WEBHOOK_TOKEN"`
	ReportErrors      bool   `env:"REPORT_ERRORS" envDefault:"true"`
	FeedbackCacheSize int    `env:"FEEDBACK_CACHE_SIZE" envDefault:"1024"`
}

// Load reads .env files (if present) into the process environment and maps
// the environment onto a Config. Variables already set win over .env values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if c.Prefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if (c.ErrorWebhookID == "") != (c.ErrorWebhookToken == "") {
		return errors.New("ERROR_WEBHOOK_ID and ERROR_WEBHOOK_TOKEN must be set together")
	}
	return nil
}

// WebhookConfigured reports whether failures should go to a Discord webhook.
func (c *Config) WebhookConfigured() bool {
	return c.ErrorWebhookID != "" && c.ErrorWebhookToken != ""
}
