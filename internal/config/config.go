// ABOUTME: Environment-sourced configuration for the finance chat bot.
// ABOUTME: Validation reports every missing key at once, not just the first.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/brenocrepaldi/finance-chat-bot-backend/internal/allowlist"
)

// Config is the process configuration, read from the environment.
// The Google service-account fields are opaque to this core; they are
// handed to the message interpreter, which owns the spreadsheet.
type Config struct {
	ProjectID      string `env:"GOOGLE_PROJECT_ID"`
	ClientEmail    string `env:"GOOGLE_CLIENT_EMAIL"`
	PrivateKey     string `env:"GOOGLE_PRIVATE_KEY"`
	SpreadsheetID  string `env:"SPREADSHEET_ID"`
	BotPhoneNumber string `env:"BOT_PHONE_NUMBER"`
	AllowedChats   string `env:"ALLOWED_CHAT_IDS"`

	HandlerURL     string        `env:"HANDLER_URL"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"60s"`
	SessionDBPath  string        `env:"SESSION_DB_PATH" envDefault:"session.db"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"3s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	// Allowed is the immutable allow-list, parsed exactly once from
	// AllowedChats. Both startup validation and the router use this
	// value; nothing re-reads the environment.
	Allowed allowlist.Set `env:"-"`
}

// MissingKeysError lists every required environment key that was absent
// or blank.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Load reads the environment (and a .env file, if present) into a
// Config and validates it. All validation failures are reported
// together so the operator can fix the environment in one pass.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks required keys and parses the allow-list.
func (c *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"GOOGLE_PROJECT_ID", c.ProjectID},
		{"GOOGLE_CLIENT_EMAIL", c.ClientEmail},
		{"GOOGLE_PRIVATE_KEY", c.PrivateKey},
		{"SPREADSHEET_ID", c.SpreadsheetID},
		{"BOT_PHONE_NUMBER", c.BotPhoneNumber},
		{"ALLOWED_CHAT_IDS", c.AllowedChats},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}

	allowed, err := allowlist.Parse(c.AllowedChats)
	if err != nil {
		return fmt.Errorf("parsing ALLOWED_CHAT_IDS: %w", err)
	}
	c.Allowed = allowed

	return nil
}
