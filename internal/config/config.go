// Package config loads daemon configuration from a JSON file or from the
// environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the top-level suportenetd configuration.
type Config struct {
	Server ServerConfig `json:"server"`
	Store  StoreConfig  `json:"store"`
	API    APIConfig    `json:"api"`
	Notify NotifyConfig `json:"notify"`
	Digest DigestConfig `json:"digest"`
}

// ServerConfig holds the fulfillment endpoint settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// Secret enables HMAC-SHA256 verification of inbound events.
	Secret string `json:"webhook_secret,omitempty"`
	// BearerToken enables Authorization-header verification. Used if
	// Secret is empty.
	BearerToken string `json:"webhook_bearer_token,omitempty"`
}

// StoreConfig selects the ticket store backend.
type StoreConfig struct {
	// Path to a SQLite database file. Empty selects the in-memory store,
	// which is the default: tickets live as long as the process.
	Path string `json:"path,omitempty"`
}

// APIConfig holds operations API settings. Port 0 disables the API.
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Key  string `json:"api_key,omitempty"`
}

// NotifyConfig holds operational-notice backends.
type NotifyConfig struct {
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Slack    *SlackConfig    `json:"slack,omitempty"`
}

// TelegramConfig points notices at an operations chat.
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// SlackConfig points notices at an operations channel.
type SlackConfig struct {
	Token   string `json:"token"`
	Channel string `json:"channel"`
}

// DigestConfig schedules the upcoming-visits digest. Empty disables it.
type DigestConfig struct {
	Schedule string `json:"schedule,omitempty"` // cron expression or @every form
}

// DefaultPort is used when neither config nor the PORT variable sets one.
const DefaultPort = 8080

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds a config from environment variables with the
// SUPORTENET_ prefix. PORT (no prefix, hosting-platform convention) sets the
// fulfillment port.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        os.Getenv("SUPORTENET_HOST"),
			Port:        getenvInt("PORT", 0),
			Secret:      os.Getenv("SUPORTENET_WEBHOOK_SECRET"),
			BearerToken: os.Getenv("SUPORTENET_WEBHOOK_TOKEN"),
		},
		Store: StoreConfig{
			Path: os.Getenv("SUPORTENET_STORE_PATH"),
		},
		API: APIConfig{
			Host: getenv("SUPORTENET_API_HOST", "127.0.0.1"),
			Port: getenvInt("SUPORTENET_API_PORT", 0),
			Key:  os.Getenv("SUPORTENET_API_KEY"),
		},
		Digest: DigestConfig{
			Schedule: os.Getenv("SUPORTENET_DIGEST_SCHEDULE"),
		},
	}

	if token := os.Getenv("SUPORTENET_TELEGRAM_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("SUPORTENET_TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: SUPORTENET_TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Notify.Telegram = &TelegramConfig{Token: token, ChatID: chatID}
	}
	if token := os.Getenv("SUPORTENET_SLACK_TOKEN"); token != "" {
		cfg.Notify.Slack = &SlackConfig{
			Token:   token,
			Channel: os.Getenv("SUPORTENET_SLACK_CHANNEL"),
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = getenvInt("PORT", DefaultPort)
	}
}

// Validate checks for required fields, collecting every problem.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port %d out of range", c.API.Port))
	}

	if t := c.Notify.Telegram; t != nil {
		if t.Token == "" {
			errs = append(errs, "notify.telegram.token is required")
		}
		if t.ChatID == 0 {
			errs = append(errs, "notify.telegram.chat_id is required")
		}
	}
	if s := c.Notify.Slack; s != nil {
		if s.Token == "" {
			errs = append(errs, "notify.slack.token is required")
		}
		if s.Channel == "" {
			errs = append(errs, "notify.slack.channel is required")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
