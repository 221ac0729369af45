// Package config loads the bot configuration from the environment
// (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram
	BotToken    string
	AdminID     int64
	WebhookHost string // externally reachable base URL, e.g. https://bot.example.com

	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Assets
	WelcomeImage string
	AckImage     string

	// Relay
	ReplySessionTTL   time.Duration // 0 = never expires
	TelegramSendRate  float64       // outbound calls per second, 0 disables the limiter
	TelegramSendBurst int

	// Error reporting (optional)
	SentryDSN         string
	SentryEnvironment string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	adminID, err := getInt64Env("ADMIN_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		AdminID:     adminID,
		WebhookHost: strings.TrimRight(getEnv("WEBHOOK_HOST", getEnv("RENDER_EXTERNAL_URL", "")), "/"),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),

		WelcomeImage: getEnv("WELCOME_IMAGE", "welcome_image.jpg"),
		AckImage:     getEnv("ACK_IMAGE", "response_image.jpg"),

		ReplySessionTTL:   getDurationEnv("REPLY_SESSION_TTL", 0),
		TelegramSendRate:  getFloatEnv("TELEGRAM_SEND_RATE", 30),
		TelegramSendBurst: getIntEnv("TELEGRAM_SEND_BURST", 30),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is required"))
	}
	if c.AdminID == 0 {
		errs = append(errs, errors.New("ADMIN_ID is required"))
	}
	if c.WebhookHost == "" {
		errs = append(errs, errors.New("WEBHOOK_HOST (or RENDER_EXTERNAL_URL) is required"))
	} else if !strings.HasPrefix(c.WebhookHost, "https://") && !strings.HasPrefix(c.WebhookHost, "http://") {
		errs = append(errs, fmt.Errorf("WEBHOOK_HOST must be an absolute URL, got %q", c.WebhookHost))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if c.ReplySessionTTL < 0 {
		errs = append(errs, fmt.Errorf("REPLY_SESSION_TTL cannot be negative, got %v", c.ReplySessionTTL))
	}
	if c.TelegramSendRate < 0 {
		errs = append(errs, fmt.Errorf("TELEGRAM_SEND_RATE cannot be negative, got %v", c.TelegramSendRate))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// WebhookPath is the secret path Telegram posts updates to
func (c *Config) WebhookPath() string {
	return "/webhook/" + c.BotToken
}

// WebhookURL is the full URL registered with Telegram
func (c *Config) WebhookURL() string {
	return c.WebhookHost + c.WebhookPath()
}

// ListenAddr is the address the HTTP server binds to
func (c *Config) ListenAddr() string {
	return "0.0.0.0:" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64Env fails on malformed values: a wrong ADMIN_ID must not silently become 0
func getInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
