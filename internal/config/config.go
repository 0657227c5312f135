// Package config provides configuration management functionality.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// TelegramConfig holds the Telegram bot credentials.
type TelegramConfig struct {
	BotToken string
	ChatIDs  []string // chat ids or @channelusername entries
}

// EmailConfig holds the AWS SES credentials and addresses.
type EmailConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Sender    string // must be verified in the SES dashboard
	Recipient string
}

// Config holds application configuration
type Config struct {
	LogLevel   string
	HeadedMode bool   // run the browser with a visible window (debugging)
	ScripsPath string // optional override for the embedded scrips table
	Mode       string // notification mode: email, telegram, both, none or empty (guess)
	Schedule   string // cron expression; empty means run once and exit
	Telegram   TelegramConfig
	Email      EmailConfig
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("SGB_LOG_LEVEL", "info"),
		HeadedMode: getEnvAsBool("SGB_HEADED_MODE", false),
		ScripsPath: getEnv("SGB_SCRIPS_FILE", ""),
		Mode:       strings.ToLower(getEnv("SGB_MODE", "")),
		Schedule:   getEnv("SGB_SCHEDULE", ""),
		Telegram: TelegramConfig{
			BotToken: getEnv("SGB_TELEGRAM_BOT_TOKEN", ""),
			ChatIDs:  splitList(getEnv("SGB_TELEGRAM_CHAT_IDS", "")),
		},
		Email: EmailConfig{
			AccessKey: getEnv("SGB_AWS_ACCESS_KEY", ""),
			SecretKey: getEnv("SGB_AWS_SECRET_ACCESS_KEY", ""),
			Region:    getEnv("SGB_AWS_REGION", ""),
			Sender:    getEnv("SGB_AWS_SES_SENDER_EMAIL", ""),
			Recipient: getEnv("SGB_AWS_SES_RECIPIENT", ""),
		},
	}

	return cfg, nil
}

// Headless reports whether the browser should run without a window. Headed
// mode is opt-in via SGB_HEADED_MODE.
func (c *Config) Headless() bool {
	return !c.HeadedMode
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsBool reads a boolean environment variable ("true", case-insensitive).
func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return strings.EqualFold(value, "true")
}

// splitList splits a comma-separated env value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
