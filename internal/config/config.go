package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	LogLevel    string
	DatabaseURL string
	APIToken    string
	SessionTTL  time.Duration

	LLMProvider     string
	GoogleAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	CalendarMode     string
	CalendarID       string
	CalendarToken    string
	CalendarTimezone string

	TranscribeURL    string
	TranscribeAPIKey string

	NatsURL   string
	NatsToken string

	SlackBotToken string
	SlackChannel  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return Config{
		Port:        envInt("ROLODEX_PORT", 8760),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		DatabaseURL: envStr("DATABASE_URL", ""),
		APIToken:    envStr("ROLODEX_API_TOKEN", ""),
		SessionTTL:  time.Duration(envInt("SESSION_TTL_MINUTES", 30)) * time.Minute,

		LLMProvider:     strings.ToLower(envStr("LLM_PROVIDER", "gemini")),
		GoogleAPIKey:    envStr("GOOGLE_API_KEY", ""),
		GeminiModel:     envStr("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		CalendarMode:     strings.ToLower(envStr("CALENDAR_MODE", "link")),
		CalendarID:       envStr("CALENDAR_ID", "primary"),
		CalendarToken:    envStr("CALENDAR_TOKEN", ""),
		CalendarTimezone: envStr("CALENDAR_TIMEZONE", "Asia/Kolkata"),

		TranscribeURL:    envStr("TRANSCRIBE_URL", ""),
		TranscribeAPIKey: envStr("TRANSCRIBE_API_KEY", ""),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),

		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_CRM_CHANNEL", ""),
	}
}

// LLMAPIKey returns the key for the selected provider.
func (c Config) LLMAPIKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.GoogleAPIKey
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
