package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	LogLevel      string
	GoogleAPIKey  string
	GeminiModel   string
	SlackBotToken string
	SlackChannel  string
	APIToken      string
	Offline       bool
}

func Load() Config {
	return Config{
		Port:          envInt("AOVA_PORT", 8760),
		NatsURL:       envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		GoogleAPIKey:  envStr("GOOGLE_API_KEY", ""),
		GeminiModel:   envStr("AOVA_MODEL", "gemini-2.0-flash"),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_LEADS_CHANNEL", ""),
		APIToken:      envStr("AOVA_API_TOKEN", ""),
		Offline:       envBool("AOVA_OFFLINE", false),
	}
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
