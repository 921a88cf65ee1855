package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the provider call. The base URL points at Gemini's
// OpenAI-compatible endpoint; any compatible host can be substituted.
const (
	DefaultBaseURL       = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel         = "gemini-2.5-flash"
	DefaultPort          = "8000"
	DefaultDBPath        = "lumina_support.db"
	DefaultHistoryWindow = 20
)

// Config holds all runtime configuration for the support API.
type Config struct {
	Port          string
	DBPath        string
	APIKey        string
	BaseURL       string
	Model         string
	HistoryWindow int
}

// Load reads configuration from environment variables. The provider API
// key is required: reply generation cannot work without it, so its absence
// is a startup error rather than a deferred runtime failure.
func Load() (Config, error) {
	apiKey := os.Getenv("LUMINA_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "" {
		return Config{}, fmt.Errorf("LUMINA_API_KEY is required in environment")
	}

	return Config{
		Port:          envOrDefault("LUMINA_PORT", DefaultPort),
		DBPath:        envOrDefault("LUMINA_DB_PATH", DefaultDBPath),
		APIKey:        apiKey,
		BaseURL:       envOrDefault("LUMINA_BASE_URL", DefaultBaseURL),
		Model:         envOrDefault("LUMINA_MODEL", DefaultModel),
		HistoryWindow: envIntOrDefault("LUMINA_HISTORY_WINDOW", DefaultHistoryWindow),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
