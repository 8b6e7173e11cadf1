// Package config loads server settings from the environment and the static
// site profile from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server reads from the environment. A .env file
// is honored when present (loaded in main before Load runs).
type Config struct {
	Port     int
	DBPath   string
	SitePath string

	// Summarization provider (OpenAI-compatible endpoint).
	OpenAIAPIKey  string
	OpenAIBaseURL string
	SummaryModel  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvInt("PORT", 8080),
		DBPath:        getEnv("DB_PATH", "./data/portfolio.db"),
		SitePath:      getEnv("SITE_CONFIG", "./site.yaml"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		SummaryModel:  getEnv("SUMMARY_MODEL", "gpt-4o-mini"),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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
