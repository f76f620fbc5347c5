package config

import (
	"os"
	"strconv"
	"time"
)

// FromEnv loads engine configuration from environment variables.
// Falls back to defaults if variables are not set.
func FromEnv() Config {
	cfg := Default()

	if val := getEnvInt("EVENT_CHECK_SECONDS"); val > 0 {
		cfg.EventCheckInterval = time.Duration(val) * time.Second
	}
	if val := getEnvInt("EVENT_MIN_INTERVAL_SECONDS"); val > 0 {
		cfg.EventMinInterval = time.Duration(val) * time.Second
	}
	if val := getEnvInt("MAX_ACTIVE_EVENTS"); val > 0 {
		cfg.MaxActiveEvents = val
	}
	if val := getEnvInt("EVENT_HISTORY_LIMIT"); val > 0 {
		cfg.EventHistoryLimit = val
	}
	if val := getEnvInt("CHAT_HISTORY_LIMIT"); val > 0 {
		cfg.ChatHistoryLimit = val
	}
	if val := getEnvInt("CHAT_BACKLOG"); val > 0 {
		cfg.ChatBacklog = val
	}

	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
