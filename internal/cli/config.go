package cli

import (
	"os"
	"strconv"
)

// Config holds CLI configuration
type Config struct {
	ServerURL     string
	ParticipantID int64
	Output        string
	Verbose       bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:     getEnvOrDefault("TLCHAT_SERVER", "http://localhost:8080"),
		ParticipantID: getEnvInt64("TLCHAT_PARTICIPANT"),
		Output:        "text",
		Verbose:       false,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
