package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env        string
	Port       string
	LogLevel   string
	CORSOrigin string

	// APIKey, when set, is required in the X-API-Key header of every
	// transaction request. The tracker assumes a single user; the key only
	// keeps strangers out and does not identify anyone.
	APIKey string

	// LegacyErrors collapses every failure into HTTP 500 with a plain-text
	// body, as older clients expect.
	LegacyErrors bool

	// Messaging
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "5000"),
		LogLevel:   getEnv("LOG_LEVEL", ""),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		APIKey:     getEnv("API_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transactions"),
	}

	legacy, err := parseBool(getEnv("LEGACY_ERRORS", ""), false)
	if err != nil {
		log.Printf("Warning: invalid LEGACY_ERRORS value, falling back to false: %v\n", err)
	}
	config.LegacyErrors = legacy

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(s string, defaultVal bool) (bool, error) {
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return defaultVal, err
	}
	return v, nil
}
