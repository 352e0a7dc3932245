package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultClientTimeout = 30 * time.Second

// ClientConfig holds settings for programs that talk to the API.
type ClientConfig struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// LoadClient reads the client settings from the environment.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		APIURL: strings.TrimSpace(getEnv("FINTRACK_API_URL", "http://localhost:5000")),
		APIKey: getEnv("FINTRACK_API_KEY", ""),
	}

	timeout, err := parseTimeout(getEnv("FINTRACK_TIMEOUT", ""))
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return defaultClientTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid FINTRACK_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("FINTRACK_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}
