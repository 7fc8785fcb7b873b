package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"

	"github.com/sockbowl/sockbowl-client/go/internal/transport"
)

type Config struct {
	Transport struct {
		URL                  string `yaml:"url"`
		SubjectPrefix        string `yaml:"subject_prefix"`
		MaxReconnects        int    `yaml:"max_reconnects"`
		ReconnectWaitSeconds int    `yaml:"reconnect_wait_seconds"`
	} `yaml:"transport"`
	Cast struct {
		ReceiverURL string `yaml:"receiver_url"`
		ThrottleMS  int    `yaml:"throttle_ms"`
	} `yaml:"cast"`
	Role string `yaml:"role"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads the yaml config file and applies environment
// overrides. A missing file is fine; defaults and env cover everything.
func loadConfig(path string) (*Config, error) {
	var config Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.Transport.URL = getEnv("NATS_URL", firstNonEmpty(config.Transport.URL, nats.DefaultURL))
	config.Transport.SubjectPrefix = firstNonEmpty(config.Transport.SubjectPrefix, "sockbowl")
	if config.Transport.MaxReconnects == 0 {
		config.Transport.MaxReconnects = -1
	}
	if config.Transport.ReconnectWaitSeconds <= 0 {
		config.Transport.ReconnectWaitSeconds = 2
	}
	config.Cast.ReceiverURL = getEnv("CAST_RECEIVER_URL", config.Cast.ReceiverURL)
	config.Cast.ThrottleMS = getEnvAsInt("CAST_THROTTLE_MS", config.Cast.ThrottleMS)
	if config.Cast.ThrottleMS <= 0 {
		config.Cast.ThrottleMS = 100
	}
	config.Role = getEnv("SOCKBOWL_ROLE", firstNonEmpty(config.Role, "BUZZER"))
	return &config, nil
}

func (c *Config) transportConfig() transport.Config {
	return transport.Config{
		URL:           c.Transport.URL,
		SubjectPrefix: c.Transport.SubjectPrefix,
		MaxReconnects: c.Transport.MaxReconnects,
		ReconnectWait: time.Duration(c.Transport.ReconnectWaitSeconds) * time.Second,
		InboundBuffer: 100,
	}
}

func (c *Config) castThrottle() time.Duration {
	return time.Duration(c.Cast.ThrottleMS) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
