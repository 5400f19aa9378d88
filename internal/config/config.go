package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	// HTTP configuration
	Port           string
	AllowedOrigins []string

	// Backend function app configuration (URL + access code per service)
	ItemURL      string
	ItemCode     string
	CoCURL       string
	CoCCode      string
	ReportURL    string
	ReportCode   string
	TrackingURL  string
	TrackingCode string

	// AI Hub (chat completions) configuration
	AIHubBaseURL string
	AIHubAPIKey  string
	AIHubModel   string
	AIHubTimeout time.Duration

	// Outbound backend call timeout
	BackendTimeout time.Duration

	// Session configuration
	SessionTTL time.Duration
	RedisURL   string

	// Optional NATS transport
	NatsURL         string
	NatsChatSubject string

	// Service configuration
	ServiceName string
}

func Load() *Config {
	return &Config{
		// HTTP settings
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getListEnv("ALLOWED_ORIGINS"),

		// Backend function apps
		ItemURL:      getEnv("FUNCTIONAPP1_URL", ""),
		ItemCode:     getEnv("FUNCTIONAPP1_CODE", ""),
		CoCURL:       getEnv("FUNCTIONAPP2_URL", ""),
		CoCCode:      getEnv("FUNCTIONAPP2_CODE", ""),
		ReportURL:    getEnv("FUNCTIONAPP_REPORT_URL", ""),
		ReportCode:   getEnv("FUNCTIONAPP_REPORT_CODE", ""),
		TrackingURL:  getEnv("FUNCTIONAPP_TRACKING_URL", ""),
		TrackingCode: getEnv("FUNCTIONAPP_TRACKING_CODE", ""),

		// AI Hub settings
		AIHubBaseURL: getEnv("AIHUB_BASE_URL", "https://aihub.example.com/api/v1"),
		AIHubAPIKey:  getEnv("AIHUB_API_KEY", ""),
		AIHubModel:   getEnv("AIHUB_MODEL", "gpt-5"),
		AIHubTimeout: getDurationEnv("AIHUB_TIMEOUT", 60*time.Second),

		BackendTimeout: getDurationEnv("BACKEND_TIMEOUT", 30*time.Second),

		// Session settings
		SessionTTL: getDurationEnv("SESSION_TTL", 30*time.Minute),
		RedisURL:   getEnv("REDIS_URL", ""),

		// NATS settings (transport disabled when URL is empty)
		NatsURL:         getEnv("NATS_URL", ""),
		NatsChatSubject: getEnv("NATS_CHAT_SUBJECT", "gtm.chat"),

		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "gtm-chat"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
