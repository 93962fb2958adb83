// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Caption       CaptionConfig
	Recognizer    RecognizerConfig
	Kafka         KafkaConfig
	SessionLog    SessionLogConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the service and its listen addresses.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsAddr string
}

// CaptionConfig tunes the displayable caption.
type CaptionConfig struct {
	// MaxCharacters bounds the "current speech" window.
	MaxCharacters int
	// ClearAfter is the inactivity interval after which the displayed
	// caption is cleared.
	ClearAfter time.Duration
}

// RecognizerConfig selects and tunes the speech recognition provider.
type RecognizerConfig struct {
	Provider       string // mock, google, none
	LanguageCode   string
	SampleRateHz   int
	InterimResults bool
	// AudioPath is the PCM source for the google provider; "-" reads
	// from stdin.
	AudioPath string
}

// KafkaConfig holds event publisher configuration.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicCaption string
	TopicLog     string
	Principal    string
}

// SessionLogConfig holds the durable session log settings.
type SessionLogConfig struct {
	Path          string
	RetentionMode string // durable, ephemeral
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string
}

// Load reads configuration from the environment, falling back to
// defaults on missing or unparsable values. A local .env file is
// honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-live-caption")

	return &Config{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
		Caption: CaptionConfig{
			MaxCharacters: envOrDefaultInt("CAPTION_MAX_CHARACTERS", 300),
			ClearAfter:    envOrDefaultDuration("CAPTION_CLEAR_AFTER", 10*time.Second),
		},
		Recognizer: RecognizerConfig{
			Provider:       envOrDefault("RECOGNIZER_PROVIDER", "mock"),
			LanguageCode:   envOrDefault("RECOGNIZER_LANGUAGE_CODE", "ja-JP"),
			SampleRateHz:   envOrDefaultInt("RECOGNIZER_SAMPLE_RATE_HZ", 16000),
			InterimResults: envOrDefaultBool("RECOGNIZER_INTERIM_RESULTS", true),
			AudioPath:      envOrDefault("RECOGNIZER_AUDIO_PATH", "-"),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", nil),
			TopicCaption: envOrDefault("KAFKA_TOPIC_CAPTION", "caption.updated"),
			TopicLog:     envOrDefault("KAFKA_TOPIC_LOG", "session.log"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		SessionLog: SessionLogConfig{
			Path:          envOrDefault("SESSION_LOG_PATH", "data/session-log.db"),
			RetentionMode: envOrDefault("SESSION_LOG_RETENTION", "durable"),
		},
		Observability: ObservabilityConfig{
			LogLevel: envOrDefault("LOG_LEVEL", "info"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
