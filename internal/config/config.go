package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string
	Env          string
	CORSOrigins  []string
	RateLimit    float64 // Requests per second per client IP
	RateBurst    int
	WriteTimeout time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string
	Password string
}

// StreamConfig defines which Redis streams to consume from and publish to
type StreamConfig struct {
	// Sport-specific snapshot streams (e.g., odds.snapshots.soccer_epl)
	SnapshotStreams []string

	// Valuations are published to valuations.{sport} and this global stream
	ValuationsStream string

	ConsumerGroup string
	ConsumerID    string
	Workers       int
}

// ArchiveConfig holds the historical archive database configuration
type ArchiveConfig struct {
	DSN string // Empty disables the archive
}

// KafkaConfig holds the optional Kafka publisher configuration
type KafkaConfig struct {
	Brokers []string // Empty disables Kafka publishing
	Topic   string
}

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Stream  StreamConfig
	Archive ArchiveConfig
	Kafka   KafkaConfig
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first if present; real env vars win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:         getEnv("SERVER_ADDR", ":8085"),
			Env:          getEnv("ENV", "local"),
			CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
			RateLimit:    getEnvFloat("API_RATE_LIMIT", 20),
			RateBurst:    getEnvInt("API_RATE_BURST", 40),
			WriteTimeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "localhost:6380"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Stream: loadStreamConfig(),
		Archive: ArchiveConfig{
			DSN: getEnv("ARCHIVE_DSN", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "valuations"),
		},
	}
}

// loadStreamConfig loads stream configuration
// Supports multiple sports via comma-separated SPORTS environment variable
func loadStreamConfig() StreamConfig {
	sports := splitList(getEnv("SPORTS", "soccer_epl"))

	streams := make([]string, 0, len(sports))
	for _, sport := range sports {
		streams = append(streams, SnapshotStream(sport))
	}

	workers := getEnvInt("WORKERS", 4)
	if workers < 1 {
		workers = 1
	}

	return StreamConfig{
		SnapshotStreams:  streams,
		ValuationsStream: "valuations.computed",
		ConsumerGroup:    getEnv("CONSUMER_GROUP", "value-engine"),
		ConsumerID:       getEnv("CONSUMER_ID", "value-engine-1"),
		Workers:          workers,
	}
}

// SnapshotStream returns the snapshot stream key for a sport
func SnapshotStream(sport string) string {
	return fmt.Sprintf("odds.snapshots.%s", sport)
}

// SportFromStream extracts the sport key from a snapshot stream key
func SportFromStream(stream string) string {
	return strings.TrimPrefix(stream, "odds.snapshots.")
}

// Sports returns the configured sport keys
func (sc *StreamConfig) Sports() []string {
	sports := make([]string, 0, len(sc.SnapshotStreams))
	for _, stream := range sc.SnapshotStreams {
		sports = append(sports, SportFromStream(stream))
	}
	return sports
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
