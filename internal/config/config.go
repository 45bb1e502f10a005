package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds environment-driven configuration shared by the binaries.
// Run semantics (target size, precision, journal path) are command-line
// flags, not environment.
type Config struct {
	// Service name
	ServiceName string

	// Log level: debug, info, warn, error
	LogLevel string

	// HTTP health server port (stream-pricer only)
	HTTPPort int

	// Kafka brokers (comma-separated)
	KafkaBrokers string

	// Kafka topics for the stream daemon
	TopicEvents string
	TopicQuotes string

	// Kafka consumer group
	ConsumerGroup string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig(serviceName string) *Config {
	return &Config{
		ServiceName:   serviceName,
		LogLevel:      getEnvAsString("LOG_LEVEL", "info"),
		HTTPPort:      getEnvAsInt("PORT_HTTP", 8080),
		KafkaBrokers:  getEnvAsString("KAFKA_BROKERS", "127.0.0.1:9092"),
		TopicEvents:   getEnvAsString("TOPIC_EVENTS", "market.events"),
		TopicQuotes:   getEnvAsString("TOPIC_QUOTES", "market.quotes"),
		ConsumerGroup: getEnvAsString("CONSUMER_GROUP", serviceName+"-v1"),
	}
}

// HTTPAddr returns the HTTP health server address
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Brokers returns the Kafka broker list, trimmed
func (c *Config) Brokers() []string {
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

func getEnvAsString(key, defaultValue string) string {
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
