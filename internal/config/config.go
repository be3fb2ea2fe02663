package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/darshanbhalani/temperature-consumer/internal/models"
)

// Queue clients
const (
	QueueClientSarama = "sarama"
	QueueClientFranz  = "franz"
)

// Config holds all application configuration
type Config struct {
	Queue    QueueConfig
	Postgres PostgresConfig
	Window   WindowConfig
	InfluxDB InfluxDBConfig
	Redis    RedisConfig
	Debug    bool
}

// QueueConfig holds upstream queue configuration
type QueueConfig struct {
	Client  string
	Brokers []string
	Topic   string
	GroupID string
}

// PostgresConfig holds the incident database configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// WindowConfig holds the default thresholds and the configuration row they
// are refreshed from
type WindowConfig struct {
	ThresholdTemperature int
	ThresholdSeconds     int
	ConfigurationID      int
}

// InfluxDBConfig holds the window metrics mirror configuration
type InfluxDBConfig struct {
	Enabled bool
	URL     string
	Org     string
	Token   string
	Bucket  string
}

// RedisConfig holds the status snapshot configuration
type RedisConfig struct {
	Enabled bool
	Addr    string
	DB      int
	Key     string
	TTL     time.Duration
}

// DSN returns the connection string for the database
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// Thresholds returns the thresholds used until the configuration store
// provides a row
func (w WindowConfig) Thresholds() models.Thresholds {
	return models.Thresholds{
		Temperature:     w.ThresholdTemperature,
		IntervalSeconds: w.ThresholdSeconds,
	}
}

// Load loads configuration from an optional env file and environment
// variables with sensible defaults
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		Queue: QueueConfig{
			Client:  strings.ToLower(getEnv("QUEUE_CLIENT", QueueClientSarama)),
			Brokers: getEnvStringSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "temperature"),
			GroupID: getEnv("KAFKA_GROUP_ID", "temperature-consumer"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USERNAME", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_DATABASE", "temperature"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Window: WindowConfig{
			ThresholdTemperature: getEnvInt("THRESHOLD_TEMPERATURE", models.DefaultThresholdTemperature),
			ThresholdSeconds:     getEnvInt("THRESHOLD_TIME", models.DefaultThresholdSeconds),
			ConfigurationID:      getEnvInt("CONFIGURATION_ID", 2),
		},
		InfluxDB: InfluxDBConfig{
			Enabled: getEnvBool("INFLUXDB_ENABLED", false),
			URL:     getEnv("INFLUXDB_URL", "http://localhost:8086"),
			Org:     getEnv("INFLUXDB_ORG", ""),
			Token:   getEnv("INFLUX_TOKEN", ""),
			Bucket:  getEnv("INFLUXDB_BUCKET", "temperature"),
		},
		Redis: RedisConfig{
			Enabled: getEnvBool("REDIS_ENABLED", false),
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			DB:      getEnvInt("REDIS_DB", 0),
			Key:     getEnv("REDIS_STATUS_KEY", "temperature:window:latest"),
			TTL:     getEnvDuration("REDIS_STATUS_TTL", 10*time.Minute),
		},
		Debug: getEnvBool("LOG_DEBUG", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Queue.Client {
	case QueueClientSarama, QueueClientFranz:
	default:
		return fmt.Errorf("QUEUE_CLIENT must be %q or %q, got %q", QueueClientSarama, QueueClientFranz, c.Queue.Client)
	}
	if len(c.Queue.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must list at least one broker")
	}
	if c.Queue.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC must be provided")
	}
	if err := c.Window.Thresholds().Validate(); err != nil {
		return fmt.Errorf("THRESHOLD_TEMPERATURE/THRESHOLD_TIME: %w", err)
	}
	return nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
