package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"msg-generator/internal/domain/models"
)

// Output selects where generated messages go.
type Output string

const (
	OutputKafka  Output = "kafka"
	OutputStdout Output = "stdout"
)

type Config struct {
	// Generation
	Label      string
	Workers    int
	Generation models.GenerationConfig

	// Output
	Output       Output
	KafkaBrokers []string
	WriteTimeout time.Duration
	BatchSize    int

	// Run history, disabled when empty
	DatabaseURL string

	// Metrics and health endpoint, disabled when empty
	HTTPAddr string

	LogLevel slog.Level
}

func NewConfig() (*Config, error) {
	config := &Config{
		Label:   getEnv("GEN_LABEL", "beem"),
		Workers: getEnvAsInt("GEN_WORKERS", 1),
		Generation: models.GenerationConfig{
			Count:             getEnvAsInt("GEN_MSG_COUNT", 10),
			Size:              getEnvAsFloat("GEN_MSG_SIZE", 100),
			AppID:             getEnv("GEN_APP_ID", "beem"),
			AppName:           getEnv("GEN_APP_NAME", "beem"),
			Topic:             getEnv("GEN_TOPIC", "mqtt-malaria"),
			Timing:            getEnvAsBool("GEN_TIMING", false),
			MessagesPerSecond: getEnvAsFloat("GEN_MSGS_PER_SECOND", 0),
			Jitter:            getEnvAsFloat("GEN_JITTER", 0),
			Pacing:            models.Pacing(getEnv("GEN_PACING", string(models.PacingSleep))),
		},

		Output:       Output(getEnv("GEN_OUTPUT", string(OutputKafka))),
		WriteTimeout: getEnvAsDuration("KAFKA_WRITE_TIMEOUT", 10*time.Second),
		BatchSize:    getEnvAsInt("KAFKA_BATCH_SIZE", 100),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ""),
	}

	brokersStr := getEnv("KAFKA_BROKERS", "localhost:9092")
	config.KafkaBrokers = strings.Split(brokersStr, ",")

	if err := config.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return config, nil
}

// Validate rejects configurations the generator pipeline does not handle.
func (c *Config) Validate() error {
	var errs []error

	g := c.Generation
	if g.Count == 0 || g.Count < models.UnboundedCount {
		errs = append(errs, fmt.Errorf("message count must be positive or %d for unbounded, got %d", models.UnboundedCount, g.Count))
	}
	if g.Size <= 0 {
		errs = append(errs, fmt.Errorf("message size must be positive, got %v", g.Size))
	}
	if g.MessagesPerSecond < 0 {
		errs = append(errs, fmt.Errorf("messages per second must not be negative, got %v", g.MessagesPerSecond))
	}
	if g.Jitter < 0 {
		errs = append(errs, fmt.Errorf("jitter must not be negative, got %v", g.Jitter))
	}
	if g.Pacing != models.PacingSleep && g.Pacing != models.PacingTokenBucket {
		errs = append(errs, fmt.Errorf("unknown pacing %q", g.Pacing))
	}
	if g.Topic == "" {
		errs = append(errs, errors.New("topic must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be 1 or greater, got %d", c.Workers))
	}

	switch c.Output {
	case OutputStdout:
	case OutputKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaBrokers[0] == "" {
			errs = append(errs, errors.New("kafka output requires at least one broker"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown output %q", c.Output))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
