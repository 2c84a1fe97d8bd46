package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultLogLevel   = "info"
	defaultKafkaTopic = "transactions.processed"
	defaultHTTPAddr   = ":8080"
)

type Config struct {
	LogLevel     string
	KafkaBrokers []string
	KafkaTopic   string
	DatabaseURL  string
	HTTPAddr     string
}

// Load reads configuration from the environment. Values from an optional
// .env file fill in variables that are not already set.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := Config{
		LogLevel:     getenv("LOG_LEVEL", defaultLogLevel),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", defaultKafkaTopic),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:     getenv("HTTP_ADDR", defaultHTTPAddr),
	}
	return cfg, nil
}

func (c Config) KafkaEnabled() bool    { return len(c.KafkaBrokers) > 0 }
func (c Config) DatabaseEnabled() bool { return c.DatabaseURL != "" }

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
