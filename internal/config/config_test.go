package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LOG_LEVEL", "KAFKA_BROKERS", "KAFKA_TOPIC", "DATABASE_URL", "HTTP_ADDR"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "transactions.processed", cfg.KafkaTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.DatabaseEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9000")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("HTTP_ADDR=:7000\nDATABASE_URL=postgres://localhost/payments\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres://localhost/payments", cfg.DatabaseURL)
	assert.True(t, cfg.DatabaseEnabled())
}
