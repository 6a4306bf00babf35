package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Backend.Mode)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, uint64(1000), cfg.Cache.Capacity)
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, 20, cfg.History.MaxEntries)
	assert.Equal(t, 168*time.Hour, cfg.History.TTL)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Empty(t, cfg.LLM.Model)
	assert.True(t, cfg.LLM.UseFallback())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
llm:
  provider: anthropic
  api_key: sk-test
  model: claude-sonnet-4-5
  timeout: 45s
backend:
  mode: warehouse
cache:
  backend: redis
  ttl: 2m
  capacity: 50
kafka:
  brokers: "k1:9092, k2:9092"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLM.UseFallback())
	assert.Equal(t, "warehouse", cfg.Backend.Mode)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, uint64(50), cfg.Cache.Capacity)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: from-file
`)
	t.Setenv("LLM_API_KEY", "mock_key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mock_key", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.UseFallback())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestKafkaBrokerList_Empty(t *testing.T) {
	assert.Empty(t, KafkaConfig{Brokers: " , "}.BrokerList())
}
