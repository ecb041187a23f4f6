package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluabaleno/premarket-tracker/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("API_TIMEOUT", "")

	cfg, err := config.Load(writeConfig(t, "tracker:\n  budget_usdc: 250\n"))
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Tracker.BudgetUSDC)
	assert.Equal(t, "0 9 * * *", cfg.Tracker.Schedule)
	assert.Equal(t, 5, cfg.Tracker.TopMovers)
	assert.Equal(t, 43, cfg.API.LimitlessCategoryID)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.API.GammaBase)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 48*time.Hour, cfg.CacheTTL())
	assert.Equal(t, "premarket.arbs", cfg.Publish.Topic)
	assert.True(t, cfg.TableOutput())
	assert.Empty(t, cfg.Cache.RedisAddr)
	assert.Empty(t, cfg.Publish.Brokers)
}

func TestLoad_YAMLValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
tracker:
  schedule: "@every 6h"
  table: false
api:
  limitless_category_id: 7
  skip_books: true
publish:
  brokers: [kafka-1:9092, kafka-2:9092]
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "@every 6h", cfg.Tracker.Schedule)
	assert.False(t, cfg.TableOutput())
	assert.Equal(t, 7, cfg.API.LimitlessCategoryID)
	assert.True(t, cfg.API.SkipBooks)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Publish.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LIMITLESS_API", "http://localhost:9999")
	t.Setenv("LIMITLESS_CATEGORY_ID", "12")
	t.Setenv("API_TIMEOUT", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://localhost:9999", cfg.API.LimitlessBase)
	assert.Equal(t, 12, cfg.API.LimitlessCategoryID)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Publish.Brokers)
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	_, err := config.Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "tracker: [unclosed"))
	assert.Error(t, err)
}
