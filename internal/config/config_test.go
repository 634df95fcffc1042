package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 4, cfg.Optimization.WorkerCount)
	assert.Equal(t, 100, cfg.Optimization.MaxAttempts)
	assert.Equal(t, 200, cfg.Optimization.PopSize)
	assert.Equal(t, 0.1, cfg.Optimization.MutationProb)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPT_WORKER_COUNT", "2")
	t.Setenv("OPT_SEED", "1234")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 2, cfg.Optimization.WorkerCount)
	assert.Equal(t, int64(1234), cfg.Optimization.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SCREE_TEST_STR", "value")
	t.Setenv("SCREE_TEST_INT", "7")
	t.Setenv("SCREE_TEST_BOOL", "true")

	assert.Equal(t, "value", GetEnv("SCREE_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SCREE_TEST_MISSING", "fallback"))
	assert.Equal(t, 7, GetEnvAsInt("SCREE_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvAsInt("SCREE_TEST_MISSING", 1))
	assert.True(t, GetEnvAsBool("SCREE_TEST_BOOL", false))
}
