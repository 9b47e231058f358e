package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "PlayerUID", cfg.IDField)
	assert.Equal(t, "Worldspace", cfg.WorldspaceField)
	assert.False(t, cfg.IncreaseGeneration)
	assert.Equal(t, 10*time.Minute, cfg.ObjectCacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HIVE_ID_FIELD", "PlayerID")
	t.Setenv("HIVE_INCREASE_GENERATION", "true")
	t.Setenv("HIVE_OBJECT_CACHE_TTL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "PlayerID", cfg.IDField)
	assert.True(t, cfg.IncreaseGeneration)
	assert.Equal(t, 30*time.Second, cfg.ObjectCacheTTL)
}

func TestFromEnvRejectsBlankField(t *testing.T) {
	t.Setenv("HIVE_WORLDSPACE_FIELD", "  ")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvParseError(t *testing.T) {
	t.Setenv("HIVE_INCREASE_GENERATION", "maybe")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
