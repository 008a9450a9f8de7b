package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("ab", 32)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENCRYPTION_KEY", testKey)
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("AI_TEMPERATURE", "")
	t.Setenv("AI_MAX_TOKENS", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")
	t.Setenv("ARK_MODEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiration)
	assert.Len(t, cfg.EncryptionKey, 32)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENCRYPTION_KEY", testKey)
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("AI_TIMEOUT_SECONDS", "5")
	t.Setenv("ARK_MODEL", "doubao")
	t.Setenv("ARK_API_KEY", "k")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.TokenExpiration)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": "", "ENCRYPTION_KEY": testKey}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo", "ENCRYPTION_KEY": testKey}},
		{"missing key", map[string]string{"STORE_DRIVER": "memory", "ENCRYPTION_KEY": ""}},
		{"short key", map[string]string{"STORE_DRIVER": "memory", "ENCRYPTION_KEY": "abcd"}},
		{"bad temperature", map[string]string{"STORE_DRIVER": "memory", "ENCRYPTION_KEY": testKey, "AI_TEMPERATURE": "hot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
