package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "a2a_host", cfg.HostName)
	assert.Equal(t, []string{"http://127.0.0.1:10001"}, cfg.RemoteAgentURLs)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.DiscoveryTimeout)
	assert.Equal(t, 60*time.Second, cfg.TaskTimeout)
}

func TestLoadWith_CommaSeparatedAgentURLs(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"REMOTE_AGENT_URLS": "http://127.0.0.1:10001, http://127.0.0.1:10002 ,",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"http://127.0.0.1:10001", "http://127.0.0.1:10002"}, cfg.RemoteAgentURLs)
}

func TestLoadWith_ProviderOverrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"LLM_PROVIDER":    "anthropic",
		"LLM_MODEL":       "claude-3-5-sonnet-20241022",
		"LLM_TEMPERATURE": "0.2",
		"TASK_TIMEOUT":    "90s",
	}))
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.TaskTimeout)
}

func TestLoadWith_UnsupportedProvider(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"LLM_PROVIDER": "bedrock",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestLoadWith_AuthCredentials(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(nil))
	require.NoError(t, err)
	assert.False(t, cfg.Auth.Enabled())
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeyHeader)

	cfg, err = LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"A2A_AUTH_API_KEY":        "secret",
		"A2A_AUTH_API_KEY_HEADER": "X-Custom-Key",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, "X-Custom-Key", cfg.Auth.APIKeyHeader)
}

func TestLoadWith_EmptyAgentListRejected(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"REMOTE_AGENT_URLS": " , ",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no remote agent URLs")
}
