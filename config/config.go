// Package config loads orchestrator configuration from the environment, with
// optional .env bootstrap for local development.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// LLMConfig selects and tunes the decision-engine model.
type LLMConfig struct {
	Provider    string  `env:"PROVIDER, default=openai"`
	Model       string  `env:"MODEL, default=gpt-4o"`
	Temperature float64 `env:"TEMPERATURE, default=0"`
	MaxTokens   int64   `env:"MAX_TOKENS, default=4096"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=text"`
}

// A2AAuthConfig carries optional credentials attached to remote agent
// requests. A bearer token takes precedence over an API key.
type A2AAuthConfig struct {
	Token        string `env:"TOKEN"`
	APIKey       string `env:"API_KEY"`
	APIKeyHeader string `env:"API_KEY_HEADER, default=X-API-Key"`
}

// Enabled reports whether any credential is configured.
func (a A2AAuthConfig) Enabled() bool { return a.Token != "" || a.APIKey != "" }

// Config holds the full orchestrator configuration.
type Config struct {
	HostName        string `env:"HOST_NAME, default=a2a_host"`
	HostDescription string `env:"HOST_DESCRIPTION, default=Routes requests to remote agents."`

	// RemoteAgentURLs is the ordered list of A2A agent base addresses to
	// discover at startup.
	RemoteAgentURLs []string `env:"REMOTE_AGENT_URLS, default=http://127.0.0.1:10001"`

	LLM  LLMConfig     `env:", prefix=LLM_"`
	Log  LogConfig     `env:", prefix=LOG_"`
	Auth A2AAuthConfig `env:", prefix=A2A_AUTH_"`

	// DiscoveryTimeout bounds each agent card resolution.
	DiscoveryTimeout time.Duration `env:"DISCOVERY_TIMEOUT, default=30s"`
	// TaskTimeout bounds each remote delegation call.
	TaskTimeout time.Duration `env:"TASK_TIMEOUT, default=60s"`
}

// Load reads configuration from the process environment. A .env file in the
// working directory is merged in first when present.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper. Used directly in
// tests with envconfig.MapLookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.RemoteAgentURLs = normalizeURLs(cfg.RemoteAgentURLs)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported LLM provider %q (expected %q or %q)",
			c.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	if len(c.RemoteAgentURLs) == 0 {
		return fmt.Errorf("no remote agent URLs configured")
	}

	return nil
}

// normalizeURLs trims whitespace around entries and drops empty ones, so
// values like "http://a:1, http://b:2," parse cleanly.
func normalizeURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
