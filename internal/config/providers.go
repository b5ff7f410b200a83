// Package config loads the YAML-described provider roster, grounded on the
// teacher's internal/config/providers.go shape and trimmed to the fields
// spec.md's provider descriptor needs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProvidersConfig is the top-level provider roster plus global defaults.
type ProvidersConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Global    GlobalConfig              `yaml:"global"`
}

// ProviderConfig describes one market-data provider (spec.md §4.4 provider
// descriptor: name, priority, rate_limit_per_hour, requires_api_key,
// base_url).
type ProviderConfig struct {
	Priority         int     `yaml:"priority"`
	RateLimitPerHour float64 `yaml:"rate_limit_per_hour"`
	RequiresAPIKey   bool    `yaml:"requires_api_key"`
	BaseURL          string  `yaml:"base_url"`
	TimeoutMS        int     `yaml:"timeout_ms"`
	Circuit          CircuitConfig `yaml:"circuit"`
}

// CircuitConfig holds a provider's circuit-breaker settings from the YAML
// roster. provider.NewWithBreaker does not read them: its trip threshold
// and timeouts are fixed in that package.
type CircuitConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutMS    int    `yaml:"open_timeout_ms"`
}

// GlobalConfig holds settings shared across all providers.
type GlobalConfig struct {
	UserAgent   string `yaml:"user_agent"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// LoadProvidersConfig reads and validates a provider roster from path.
func LoadProvidersConfig(path string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers config: %w", err)
	}

	var cfg ProvidersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse providers config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid providers config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the roster for internally consistent values.
func (c *ProvidersConfig) Validate() error {
	if c.Global.UserAgent == "" {
		return fmt.Errorf("global user_agent cannot be empty")
	}
	for name, p := range c.Providers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks a single provider's fields.
func (p *ProviderConfig) Validate() error {
	if p.RateLimitPerHour <= 0 {
		return fmt.Errorf("rate_limit_per_hour must be positive, got %f", p.RateLimitPerHour)
	}
	if p.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if p.Circuit.FailureThreshold == 0 {
		return fmt.Errorf("circuit.failure_threshold must be positive")
	}
	return nil
}

// RequestTimeout returns the configured per-call timeout.
func (p *ProviderConfig) RequestTimeout() time.Duration {
	if p.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// OpenTimeout returns how long the circuit breaker stays open before
// allowing a half-open probe.
func (c *CircuitConfig) OpenTimeout() time.Duration {
	if c.OpenTimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.OpenTimeoutMS) * time.Millisecond
}

// GetProvider returns the configuration for a named provider.
func (c *ProvidersConfig) GetProvider(name string) (*ProviderConfig, bool) {
	cfg, ok := c.Providers[name]
	return &cfg, ok
}
