// Package config loads the application and scenario configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ProviderConfig holds the connection details for a single
// OpenAI-compatible chat-completions backend.
type ProviderConfig struct {
	Name    string `json:"name"`     // e.g. "vllm", "openrouter"
	BaseURL string `json:"base_url"` // e.g. "http://localhost:8000/v1"
	APIKey  string `json:"api_key"`  // supports ${ENV_VAR} expansion
	Model   string `json:"model"`    // e.g. "openai/gpt-oss-120b"
}

// Config is the top-level application configuration for the comparison
// dashboard and the judge.
type Config struct {
	Providers []ProviderConfig `json:"providers"` // Backends to compare side by side.
	Judge     ProviderConfig   `json:"judge"`     // Backend used to score generated code.
	Debug     bool             `json:"debug"`     // If true, dump resolved configs before running.
}

// Load reads and parses the application configuration file from the given
// path. It returns an error if the file cannot be read or parsed, or if no
// providers are defined. API keys and base URLs may reference environment
// variables with ${VAR} syntax; they are expanded here.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config JSON: %w", err)
	}
	if len(cfg.Providers) == 0 {
		return nil, errors.New("config must contain at least one provider")
	}
	for i := range cfg.Providers {
		cfg.Providers[i].expand()
	}
	cfg.Judge.expand()
	return &cfg, nil
}

func (p *ProviderConfig) expand() {
	p.BaseURL = os.ExpandEnv(p.BaseURL)
	p.APIKey = os.ExpandEnv(p.APIKey)
}

// Provider returns the provider with the given name, or an error listing
// the configured names when it is not found.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, nil
		}
	}
	names := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		names = append(names, p.Name)
	}
	return ProviderConfig{}, fmt.Errorf("provider %q not found (configured: %v)", name, names)
}

// Scenario is one named batch of agent models and prompts sharing a
// per-query timeout.
type Scenario struct {
	Name    string   `json:"name"`
	Models  []string `json:"models"`
	Prompts []string `json:"prompts"`
	Timeout int      `json:"timeout"` // seconds per query; 0 means the default
}

// ScenarioConfig mirrors the agent test configuration file. Scenarios are
// selected by name; the default model and prompt lists back the ad-hoc
// path when no scenario is chosen.
type ScenarioConfig struct {
	Scenarios      []Scenario `json:"test_configurations"`
	DefaultModels  []string   `json:"default_models"`
	DefaultPrompts []string   `json:"default_prompts"`
}

// LoadScenarios reads and parses a scenario configuration file.
func LoadScenarios(path string) (*ScenarioConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read scenario config: %w", err)
	}
	var cfg ScenarioConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse scenario config JSON: %w", err)
	}
	return &cfg, nil
}

// Find returns the scenario with the given name, or an error listing the
// available scenario names.
func (c *ScenarioConfig) Find(name string) (Scenario, error) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	names := make([]string, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		names = append(names, s.Name)
	}
	return Scenario{}, fmt.Errorf("scenario %q not found (available: %v)", name, names)
}
