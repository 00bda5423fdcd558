// Package config handles Helios configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./helios.yaml, ~/.config/helios/helios.yaml, /etc/helios/helios.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"helios.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "helios", "helios.yaml"))
	}

	paths = append(paths, "/etc/helios/helios.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Helios configuration.
type Config struct {
	Listen     ListenConfig     `yaml:"listen"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Agent      AgentConfig      `yaml:"agent"`
	Governance GovernanceConfig `yaml:"governance"`
	LogLevel   string           `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// DatabaseConfig defines the ERP datastore location.
type DatabaseConfig struct {
	// Path is the SQLite database file. The assistant owns and initializes
	// only the memory tables (conversations, messages, tool_calls, approvals);
	// business tables are consumed read-only.
	Path string `yaml:"path"`
}

// LLMConfig defines completion-service settings.
type LLMConfig struct {
	// Provider selects the completion backend: "ollama", "openai", or ""
	// to disable LLM-driven dispatch entirely (keyword routing only).
	Provider  string       `yaml:"provider"`
	OllamaURL string       `yaml:"ollama_url"`
	Model     string       `yaml:"model"`
	OpenAI    OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig defines settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // Optional, for compatible servers
	Model   string `yaml:"model"`
}

// ClassifierConfig defines request classification settings.
type ClassifierConfig struct {
	// Fallback is the domain returned when no keyword matches.
	// Empty means "unknown", which produces a guidance response.
	Fallback string `yaml:"fallback"`
}

// AgentConfig defines orchestrator settings.
type AgentConfig struct {
	// MaxIterations caps Thought/Action cycles per turn (default 3).
	MaxIterations int `yaml:"max_iterations"`
	// HistoryLimit is how many prior messages are loaded per turn (default 10).
	HistoryLimit int `yaml:"history_limit"`
}

// GovernanceConfig defines materiality thresholds. Operations exceeding
// either limit are queued for human approval instead of executed.
type GovernanceConfig struct {
	MaxAmount float64 `yaml:"max_amount"` // Monetary threshold in dollars
	MaxUnits  int     `yaml:"max_units"`  // Unit-quantity threshold
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen:   ListenConfig{Port: 8080},
		Database: DatabaseConfig{Path: "helios.db"},
		LLM: LLMConfig{
			Provider:  "ollama",
			OllamaURL: "http://localhost:11434",
			Model:     "qwen3:4b",
		},
		Agent: AgentConfig{
			MaxIterations: 3,
			HistoryLimit:  10,
		},
		Governance: GovernanceConfig{
			MaxAmount: 10000,
			MaxUnits:  100,
		},
	}
}
