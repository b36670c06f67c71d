// Package config handles NetSage configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./netsage.yaml, ~/.config/netsage/config.yaml, /etc/netsage/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"netsage.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "netsage", "config.yaml"))
	}

	paths = append(paths, "/etc/netsage/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
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

// Config holds all NetSage configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Model     ModelConfig     `yaml:"model"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Lab       LabConfig       `yaml:"lab"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// ModelConfig defines the completion backend.
type ModelConfig struct {
	Name      string `yaml:"name"`       // Model identifier (e.g., "qwen2.5")
	Provider  string `yaml:"provider"`   // "ollama" or "anthropic"
	OllamaURL string `yaml:"ollama_url"` // Ollama base URL

	// Temperature overrides the model's sampling default when set.
	// An explicit 0 makes routing replies deterministic.
	Temperature *float64 `yaml:"temperature"`
	// NumPredict caps generated tokens per reply (0 = model default).
	NumPredict int `yaml:"num_predict"`
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// RetrievalConfig defines the documentation retrieval settings.
type RetrievalConfig struct {
	Enabled bool   `yaml:"enabled"`
	DocsDir string `yaml:"docs_dir"` // Extra markdown runbooks beyond the embedded corpus
	Model   string `yaml:"model"`    // Embedding model name (e.g., nomic-embed-text)
	BaseURL string `yaml:"baseurl"`  // Ollama URL (defaults to model.ollama_url)
	TopK    int    `yaml:"top_k"`    // Chunks returned per query (default 2)
}

// LabConfig selects between the simulated lab and live devices.
type LabConfig struct {
	// Live enables the SSH-backed tool set instead of the simulated tables.
	Live bool `yaml:"live"`
	// Username and Password authenticate to every device. Values support
	// environment expansion (e.g., "${DEVICE_PASSWORD}").
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// TimeoutSec bounds each SSH dial and command (default 10).
	TimeoutSec int            `yaml:"timeout_sec"`
	Devices    []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one reachable lab device.
type DeviceConfig struct {
	Name     string `yaml:"name"`     // e.g., "R1"
	Host     string `yaml:"host"`     // e.g., "10.255.255.11"
	Platform string `yaml:"platform"` // "cisco_xe" or "linux"
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
		Listen: ListenConfig{Port: 8080},
		Model: ModelConfig{
			Name:      "qwen2.5",
			Provider:  "ollama",
			OllamaURL: "http://localhost:11434",
		},
		Retrieval: RetrievalConfig{
			Enabled: true,
			Model:   "nomic-embed-text",
			TopK:    2,
		},
		Lab: LabConfig{
			Username:   "admin",
			TimeoutSec: 10,
		},
	}
}
