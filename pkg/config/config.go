/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the cvault server configuration
type Config struct {
	DataDir   string    `yaml:"data_dir"`
	Backend   string    `yaml:"backend"` // "log" or "pebble"
	Port      int       `yaml:"port"`
	Bind      string    `yaml:"bind"`
	Security  Security  `yaml:"security"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Assistant Assistant `yaml:"assistant"`
	Logging   Logging   `yaml:"logging"`
}

// Security contains access-control configuration
type Security struct {
	// OperatorID is the caller identity allowed to run admin operations.
	OperatorID string `yaml:"operator_id"`
}

// RateLimit bounds assistant usage per user
type RateLimit struct {
	DailyLimit uint32        `yaml:"daily_limit"`
	ResetEvery time.Duration `yaml:"reset_every"`
}

// Assistant configures the chat-completion proxy. The API key is deliberately
// absent: it is installed at runtime through the admin surface and held only
// in memory.
type Assistant struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	MaxTokens   uint32  `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Backend: "log",
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			// Empty keeps the admin surface disabled until `init` (or the
			// config file) provisions an operator identity.
			OperatorID: "",
		},
		RateLimit: RateLimit{
			DailyLimit: 50,
			ResetEvery: 24 * time.Hour,
		},
		Assistant: Assistant{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-3.5-turbo",
			MaxTokens:   150,
			Temperature: 0.7,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Backend != "log" && c.Backend != "pebble" {
		return fmt.Errorf("unknown storage backend: %q", c.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.RateLimit.DailyLimit == 0 {
		return fmt.Errorf("rate limit daily_limit must be positive")
	}
	if c.RateLimit.ResetEvery <= 0 {
		return fmt.Errorf("rate limit reset_every must be positive")
	}
	return nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated operator
// identity if it doesn't exist
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	operatorID, err := GenerateSecureKey(16) // 128 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate operator id: %w", err)
	}
	config.Security.OperatorID = operatorID

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./cvault.yaml"
	}

	// For Linux/macOS, use ~/.config/cvault/config.yaml
	configDir := filepath.Join(homeDir, ".config", "cvault")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
