// Package config loads Sovereign configuration from ~/.sovereign/config.yaml
// with SOVEREIGN_* environment overrides. A missing config file is created
// with defaults on first load so users always have a file to edit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Gemini  GeminiConfig  `mapstructure:"gemini" yaml:"gemini"`
	Models  ModelsConfig  `mapstructure:"models" yaml:"models"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	Wallet  WalletConfig  `mapstructure:"wallet" yaml:"wallet"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// GeminiConfig configures the upstream generative backend.
type GeminiConfig struct {
	// APIKey authenticates against the Generative Language API.
	// Override with SOVEREIGN_GEMINI_API_KEY rather than committing it to disk.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Endpoint is the API base URL. Leave empty for the public endpoint.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// ModelsConfig names the models used for planning and execution.
type ModelsConfig struct {
	// Primary is tried first for every generation.
	Primary string `mapstructure:"primary" yaml:"primary"`
	// Fallback is tried once when the primary attempt fails.
	Fallback string `mapstructure:"fallback" yaml:"fallback"`
}

// ServerConfig configures the backend proxy.
type ServerConfig struct {
	// Addr is the proxy listen address.
	Addr string `mapstructure:"addr" yaml:"addr"`
	// ProxyURL is the base URL the client uses to reach the proxy.
	ProxyURL string `mapstructure:"proxy_url" yaml:"proxy_url"`
}

// DataConfig locates on-disk state.
type DataConfig struct {
	// Dir is the directory holding the database and logs.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// WalletConfig tunes the simulated wallet.
type WalletConfig struct {
	// InitialBalance seeds new users' wallets, in Naira.
	InitialBalance int `mapstructure:"initial_balance" yaml:"initial_balance"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".sovereign")

	return &Config{
		Gemini: GeminiConfig{},
		Models: ModelsConfig{
			Primary:  "gemini-2.5-flash",
			Fallback: "gemini-2.5-flash",
		},
		Server: ServerConfig{
			Addr:     ":8790",
			ProxyURL: "http://localhost:8790",
		},
		Data: DataConfig{
			Dir: dataDir,
		},
		Wallet: WalletConfig{
			InitialBalance: 254000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "logs", "sovereign.log"),
		},
	}
}

// Load reads configuration from ~/.sovereign/config.yaml, creating it with
// defaults when absent, and merges environment overrides.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return LoadFromPath(filepath.Join(homeDir, ".sovereign", "config.yaml"))
}

// LoadFromPath reads configuration from a specific file, creating it with
// defaults when absent. Environment variables with the SOVEREIGN_ prefix
// override file values, e.g. SOVEREIGN_GEMINI_API_KEY, SOVEREIGN_SERVER_ADDR.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SOVEREIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Data.Dir = expandPath(cfg.Data.Dir)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills fields that the config file left empty, so a partial
// hand-edited file still yields a runnable configuration.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Models.Primary == "" {
		c.Models.Primary = defaults.Models.Primary
	}
	if c.Models.Fallback == "" {
		c.Models.Fallback = c.Models.Primary
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ProxyURL == "" {
		c.Server.ProxyURL = defaults.Server.ProxyURL
	}
	if c.Data.Dir == "" {
		c.Data.Dir = defaults.Data.Dir
	}
	if c.Wallet.InitialBalance == 0 {
		c.Wallet.InitialBalance = defaults.Wallet.InitialBalance
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.Data.Dir, "logs", "sovereign.log")
	}
}

// SaveToPath writes the configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeConfigFile(path, c)
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Data.Dir,
		filepath.Dir(c.Logging.File),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Validate checks the configuration for common mistakes.
func (c *Config) Validate() error {
	if c.Models.Primary == "" {
		return fmt.Errorf("models.primary cannot be empty")
	}
	if c.Server.ProxyURL == "" {
		return fmt.Errorf("server.proxy_url cannot be empty")
	}
	if c.Wallet.InitialBalance < 0 {
		return fmt.Errorf("wallet.initial_balance cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// writeConfigFile marshals cfg with yaml.v3 so the yaml struct tags drive the
// on-disk shape.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
