/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config represents the stockroom configuration
type Config struct {
	DataDir      string    `yaml:"data_dir"`
	ProductsFile string    `yaml:"products_file"`
	UsersFile    string    `yaml:"users_file"`
	Inventory    Inventory `yaml:"inventory"`
	Security     Security  `yaml:"security"`
	Logging      Logging   `yaml:"logging"`
	Metrics      Metrics   `yaml:"metrics"`
}

// Inventory contains product store settings
type Inventory struct {
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

// Security contains account and password settings
type Security struct {
	MinPasswordLength int    `yaml:"min_password_length"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
	BootstrapUsername string `yaml:"bootstrap_username"`
	BootstrapPassword string `yaml:"bootstrap_password"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	Textfile string `yaml:"textfile"` // Empty disables the export
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:      "./data",
		ProductsFile: "inventory.dat",
		UsersFile:    "users.dat",
		Inventory: Inventory{
			LowStockThreshold: 10,
		},
		Security: Security{
			MinPasswordLength: 6,
			BcryptCost:        bcrypt.DefaultCost,
			BootstrapUsername: "admin",
			BootstrapPassword: "admin123",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

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
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry the bootstrap password
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.ProductsFile == "" {
		errs = append(errs, errors.New("products_file must not be empty"))
	}
	if c.UsersFile == "" {
		errs = append(errs, errors.New("users_file must not be empty"))
	}
	if c.ProductsFile != "" && c.ProductsPath() == c.UsersPath() {
		errs = append(errs, errors.New("products_file and users_file must differ"))
	}
	if c.Inventory.LowStockThreshold < 0 {
		errs = append(errs, fmt.Errorf("inventory.low_stock_threshold must be non-negative, got %d", c.Inventory.LowStockThreshold))
	}
	if c.Security.MinPasswordLength < 1 {
		errs = append(errs, fmt.Errorf("security.min_password_length must be at least 1, got %d", c.Security.MinPasswordLength))
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("security.bcrypt_cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Security.BcryptCost))
	}
	if c.Security.BootstrapUsername == "" {
		errs = append(errs, errors.New("security.bootstrap_username must not be empty"))
	}
	if len(c.Security.BootstrapPassword) < c.Security.MinPasswordLength {
		errs = append(errs, errors.New("security.bootstrap_password must satisfy security.min_password_length"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ProductsPath returns the product snapshot path. Absolute file names are
// used as given.
func (c *Config) ProductsPath() string {
	return resolve(c.DataDir, c.ProductsFile)
}

// UsersPath returns the credential snapshot path
func (c *Config) UsersPath() string {
	return resolve(c.DataDir, c.UsersFile)
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./stockroom.yaml"
	}

	// For Linux/macOS, use ~/.config/stockroom/config.yaml
	configDir := filepath.Join(homeDir, ".config", "stockroom")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
