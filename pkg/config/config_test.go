package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./data", config.DataDir)
	assert.Equal(t, "inventory.dat", config.ProductsFile)
	assert.Equal(t, "users.dat", config.UsersFile)
	assert.Equal(t, 10, config.Inventory.LowStockThreshold)
	assert.Equal(t, 6, config.Security.MinPasswordLength)
	assert.Equal(t, 10, config.Security.BcryptCost)
	assert.Equal(t, "admin", config.Security.BootstrapUsername)
	assert.Equal(t, "admin123", config.Security.BootstrapPassword)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Empty(t, config.Metrics.Textfile)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "stockroom_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := &Config{
			DataDir:      "/custom/data",
			ProductsFile: "products.bin",
			UsersFile:    "accounts.bin",
			Inventory: Inventory{
				LowStockThreshold: 3,
			},
			Security: Security{
				MinPasswordLength: 8,
				BcryptCost:        12,
				BootstrapUsername: "root",
				BootstrapPassword: "changeme-now",
			},
			Logging: Logging{
				Level:  "debug",
				Format: "json",
			},
			Metrics: Metrics{
				Textfile: "/var/lib/node_exporter/stockroom.prom",
			},
		}

		err = SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(configPath, []byte("data_dir: /srv/stock\ninventory:\n  low_stock_threshold: 0\n"), 0600)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)

		expected := DefaultConfig()
		expected.DataDir = "/srv/stock"
		expected.Inventory.LowStockThreshold = 0
		assert.Equal(t, expected, loadedConfig)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "stockroom_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "invalid.yaml")
		err = os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load config that fails validation", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(configPath, []byte("security:\n  bcrypt_cost: 99\n"), 0600)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "security.bcrypt_cost")
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"empty products file", func(c *Config) { c.ProductsFile = "" }, "products_file"},
		{"empty users file", func(c *Config) { c.UsersFile = "" }, "users_file"},
		{"same file for both stores", func(c *Config) { c.UsersFile = c.ProductsFile }, "must differ"},
		{"negative threshold", func(c *Config) { c.Inventory.LowStockThreshold = -1 }, "low_stock_threshold"},
		{"zero password length", func(c *Config) { c.Security.MinPasswordLength = 0 }, "min_password_length"},
		{"bcrypt cost too low", func(c *Config) { c.Security.BcryptCost = 1 }, "bcrypt_cost"},
		{"empty bootstrap user", func(c *Config) { c.Security.BootstrapUsername = "" }, "bootstrap_username"},
		{"bootstrap password too short", func(c *Config) { c.Security.MinPasswordLength = 12 }, "bootstrap_password"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		config := DefaultConfig()
		config.DataDir = ""
		config.Logging.Format = "xml"

		err := config.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data_dir")
		assert.Contains(t, err.Error(), "logging.format")
	})
}

func TestStorePaths(t *testing.T) {
	config := DefaultConfig()
	config.DataDir = "/srv/stock"

	assert.Equal(t, filepath.Join("/srv/stock", "inventory.dat"), config.ProductsPath())
	assert.Equal(t, filepath.Join("/srv/stock", "users.dat"), config.UsersPath())

	config.UsersFile = "/etc/stockroom/users.dat"
	assert.Equal(t, "/etc/stockroom/users.dat", config.UsersPath())
}

func TestSaveConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "stockroom_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "nested", "config.yaml")
	config := DefaultConfig()

	err = SaveConfig(config, configPath)
	require.NoError(t, err)

	// Verify file exists
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Verify content
	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "stockroom")
	assert.Contains(t, path, "config.yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "stockroom_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	// Create a file
	err = os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}

func TestConfigYAMLKeys(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))

	assert.Equal(t, "./data", raw["data_dir"])
	inventory, ok := raw["inventory"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 10, inventory["low_stock_threshold"])
	security, ok := raw["security"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 6, security["min_password_length"])
}

func TestSaveConfigErrorHandling(t *testing.T) {
	config := DefaultConfig()

	// A regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := SaveConfig(config, filepath.Join(blocker, "config.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
