/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/stockroom/pkg/config"
	"github.com/ssargent/stockroom/pkg/di"
	"github.com/ssargent/stockroom/pkg/logging"
	"github.com/ssargent/stockroom/pkg/session"
	"github.com/ssargent/stockroom/pkg/store"
)

// passwordEnv is read when --password is not given
const passwordEnv = "STOCKROOM_PASSWORD"

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Stockroom - single user inventory manager",
	Long: `Stockroom keeps a product inventory and a set of user accounts in two
binary snapshot files. Every change is written to disk immediately.

Inventory commands need an account:
  stockroom product list --user admin --password admin123

Run "stockroom shell" for the interactive menu.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/stockroom/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory, overrides the config file")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Username for inventory commands")
	rootCmd.PersistentFlags().String("password", "", "Password for inventory commands (or "+passwordEnv+")")
	rootCmd.PersistentFlags().StringP("format", "o", formatTable, "Output format (table, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
}

// setup loads configuration and builds the logger for every command
func setup(cmd *cobra.Command, _ []string) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.Logging.Level = "error"
	}
	if _, err := outputFormat(cmd); err != nil {
		return err
	}

	container.SetConfig(cfg)
	container.SetLogger(logging.New(cfg.Logging, cmd.ErrOrStderr()))
	return nil
}

// loadConfig reads an explicit config path, or the default path when it
// exists, and falls back to defaults otherwise
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}

	defaultPath := config.GetDefaultConfigPath()
	if config.ConfigExists(defaultPath) {
		return config.LoadConfig(defaultPath)
	}
	return config.DefaultConfig(), nil
}

// openSession opens both stores and tells the user when the bootstrap
// account had to be created
func openSession(cmd *cobra.Command) (*session.Session, error) {
	s, err := container.OpenSession()
	if err != nil {
		return nil, err
	}

	if result := s.CredentialsResult(); result.DefaultAccountCreated {
		cmd.PrintErrf("Notice: no accounts existed, so the default account %q was created with the configured bootstrap password.\n", result.DefaultUsername)
		cmd.PrintErrf("Register your own account and do not rely on the default one outside development.\n")
	}
	return s, nil
}

// closeSession saves both stores and exports metrics
func closeSession(s *session.Session) error {
	return errors.Join(s.Close(), container.FlushMetrics())
}

// withInventory logs in with --user and --password, runs fn against the
// product store and saves everything afterwards
func withInventory(cmd *cobra.Command, fn func(inventory *store.ProductStore) error) (err error) {
	username, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if username == "" || password == "" {
		return fmt.Errorf("--user and --password (or %s) are required", passwordEnv)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeSession(s))
	}()

	if err := s.Login(username, password); err != nil {
		return err
	}
	inventory, err := s.Inventory()
	if err != nil {
		return err
	}
	return fn(inventory)
}
