package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssargent/stockroom/pkg/config"
	"github.com/ssargent/stockroom/pkg/di"
)

type commandResult struct {
	stdout string
	stderr string
	err    error
}

// newTestEnv writes a config with a fast bcrypt cost into a temp dir and
// installs a fresh container. It returns the config path and the config.
func newTestEnv(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.Logging.Level = "error"

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	SetContainer(di.NewContainer())
	return configPath, cfg
}

// run executes the root command with args and stdin, starting from default
// flag values every time
func run(t *testing.T, stdin string, args ...string) commandResult {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return commandResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// runAsAdmin runs an inventory command as the bootstrap account
func runAsAdmin(t *testing.T, configPath string, args ...string) commandResult {
	t.Helper()
	return run(t, "", append(args, "--config", configPath, "-u", "admin", "--password", "admin123")...)
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}
