package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
)

var (
	forceInit  bool
	initFormat string
	initDir    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a configuration file holding every default explicitly, ready
to be edited. fetch picks it up from the working directory.

This creates:
  - .xhrkit.yaml   - Configuration file (or .xhrkit.json with --format json)

Examples:
  xhrkit init
  xhrkit init --format json --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&initFormat, "format", "yaml", "File format: yaml, json")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write the file to")
}

// starterConfig spells out every default so the file documents them.
func starterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.RejectUnauthorized = config.BoolPtr(true)
	cfg.AutoUnref = config.BoolPtr(false)
	cfg.MaxRedirects = config.IntPtr(config.DefaultMaxRedirects)
	cfg.AllowFileSystemResources = config.BoolPtr(true)
	cfg.DisableHeaderCheck = config.BoolPtr(false)
	return cfg
}

func initCommand(cmd *cobra.Command, args []string) error {
	var name string
	switch initFormat {
	case "yaml", "yml":
		name = ".xhrkit.yaml"
	case "json":
		name = ".xhrkit.json"
	default:
		return withCode(ExitUsageError, fmt.Errorf("unknown format %q", initFormat))
	}

	configFile := filepath.Join(initDir, name)
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return withCode(ExitConfigError, fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile))
		}
	}

	if err := starterConfig().SaveConfig(configFile); err != nil {
		return withCode(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	return nil
}
