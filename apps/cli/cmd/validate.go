package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file...]",
	Short: "Validate configuration files and XHRKIT_* variables",
	Long: `Validate configuration without sending anything. With no arguments the
config file discovered in the working directory is checked.

Examples:
  xhrkit validate
  xhrkit validate .xhrkit.yaml ci.json`,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 {
		for _, name := range config.ConfigFilenames {
			if _, err := os.Stat(name); err == nil {
				files = append(files, filepath.Clean(name))
				break
			}
		}
	}

	hasErrors := false
	for _, file := range files {
		if _, err := config.LoadConfig(file); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if _, err := config.FromEnv(); err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error in environment: %v\n", err)
		hasErrors = true
	} else if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No config file found; defaults and environment are valid\n")
	}

	if hasErrors {
		return reported(ExitConfigError, fmt.Errorf("validation failed"))
	}
	return nil
}
