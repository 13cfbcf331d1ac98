package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gosense/gosense/internal/config"
	"github.com/gosense/gosense/internal/history"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .gosense directory",
	Long: `Initialize the .gosense directory in the current directory (or --project).

This writes a commented default config.yaml and creates the history.db query
history database. A directory holding .gosense is treated as the project
root by every other command.

Examples:
  gosense init          # Initialize in current directory
  gosense init --force  # Rewrite config.yaml with defaults`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}

	configDir := filepath.Join(dir, config.ConfigDirName)
	configFile := filepath.Join(configDir, config.ConfigFileName)

	if _, err := os.Stat(configFile); err == nil && !initForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Already initialized at %s\n", relTo(dir, configDir))
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	if _, err := config.SaveDefault(dir, initForce); err != nil {
		return err
	}

	store, err := history.Open(configDir)
	if err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}
	defer store.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized gosense at %s\n", relTo(dir, configDir))
	return nil
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
